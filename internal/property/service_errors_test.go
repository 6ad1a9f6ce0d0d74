package property_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ardhi/internal/document"
	"ardhi/internal/property"
	"ardhi/internal/property/mocks"
	"ardhi/internal/user"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/requestcontext"
)

// Store failures must surface as internal errors, never leak raw driver
// errors, and never report success.
func TestServiceStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	users := user.New(user.NewInMemoryStore())
	owner, err := users.Create(context.Background(), user.User{Name: "Owner", Email: "owner@example.com"})
	require.NoError(t, err)
	ctx := requestcontext.WithUserID(context.Background(), owner.ID)

	svc := property.New(store, document.NewInMemoryStore(), users)
	boom := errors.New("connection reset")

	t.Run("create", func(t *testing.T) {
		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(boom)

		_, err := svc.Create(ctx, owner.ID, property.Draft{
			Title: "Plot", Type: property.TypeResidential, Location: "Kisumu",
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.True(t, errors.Is(err, boom))
	})

	t.Run("list by owner", func(t *testing.T) {
		store.EXPECT().ListByOwner(gomock.Any(), owner.ID).Return(nil, boom)

		_, err := svc.ListByOwner(ctx, owner.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("stats", func(t *testing.T) {
		store.EXPECT().ListByOwner(gomock.Any(), owner.ID).Return(nil, boom)

		_, err := svc.ComputeStats(ctx, owner.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
