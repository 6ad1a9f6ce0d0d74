package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ardhi/internal/document"
	"ardhi/internal/property"
	"ardhi/internal/user"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/platform/sentinel"
	"ardhi/pkg/requestcontext"
)

// A property with an undecided transfer request cannot be deleted; once
// the request is decided the delete goes through and takes the transfer
// history with it.
func TestPropertyDeleteWithTransfers(t *testing.T) {
	users := user.New(user.NewInMemoryStore())
	owner, err := users.Create(context.Background(), user.User{
		Name: "Owner", Email: "owner@example.com", Role: user.RoleUser,
	})
	require.NoError(t, err)
	admin, err := users.Create(context.Background(), user.User{
		Name: "Admin", Email: "admin@example.com", Role: user.RoleAdmin,
	})
	require.NoError(t, err)

	transferStore := NewInMemoryStore()
	properties := property.New(property.NewInMemoryStore(), document.NewInMemoryStore(), users,
		property.WithTransferGuard(transferStore))
	transfers := New(transferStore, properties, users)

	asOwner := requestcontext.WithUserID(context.Background(), owner.ID)
	asAdmin := requestcontext.WithUserID(context.Background(), admin.ID)

	p, err := properties.Create(asOwner, owner.ID, property.Draft{
		Title: "Lakeside Plot 3", Type: property.TypeAgricultural, Location: "Naivasha",
	})
	require.NoError(t, err)
	req, err := transfers.Start(asOwner, p.ID)
	require.NoError(t, err)

	err = properties.Delete(asOwner, p.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = properties.Get(context.Background(), p.ID)
	require.NoError(t, err, "blocked delete leaves the property in place")

	_, err = transfers.Reject(asAdmin, req.ID)
	require.NoError(t, err)

	require.NoError(t, properties.Delete(asOwner, p.ID))

	_, err = transferStore.FindByID(context.Background(), req.ID)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound), "decided history goes with the property")
}
