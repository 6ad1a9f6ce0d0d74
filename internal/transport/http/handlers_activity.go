package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ardhi/internal/activity"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/requestcontext"
)

// ActivityService reads the append-only trail. Regular users only ever
// see their own records; the admin filters fan out to the dedicated
// queries.
type ActivityService interface {
	QueryFor(ctx context.Context, userID domain.UserID, admin bool) ([]activity.Record, error)
	QueryByDocument(ctx context.Context, documentID domain.DocumentID) ([]activity.Record, error)
	QueryByKind(ctx context.Context, kind activity.Kind) ([]activity.Record, error)
	QueryByDateRange(ctx context.Context, start, end time.Time) ([]activity.Record, error)
}

type ActivityHandler struct {
	activities ActivityService
}

func NewActivityHandler(activities ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

func (h *ActivityHandler) Register(r chi.Router) {
	r.Get("/activity", h.handleQuery)
}

type activityFilter struct {
	kind       activity.Kind
	documentID *domain.DocumentID
	from, to   *time.Time
}

// handleQuery is dual-mode: regular users get their own trail, admins get
// the full system trail including client metadata. Filters narrow either
// view; for regular users they are applied to the user's own records so
// the scope never widens.
func (h *ActivityHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseActivityFilter(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	admin := requestcontext.Role(ctx) == "admin"
	records, err := h.query(ctx, admin, filter)
	if err != nil {
		respondErr(w, err)
		return
	}
	if admin {
		respond(w, http.StatusOK, activity.SystemView(records))
		return
	}
	respond(w, http.StatusOK, records)
}

func (h *ActivityHandler) query(ctx context.Context, admin bool, f activityFilter) ([]activity.Record, error) {
	if admin {
		switch {
		case f.documentID != nil:
			return h.activities.QueryByDocument(ctx, *f.documentID)
		case f.kind != "":
			return h.activities.QueryByKind(ctx, f.kind)
		case f.from != nil || f.to != nil:
			return h.activities.QueryByDateRange(ctx, timeOrZero(f.from), timeOrEnd(f.to))
		}
		return h.activities.QueryFor(ctx, requestcontext.UserID(ctx), true)
	}

	records, err := h.activities.QueryFor(ctx, requestcontext.UserID(ctx), false)
	if err != nil {
		return nil, err
	}
	return filterRecords(records, f), nil
}

func parseActivityFilter(r *http.Request) (activityFilter, error) {
	var f activityFilter
	q := r.URL.Query()

	if raw := q.Get("kind"); raw != "" {
		kind := activity.Kind(raw)
		if !kind.Valid() {
			return f, dErrors.New(dErrors.CodeValidation, "unknown activity kind")
		}
		f.kind = kind
	}
	if raw := q.Get("document_id"); raw != "" {
		id, err := domain.ParseDocumentID(raw)
		if err != nil {
			return f, err
		}
		f.documentID = &id
	}
	var err error
	if f.from, err = parseFilterTime(q.Get("from")); err != nil {
		return f, err
	}
	if f.to, err = parseFilterTime(q.Get("to")); err != nil {
		return f, err
	}
	return f, nil
}

// parseFilterTime accepts RFC 3339 timestamps or bare dates.
func parseFilterTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, dErrors.New(dErrors.CodeValidation, "invalid time filter, want RFC 3339 or YYYY-MM-DD")
}

func filterRecords(records []activity.Record, f activityFilter) []activity.Record {
	out := make([]activity.Record, 0, len(records))
	for _, rec := range records {
		if f.kind != "" && rec.Kind != f.kind {
			continue
		}
		if f.documentID != nil {
			if rec.Metadata.DocumentID == nil || *rec.Metadata.DocumentID != *f.documentID {
				continue
			}
		}
		if f.from != nil && rec.Timestamp.Before(*f.from) {
			continue
		}
		if f.to != nil && rec.Timestamp.After(*f.to) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func timeOrZero(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Time{}
}

func timeOrEnd(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	// Far enough out to mean "no upper bound".
	return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
}
