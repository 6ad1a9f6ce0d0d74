package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ardhi/pkg/domain"
)

// PostgresStore persists the activity trail in PostgreSQL. The table has no
// UPDATE or DELETE paths in this codebase; appends only.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed activity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const activityColumns = `id, actor_user_id, actor_name, kind, description,
	document_id, document_name, property_id, property_title, client_ip, user_agent, created_at`

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	var docID, propID any
	var docName, propTitle any
	if rec.Metadata.DocumentID != nil {
		docID = rec.Metadata.DocumentID.String()
	}
	if rec.Metadata.DocumentName != "" {
		docName = rec.Metadata.DocumentName
	}
	if rec.Metadata.PropertyID != nil {
		propID = rec.Metadata.PropertyID.String()
	}
	if rec.Metadata.PropertyTitle != "" {
		propTitle = rec.Metadata.PropertyTitle
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (`+activityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID.String(), rec.ActorUserID.String(), rec.ActorName, string(rec.Kind), rec.Description,
		docID, docName, propID, propTitle, rec.ClientIP, rec.UserAgent, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

const activityOrder = ` ORDER BY created_at DESC, id DESC`

func (s *PostgresStore) ListAll(ctx context.Context) ([]Record, error) {
	return s.query(ctx, `SELECT `+activityColumns+` FROM activity_log`+activityOrder)
}

func (s *PostgresStore) ListByActor(ctx context.Context, actorID domain.UserID) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+activityColumns+` FROM activity_log WHERE actor_user_id = $1`+activityOrder,
		actorID.String())
}

func (s *PostgresStore) ListByDocument(ctx context.Context, documentID domain.DocumentID) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+activityColumns+` FROM activity_log WHERE document_id = $1`+activityOrder,
		documentID.String())
}

func (s *PostgresStore) ListByRange(ctx context.Context, start, end time.Time) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+activityColumns+` FROM activity_log WHERE created_at BETWEEN $1 AND $2`+activityOrder,
		start, end)
}

func (s *PostgresStore) ListByKind(ctx context.Context, kind Kind) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+activityColumns+` FROM activity_log WHERE kind = $1`+activityOrder,
		string(kind))
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var id, actorID string
	var kind string
	var docID, docName, propID, propTitle sql.NullString
	err := rows.Scan(&id, &actorID, &rec.ActorName, &kind, &rec.Description,
		&docID, &docName, &propID, &propTitle, &rec.ClientIP, &rec.UserAgent, &rec.Timestamp)
	if err != nil {
		return Record{}, fmt.Errorf("scan activity: %w", err)
	}

	parsedID, err := domain.ParseUserID(actorID)
	if err != nil {
		return Record{}, fmt.Errorf("scan activity actor: %w", err)
	}
	rec.ActorUserID = parsedID

	activityID, err := domain.ParseActivityID(id)
	if err != nil {
		return Record{}, fmt.Errorf("scan activity id: %w", err)
	}
	rec.ID = activityID
	rec.Kind = Kind(kind)

	if docID.Valid {
		parsed, err := domain.ParseDocumentID(docID.String)
		if err != nil {
			return Record{}, fmt.Errorf("scan activity document id: %w", err)
		}
		rec.Metadata.DocumentID = &parsed
	}
	if docName.Valid {
		rec.Metadata.DocumentName = docName.String
	}
	if propID.Valid {
		parsed, err := domain.ParsePropertyID(propID.String)
		if err != nil {
			return Record{}, fmt.Errorf("scan activity property id: %w", err)
		}
		rec.Metadata.PropertyID = &parsed
	}
	if propTitle.Valid {
		rec.Metadata.PropertyTitle = propTitle.String
	}
	return rec, nil
}
