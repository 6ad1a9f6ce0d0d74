package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// PostgresStore persists documents in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed document store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const documentColumns = `id, property_id, name, type, url, status, uploaded_at`

func (s *PostgresStore) Create(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID.String(), doc.PropertyID.String(), doc.Name,
		string(doc.Type), doc.URL, string(doc.Status), doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, doc Document) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET name = $2, type = $3, url = $4, status = $5
		WHERE id = $1`,
		doc.ID.String(), doc.Name, string(doc.Type), doc.URL, string(doc.Status),
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save document rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DocumentID) (Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id.String())
	return scanDocument(row)
}

func (s *PostgresStore) ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		WHERE property_id = $1 ORDER BY uploaded_at, id`, propertyID.String())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.DocumentID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByProperty(ctx context.Context, propertyID domain.PropertyID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE property_id = $1`, propertyID.String())
	if err != nil {
		return fmt.Errorf("delete property documents: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountPendingByProperties(ctx context.Context, propertyIDs []domain.PropertyID) (int, error) {
	if len(propertyIDs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(propertyIDs))
	for i, id := range propertyIDs {
		ids[i] = id.String()
	}
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE status = 'pending' AND property_id = ANY($1)`,
		pq.Array(ids),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending documents: %w", err)
	}
	return count, nil
}

func scanDocument(row interface{ Scan(dest ...any) error }) (Document, error) {
	var doc Document
	var id, propertyID, docType, status string
	err := row.Scan(&id, &propertyID, &doc.Name, &docType, &doc.URL, &status, &doc.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	parsedID, err := domain.ParseDocumentID(id)
	if err != nil {
		return Document{}, fmt.Errorf("scan document id: %w", err)
	}
	parsedProperty, err := domain.ParsePropertyID(propertyID)
	if err != nil {
		return Document{}, fmt.Errorf("scan document property id: %w", err)
	}
	doc.ID = parsedID
	doc.PropertyID = parsedProperty
	doc.Type = Type(docType)
	doc.Status = Status(status)
	return doc, nil
}
