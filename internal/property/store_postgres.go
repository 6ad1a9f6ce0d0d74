package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// PostgresStore persists properties in PostgreSQL. Deleting a property
// row cascades to its documents through the schema's foreign key, so the
// delete is atomic without an explicit transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed property store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const propertyColumns = `id, user_id, title, type, location, size, status,
	value, currency, lat, lng, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p Property) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID.String(), p.UserID.String(), p.Title, string(p.Type), p.Location, p.Size,
		string(p.Status), p.Value, p.Currency, p.Lat, p.Lng, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, p Property) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE properties SET user_id = $2, title = $3, type = $4, location = $5,
			size = $6, status = $7, value = $8, currency = $9, lat = $10, lng = $11,
			updated_at = $12
		WHERE id = $1`,
		p.ID.String(), p.UserID.String(), p.Title, string(p.Type), p.Location,
		p.Size, string(p.Status), p.Value, p.Currency, p.Lat, p.Lng, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save property: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save property rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.PropertyID) (Property, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id.String())
	return scanProperty(row)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Property, error) {
	return s.query(ctx,
		`SELECT `+propertyColumns+` FROM properties
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, ownerID.String())
}

func (s *PostgresStore) List(ctx context.Context) ([]Property, error) {
	return s.query(ctx,
		`SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.PropertyID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete property rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Transition(ctx context.Context, id domain.PropertyID, from, to Status, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE properties SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id.String(), string(from), string(to), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("transition property: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition property rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}
	// Guard missed: either the row is gone or it sits in another status.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, id.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("transition property existence check: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]Property, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	out := make([]Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return out, nil
}

func scanProperty(row interface{ Scan(dest ...any) error }) (Property, error) {
	var p Property
	var id, ownerID, propType, status string
	err := row.Scan(&id, &ownerID, &p.Title, &propType, &p.Location, &p.Size, &status,
		&p.Value, &p.Currency, &p.Lat, &p.Lng, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Property{}, sentinel.ErrNotFound
		}
		return Property{}, fmt.Errorf("scan property: %w", err)
	}
	parsedID, err := domain.ParsePropertyID(id)
	if err != nil {
		return Property{}, fmt.Errorf("scan property id: %w", err)
	}
	parsedOwner, err := domain.ParseUserID(ownerID)
	if err != nil {
		return Property{}, fmt.Errorf("scan property owner id: %w", err)
	}
	p.ID = parsedID
	p.UserID = parsedOwner
	p.Type = Type(propType)
	p.Status = Status(status)
	return p, nil
}
