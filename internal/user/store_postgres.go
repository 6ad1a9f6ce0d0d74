package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, name, email, password_hash, role, verified, active,
	phone, national_id, bio, location, avatar, date_joined, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role), u.Verified, u.Active,
		u.Phone, u.NationalID, u.Bio, u.Location, u.Avatar, u.DateJoined, u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, u User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, password_hash = $4, role = $5,
			verified = $6, active = $7, phone = $8, national_id = $9, bio = $10,
			location = $11, avatar = $12, updated_at = $13
		WHERE id = $1`,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role),
		u.Verified, u.Active, u.Phone, u.NationalID, u.Bio,
		u.Location, u.Avatar, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save user rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return scanUser(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY date_joined DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var id string
	var role string
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Verified, &u.Active,
		&u.Phone, &u.NationalID, &u.Bio, &u.Location, &u.Avatar, &u.DateJoined, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sentinel.ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	parsed, err := domain.ParseUserID(id)
	if err != nil {
		return User{}, fmt.Errorf("scan user id: %w", err)
	}
	u.ID = parsed
	u.Role = Role(role)
	return u, nil
}
