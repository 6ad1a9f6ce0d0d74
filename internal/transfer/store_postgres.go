package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
)

// PostgresStore persists transfer requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed transfer store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const transferColumns = `id, property_id, from_user_id, national_id, full_name,
	phone, email, transfer_reason, notes, status, step, info_confirmed,
	final_confirmed, transaction_code, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, req TransferRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transfer_requests (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		req.ID.String(), req.PropertyID.String(), req.FromUserID.String(),
		req.NewOwner.NationalID, req.NewOwner.FullName, req.NewOwner.Phone, req.NewOwner.Email,
		req.TransferReason, req.Notes, string(req.Status), string(req.Step),
		req.InfoConfirmed, req.FinalConfirmed, req.TransactionCode,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transfer request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, req TransferRequest) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transfer_requests SET national_id = $2, full_name = $3, phone = $4,
			email = $5, transfer_reason = $6, notes = $7, status = $8, step = $9,
			info_confirmed = $10, final_confirmed = $11, transaction_code = $12,
			updated_at = $13
		WHERE id = $1`,
		req.ID.String(), req.NewOwner.NationalID, req.NewOwner.FullName,
		req.NewOwner.Phone, req.NewOwner.Email, req.TransferReason, req.Notes,
		string(req.Status), string(req.Step), req.InfoConfirmed, req.FinalConfirmed,
		req.TransactionCode, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save transfer request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save transfer request rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.TransferID) (TransferRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1`, id.String())
	return scanTransfer(row)
}

func (s *PostgresStore) ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]TransferRequest, error) {
	return s.query(ctx,
		`SELECT `+transferColumns+` FROM transfer_requests
		WHERE property_id = $1 ORDER BY created_at DESC, id DESC`, propertyID.String())
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID) ([]TransferRequest, error) {
	return s.query(ctx,
		`SELECT `+transferColumns+` FROM transfer_requests
		WHERE from_user_id = $1 ORDER BY created_at DESC, id DESC`, userID.String())
}

func (s *PostgresStore) List(ctx context.Context) ([]TransferRequest, error) {
	return s.query(ctx,
		`SELECT `+transferColumns+` FROM transfer_requests ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresStore) CountOpenByProperty(ctx context.Context, propertyID domain.PropertyID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transfer_requests
		WHERE property_id = $1 AND status NOT IN ('completed', 'rejected')`,
		propertyID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open transfer requests: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteByProperty(ctx context.Context, propertyID domain.PropertyID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM transfer_requests WHERE property_id = $1`, propertyID.String())
	if err != nil {
		return fmt.Errorf("delete property transfer requests: %w", err)
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]TransferRequest, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfer requests: %w", err)
	}
	defer rows.Close()

	out := make([]TransferRequest, 0)
	for rows.Next() {
		req, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transfer requests: %w", err)
	}
	return out, nil
}

func scanTransfer(row interface{ Scan(dest ...any) error }) (TransferRequest, error) {
	var req TransferRequest
	var id, propertyID, fromUserID, status, step string
	err := row.Scan(&id, &propertyID, &fromUserID,
		&req.NewOwner.NationalID, &req.NewOwner.FullName, &req.NewOwner.Phone, &req.NewOwner.Email,
		&req.TransferReason, &req.Notes, &status, &step,
		&req.InfoConfirmed, &req.FinalConfirmed, &req.TransactionCode,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TransferRequest{}, sentinel.ErrNotFound
		}
		return TransferRequest{}, fmt.Errorf("scan transfer request: %w", err)
	}
	parsedID, err := domain.ParseTransferID(id)
	if err != nil {
		return TransferRequest{}, fmt.Errorf("scan transfer request id: %w", err)
	}
	parsedProperty, err := domain.ParsePropertyID(propertyID)
	if err != nil {
		return TransferRequest{}, fmt.Errorf("scan transfer request property id: %w", err)
	}
	parsedUser, err := domain.ParseUserID(fromUserID)
	if err != nil {
		return TransferRequest{}, fmt.Errorf("scan transfer request user id: %w", err)
	}
	req.ID = parsedID
	req.PropertyID = parsedProperty
	req.FromUserID = parsedUser
	req.Status = Status(status)
	req.Step = Step(step)
	return req, nil
}
