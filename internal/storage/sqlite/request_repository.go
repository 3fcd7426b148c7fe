package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/bloodbank/internal/domain"
)

const requestColumns = `id, recipient_id, requested_at, blood_type, volume, status`

type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

func scanRequest(row scanner) (domain.Request, error) {
	var req domain.Request
	var requested int64
	var status string
	if err := row.Scan(&req.ID, &req.RecipientID, &requested, &req.BloodType, &req.Volume, &status); err != nil {
		return domain.Request{}, err
	}
	req.Date = fromUnix(requested)
	req.Status = domain.RequestStatus(status)
	return req, nil
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req domain.Request, recipient domain.Recipient) (domain.Request, error) {
	err := r.WithTx(ctx, func(txCtx context.Context) error {
		q := conn(txCtx, r.db)
		if err := q.QueryRowContext(txCtx,
			`INSERT INTO recipients (name, email, contact, blood_type) VALUES (?, ?, ?, ?) RETURNING id`,
			recipient.Name, recipient.Email, recipient.Contact, recipient.BloodType,
		).Scan(&recipient.ID); err != nil {
			return fmt.Errorf("create recipient: %w", err)
		}

		req.RecipientID = recipient.ID
		if err := q.QueryRowContext(txCtx,
			`INSERT INTO requests (recipient_id, requested_at, blood_type, volume, status) VALUES (?, ?, ?, ?, ?) RETURNING id`,
			req.RecipientID, toUnix(req.Date), req.BloodType, req.Volume, string(req.Status),
		).Scan(&req.ID); err != nil {
			if isCheckViolation(err) {
				return domain.ErrInvalidVolume
			}
			return fmt.Errorf("create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Request{}, err
	}

	req.Recipient = &recipient
	return req, nil
}

func (r *RequestRepository) ListRequests(ctx context.Context) ([]domain.Request, error) {
	const query = `
SELECT q.id, q.recipient_id, q.requested_at, q.blood_type, q.volume, q.status,
       p.id, p.name, p.email, p.contact, p.blood_type
FROM requests q
JOIN recipients p ON p.id = q.recipient_id
ORDER BY q.requested_at DESC, q.id DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	requests := make([]domain.Request, 0)
	for rows.Next() {
		var req domain.Request
		var rec domain.Recipient
		var requested int64
		var status string
		if err := rows.Scan(
			&req.ID, &req.RecipientID, &requested, &req.BloodType, &req.Volume, &status,
			&rec.ID, &rec.Name, &rec.Email, &rec.Contact, &rec.BloodType,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		req.Date = fromUnix(requested)
		req.Status = domain.RequestStatus(status)
		req.Recipient = &rec
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

// GetRequestForUpdate reads the request inside the caller's transaction.
// SQLite has no row locks; the single connection serialises transactions.
func (r *RequestRepository) GetRequestForUpdate(ctx context.Context, id int64) (domain.Request, error) {
	req, err := scanRequest(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Request{}, domain.ErrRequestNotFound
		}
		return domain.Request{}, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) DecrementStock(ctx context.Context, bloodType string, volume int, at time.Time) (domain.BloodStock, error) {
	const stmt = `
UPDATE blood_stock
SET volume = volume - ?, updated_at = ?
WHERE blood_type = ? AND volume >= ?
RETURNING blood_type, volume, updated_at`

	s, err := scanStock(conn(ctx, r.db).QueryRowContext(ctx, stmt, volume, toUnix(at), bloodType, volume))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BloodStock{}, domain.ErrInsufficientStock
		}
		return domain.BloodStock{}, fmt.Errorf("decrement stock: %w", err)
	}
	return s, nil
}

func (r *RequestRepository) SetRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (domain.Request, error) {
	q := conn(ctx, r.db)
	req, err := scanRequest(q.QueryRowContext(ctx,
		`UPDATE requests SET status = ? WHERE id = ? AND status = 'pending' RETURNING `+requestColumns,
		string(status), id))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Request{}, fmt.Errorf("update request status: %w", err)
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM requests WHERE id = ?)`, id).Scan(&exists); err != nil {
		return domain.Request{}, fmt.Errorf("check request: %w", err)
	}
	if !exists {
		return domain.Request{}, domain.ErrRequestNotFound
	}
	return domain.Request{}, domain.ErrRequestNotPending
}
