package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/bloodbank/internal/domain"
)

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

func (r *RequestRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// CreateRequest inserts the recipient and the request in one transaction.
func (r *RequestRepository) CreateRequest(ctx context.Context, req domain.Request, recipient domain.Recipient) (domain.Request, error) {
	const insertRecipient = `
INSERT INTO recipients (name, email, contact, blood_type)
VALUES ($1, $2, $3, $4)
RETURNING id`
	const insertRequest = `
INSERT INTO requests (recipient_id, requested_at, blood_type, volume, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	err := r.WithTx(ctx, func(txCtx context.Context) error {
		q := conn(txCtx, r.pool)
		if err := q.QueryRow(txCtx, insertRecipient,
			recipient.Name, recipient.Email, recipient.Contact, recipient.BloodType,
		).Scan(&recipient.ID); err != nil {
			return fmt.Errorf("create recipient: %w", err)
		}

		req.RecipientID = recipient.ID
		if err := q.QueryRow(txCtx, insertRequest,
			req.RecipientID, req.Date, req.BloodType, req.Volume, string(req.Status),
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

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.Request, 0)
	for rows.Next() {
		var req domain.Request
		var rec domain.Recipient
		var status string
		if err := rows.Scan(
			&req.ID, &req.RecipientID, &req.Date, &req.BloodType, &req.Volume, &status,
			&rec.ID, &rec.Name, &rec.Email, &rec.Contact, &rec.BloodType,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		req.Status = domain.RequestStatus(status)
		req.Recipient = &rec
		requests = append(requests, req)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate requests: %w", rows.Err())
	}
	return requests, nil
}

// GetRequestForUpdate locks the request row until the surrounding transaction ends.
func (r *RequestRepository) GetRequestForUpdate(ctx context.Context, id int64) (domain.Request, error) {
	const query = `
SELECT id, recipient_id, requested_at, blood_type, volume, status
FROM requests
WHERE id = $1
FOR UPDATE`

	req, err := scanRequest(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Request{}, domain.ErrRequestNotFound
		}
		return domain.Request{}, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// DecrementStock subtracts volume only when the committed row still covers it.
// A concurrent decrement holding the row lock makes this statement wait and
// then re-check the predicate against the new value.
func (r *RequestRepository) DecrementStock(ctx context.Context, bloodType string, volume int, at time.Time) (domain.BloodStock, error) {
	const stmt = `
UPDATE blood_stock
SET volume = volume - $2, updated_at = $3
WHERE blood_type = $1 AND volume >= $2
RETURNING blood_type, volume, updated_at`

	var s domain.BloodStock
	err := conn(ctx, r.pool).QueryRow(ctx, stmt, bloodType, volume, at).
		Scan(&s.BloodType, &s.Volume, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BloodStock{}, domain.ErrInsufficientStock
		}
		return domain.BloodStock{}, fmt.Errorf("decrement stock: %w", err)
	}
	return s, nil
}

// SetRequestStatus moves a pending request to status.
func (r *RequestRepository) SetRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (domain.Request, error) {
	const stmt = `
UPDATE requests
SET status = $2
WHERE id = $1 AND status = 'pending'
RETURNING id, recipient_id, requested_at, blood_type, volume, status`

	q := conn(ctx, r.pool)
	req, err := scanRequest(q.QueryRow(ctx, stmt, id, string(status)))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Request{}, fmt.Errorf("update request status: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return domain.Request{}, fmt.Errorf("check request: %w", err)
	}
	if !exists {
		return domain.Request{}, domain.ErrRequestNotFound
	}
	return domain.Request{}, domain.ErrRequestNotPending
}

func scanRequest(row pgx.Row) (domain.Request, error) {
	var req domain.Request
	var status string
	if err := row.Scan(&req.ID, &req.RecipientID, &req.Date, &req.BloodType, &req.Volume, &status); err != nil {
		return domain.Request{}, err
	}
	req.Status = domain.RequestStatus(status)
	return req, nil
}
