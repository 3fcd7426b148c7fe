package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/bloodbank/internal/domain"
)

const donorColumns = `id, name, email, blood_type, contact, created_at`

type DonorRepository struct {
	pool *pgxpool.Pool
}

func NewDonorRepository(pool *pgxpool.Pool) *DonorRepository {
	return &DonorRepository{pool: pool}
}

func scanDonor(row pgx.Row) (domain.Donor, error) {
	var d domain.Donor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.BloodType, &d.Contact, &d.CreatedAt)
	return d, err
}

func (r *DonorRepository) CreateDonor(ctx context.Context, donor domain.Donor) (domain.Donor, error) {
	const stmt = `
INSERT INTO donors (name, email, blood_type, contact, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + donorColumns

	d, err := scanDonor(conn(ctx, r.pool).QueryRow(ctx, stmt,
		donor.Name, donor.Email, donor.BloodType, donor.Contact, donor.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Donor{}, domain.ErrEmailTaken
		}
		return domain.Donor{}, fmt.Errorf("create donor: %w", err)
	}
	return d, nil
}

func (r *DonorRepository) GetDonor(ctx context.Context, id int64) (domain.Donor, error) {
	const query = `SELECT ` + donorColumns + ` FROM donors WHERE id = $1`

	d, err := scanDonor(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Donor{}, domain.ErrDonorNotFound
		}
		return domain.Donor{}, fmt.Errorf("get donor: %w", err)
	}
	return d, nil
}

func (r *DonorRepository) FindDonorByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	const query = `SELECT ` + donorColumns + ` FROM donors WHERE email = $1`

	d, err := scanDonor(conn(ctx, r.pool).QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find donor by email: %w", err)
	}
	return &d, nil
}

func (r *DonorRepository) ListDonors(ctx context.Context, offset, limit int) ([]domain.Donor, error) {
	const query = `
SELECT ` + donorColumns + `
FROM donors
ORDER BY id ASC
LIMIT $1 OFFSET $2`

	rows, err := conn(ctx, r.pool).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	donors := make([]domain.Donor, 0, limit)
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate donors: %w", rows.Err())
	}
	return donors, nil
}

func (r *DonorRepository) UpdateDonor(ctx context.Context, donor domain.Donor) (domain.Donor, error) {
	const stmt = `
UPDATE donors
SET name = $2, email = $3, blood_type = $4, contact = $5
WHERE id = $1
RETURNING ` + donorColumns

	d, err := scanDonor(conn(ctx, r.pool).QueryRow(ctx, stmt,
		donor.ID, donor.Name, donor.Email, donor.BloodType, donor.Contact))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Donor{}, domain.ErrDonorNotFound
		}
		if isUniqueViolation(err) {
			return domain.Donor{}, domain.ErrEmailTaken
		}
		return domain.Donor{}, fmt.Errorf("update donor: %w", err)
	}
	return d, nil
}

func (r *DonorRepository) DeleteDonor(ctx context.Context, id int64) (domain.Donor, error) {
	const stmt = `DELETE FROM donors WHERE id = $1 RETURNING ` + donorColumns

	d, err := scanDonor(conn(ctx, r.pool).QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Donor{}, domain.ErrDonorNotFound
		}
		return domain.Donor{}, fmt.Errorf("delete donor: %w", err)
	}
	return d, nil
}
