package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cimillas/bloodbank/internal/domain"
)

const donorColumns = `id, name, email, blood_type, contact, created_at`

type DonorRepository struct {
	db *sql.DB
}

func NewDonorRepository(db *sql.DB) *DonorRepository {
	return &DonorRepository{db: db}
}

func scanDonor(row scanner) (domain.Donor, error) {
	var d domain.Donor
	var created int64
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.BloodType, &d.Contact, &created); err != nil {
		return domain.Donor{}, err
	}
	d.CreatedAt = fromUnix(created)
	return d, nil
}

func (r *DonorRepository) CreateDonor(ctx context.Context, donor domain.Donor) (domain.Donor, error) {
	const stmt = `
INSERT INTO donors (name, email, blood_type, contact, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + donorColumns

	d, err := scanDonor(conn(ctx, r.db).QueryRowContext(ctx, stmt,
		donor.Name, donor.Email, donor.BloodType, donor.Contact, toUnix(donor.CreatedAt)))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Donor{}, domain.ErrEmailTaken
		}
		return domain.Donor{}, fmt.Errorf("create donor: %w", err)
	}
	return d, nil
}

func (r *DonorRepository) GetDonor(ctx context.Context, id int64) (domain.Donor, error) {
	d, err := scanDonor(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Donor{}, domain.ErrDonorNotFound
		}
		return domain.Donor{}, fmt.Errorf("get donor: %w", err)
	}
	return d, nil
}

func (r *DonorRepository) FindDonorByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	d, err := scanDonor(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find donor by email: %w", err)
	}
	return &d, nil
}

func (r *DonorRepository) ListDonors(ctx context.Context, offset, limit int) ([]domain.Donor, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+donorColumns+` FROM donors ORDER BY id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	donors := make([]domain.Donor, 0, limit)
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donors: %w", err)
	}
	return donors, nil
}

func (r *DonorRepository) UpdateDonor(ctx context.Context, donor domain.Donor) (domain.Donor, error) {
	const stmt = `
UPDATE donors
SET name = ?, email = ?, blood_type = ?, contact = ?
WHERE id = ?
RETURNING ` + donorColumns

	d, err := scanDonor(conn(ctx, r.db).QueryRowContext(ctx, stmt,
		donor.Name, donor.Email, donor.BloodType, donor.Contact, donor.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	d, err := scanDonor(conn(ctx, r.db).QueryRowContext(ctx,
		`DELETE FROM donors WHERE id = ? RETURNING `+donorColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Donor{}, domain.ErrDonorNotFound
		}
		return domain.Donor{}, fmt.Errorf("delete donor: %w", err)
	}
	return d, nil
}
