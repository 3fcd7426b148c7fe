package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cimillas/bloodbank/internal/domain"
)

type StockRepository struct {
	db *sql.DB
}

func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStock(row scanner) (domain.BloodStock, error) {
	var s domain.BloodStock
	var updated int64
	if err := row.Scan(&s.BloodType, &s.Volume, &updated); err != nil {
		return domain.BloodStock{}, err
	}
	s.UpdatedAt = fromUnix(updated)
	return s, nil
}

func (r *StockRepository) ListStock(ctx context.Context) ([]domain.BloodStock, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT blood_type, volume, updated_at FROM blood_stock ORDER BY blood_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stock := make([]domain.BloodStock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stock = append(stock, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock: %w", err)
	}
	return stock, nil
}

func (r *StockRepository) UpsertStock(ctx context.Context, stock domain.BloodStock) (domain.BloodStock, error) {
	const stmt = `
INSERT INTO blood_stock (blood_type, volume, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (blood_type) DO UPDATE
SET volume = excluded.volume, updated_at = excluded.updated_at
RETURNING blood_type, volume, updated_at`

	out, err := scanStock(conn(ctx, r.db).QueryRowContext(ctx, stmt,
		stock.BloodType, stock.Volume, toUnix(stock.UpdatedAt)))
	if err != nil {
		if isCheckViolation(err) {
			return domain.BloodStock{}, domain.ErrNegativeVolume
		}
		return domain.BloodStock{}, fmt.Errorf("upsert stock: %w", err)
	}
	return out, nil
}
