package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/bloodbank/internal/domain"
)

type StockRepository struct {
	pool *pgxpool.Pool
}

func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

func (r *StockRepository) ListStock(ctx context.Context) ([]domain.BloodStock, error) {
	const query = `
SELECT blood_type, volume, updated_at
FROM blood_stock
ORDER BY blood_type ASC`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	stock := make([]domain.BloodStock, 0)
	for rows.Next() {
		var s domain.BloodStock
		if err := rows.Scan(&s.BloodType, &s.Volume, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stock = append(stock, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate stock: %w", rows.Err())
	}
	return stock, nil
}

func (r *StockRepository) UpsertStock(ctx context.Context, stock domain.BloodStock) (domain.BloodStock, error) {
	const stmt = `
INSERT INTO blood_stock (blood_type, volume, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (blood_type) DO UPDATE
SET volume = EXCLUDED.volume, updated_at = EXCLUDED.updated_at
RETURNING blood_type, volume, updated_at`

	var out domain.BloodStock
	err := conn(ctx, r.pool).QueryRow(ctx, stmt, stock.BloodType, stock.Volume, stock.UpdatedAt).
		Scan(&out.BloodType, &out.Volume, &out.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.BloodStock{}, domain.ErrNegativeVolume
		}
		return domain.BloodStock{}, fmt.Errorf("upsert stock: %w", err)
	}
	return out, nil
}
