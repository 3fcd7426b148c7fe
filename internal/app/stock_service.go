package app

import (
	"context"

	"github.com/cimillas/bloodbank/internal/clock"
	"github.com/cimillas/bloodbank/internal/domain"
)

type StockRepository interface {
	ListStock(ctx context.Context) ([]domain.BloodStock, error)
	UpsertStock(ctx context.Context, stock domain.BloodStock) (domain.BloodStock, error)
}

type StockService struct {
	repo  StockRepository
	clock clock.Clock
	cache StockCache
}

type StockServiceOption func(*StockService)

// WithStockCache serves ListStock from c and invalidates it on updates.
func WithStockCache(c StockCache) StockServiceOption {
	return func(s *StockService) {
		if c != nil {
			s.cache = c
		}
	}
}

func NewStockService(repo StockRepository, clk clock.Clock, opts ...StockServiceOption) *StockService {
	svc := &StockService{
		repo:  repo,
		clock: clk,
		cache: noopStockCache{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ListStock returns every stock row ordered by blood type.
func (s *StockService) ListStock(ctx context.Context) ([]domain.BloodStock, error) {
	cached, generation, ok := s.cache.Load(ctx)
	if ok {
		return cached, nil
	}
	stock, err := s.repo.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Store(ctx, generation, stock)
	return stock, nil
}

// UpdateStockLevel sets the volume for bloodType, creating the row if needed.
// The volume overwrites the current value; it is not added to it.
func (s *StockService) UpdateStockLevel(ctx context.Context, bloodType string, volume int) (domain.BloodStock, error) {
	bloodType = domain.NormalizeBloodType(bloodType)
	if bloodType == "" {
		return domain.BloodStock{}, domain.ErrBloodTypeRequired
	}
	if volume < 0 {
		return domain.BloodStock{}, domain.ErrNegativeVolume
	}

	row, err := s.repo.UpsertStock(ctx, domain.BloodStock{
		BloodType: bloodType,
		Volume:    volume,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		return domain.BloodStock{}, err
	}
	s.cache.Invalidate(ctx)
	return row, nil
}
