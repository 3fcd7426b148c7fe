package app

import (
	"context"

	"github.com/cimillas/bloodbank/internal/domain"
)

// StockCache is a best-effort cache of the full stock listing. Implementations
// swallow their own failures; a miss always falls through to the repository.
//
// On a miss Load returns the cache generation observed before the caller reads
// the repository. Store must drop the listing when an Invalidate has happened
// since that generation was read, so a listing read before a write commits
// never outlives the write. An empty generation means Store must not write.
type StockCache interface {
	Load(ctx context.Context) (stock []domain.BloodStock, generation string, ok bool)
	Store(ctx context.Context, generation string, stock []domain.BloodStock)
	Invalidate(ctx context.Context)
}

type noopStockCache struct{}

func (noopStockCache) Load(context.Context) ([]domain.BloodStock, string, bool) {
	return nil, "", false
}
func (noopStockCache) Store(context.Context, string, []domain.BloodStock) {}
func (noopStockCache) Invalidate(context.Context)                         {}

// TransitionObserver is told about every attempted request status transition.
type TransitionObserver interface {
	ObserveTransition(status domain.RequestStatus, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveTransition(domain.RequestStatus, error) {}
