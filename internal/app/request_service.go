package app

import (
	"context"
	"strings"
	"time"

	"github.com/cimillas/bloodbank/internal/clock"
	"github.com/cimillas/bloodbank/internal/domain"
)

type RequestRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateRequest(ctx context.Context, req domain.Request, recipient domain.Recipient) (domain.Request, error)
	ListRequests(ctx context.Context) ([]domain.Request, error)
	GetRequestForUpdate(ctx context.Context, id int64) (domain.Request, error)
	DecrementStock(ctx context.Context, bloodType string, volume int, at time.Time) (domain.BloodStock, error)
	SetRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (domain.Request, error)
}

type RequestService struct {
	repo     RequestRepository
	clock    clock.Clock
	cache    StockCache
	observer TransitionObserver
}

type RequestServiceOption func(*RequestService)

// WithStockInvalidation drops the cached stock listing after each fulfillment.
func WithStockInvalidation(c StockCache) RequestServiceOption {
	return func(s *RequestService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithTransitionObserver reports every status transition attempt to o.
func WithTransitionObserver(o TransitionObserver) RequestServiceOption {
	return func(s *RequestService) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewRequestService(repo RequestRepository, clk clock.Clock, opts ...RequestServiceOption) *RequestService {
	svc := &RequestService{
		repo:     repo,
		clock:    clk,
		cache:    noopStockCache{},
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type SubmitRequestInput struct {
	BloodType string
	Volume    int
}

type RecipientInput struct {
	Name      string
	Email     string
	Contact   string
	BloodType string
}

// SubmitRequest records a pending request together with its recipient.
// Field presence is checked at the HTTP boundary.
func (s *RequestService) SubmitRequest(ctx context.Context, in SubmitRequestInput, rin RecipientInput) (domain.Request, error) {
	bloodType := domain.NormalizeBloodType(in.BloodType)
	if bloodType == "" {
		return domain.Request{}, domain.ErrBloodTypeRequired
	}
	if in.Volume <= 0 {
		return domain.Request{}, domain.ErrInvalidVolume
	}

	recipient := domain.Recipient{
		Name:      strings.TrimSpace(rin.Name),
		Email:     domain.NormalizeEmail(rin.Email),
		Contact:   strings.TrimSpace(rin.Contact),
		BloodType: domain.NormalizeBloodType(rin.BloodType),
	}
	if recipient.BloodType == "" {
		recipient.BloodType = bloodType
	}

	req := domain.Request{
		Date:      s.clock.Now(),
		BloodType: bloodType,
		Volume:    in.Volume,
		Status:    domain.RequestStatusPending,
	}
	return s.repo.CreateRequest(ctx, req, recipient)
}

// ListAllRequests returns every request with its recipient, newest first.
func (s *RequestService) ListAllRequests(ctx context.Context) ([]domain.Request, error) {
	return s.repo.ListRequests(ctx)
}

// UpdateRequestStatus moves a pending request to fulfilled or rejected.
// Fulfillment decrements stock in the same transaction and fails with
// ErrInsufficientStock, leaving both stock and request untouched, when the
// committed stock cannot cover the requested volume.
func (s *RequestService) UpdateRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (domain.Request, error) {
	if !status.Terminal() {
		return domain.Request{}, domain.Validation(domain.ErrInvalidStatus.Code, "status %q must be fulfilled or rejected", status)
	}
	if id <= 0 {
		return domain.Request{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Request
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.GetRequestForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if req.Status != domain.RequestStatusPending {
			return domain.ErrRequestNotPending
		}

		if status == domain.RequestStatusFulfilled {
			if _, err := s.repo.DecrementStock(txCtx, req.BloodType, req.Volume, now); err != nil {
				return err
			}
		}

		updated, err := s.repo.SetRequestStatus(txCtx, id, status)
		if err != nil {
			return err
		}
		result = updated
		return nil
	})
	s.observer.ObserveTransition(status, err)
	if err != nil {
		return domain.Request{}, err
	}

	if status == domain.RequestStatusFulfilled {
		s.cache.Invalidate(ctx)
	}
	return result, nil
}
