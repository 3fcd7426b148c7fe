package app

import (
	"context"
	"math"
	"strings"

	"github.com/cimillas/bloodbank/internal/clock"
	"github.com/cimillas/bloodbank/internal/domain"
)

type DonorRepository interface {
	CreateDonor(ctx context.Context, donor domain.Donor) (domain.Donor, error)
	GetDonor(ctx context.Context, id int64) (domain.Donor, error)
	FindDonorByEmail(ctx context.Context, email string) (*domain.Donor, error)
	ListDonors(ctx context.Context, offset, limit int) ([]domain.Donor, error)
	UpdateDonor(ctx context.Context, donor domain.Donor) (domain.Donor, error)
	DeleteDonor(ctx context.Context, id int64) (domain.Donor, error)
}

type DonorService struct {
	repo  DonorRepository
	clock clock.Clock
}

func NewDonorService(repo DonorRepository, clk clock.Clock) *DonorService {
	return &DonorService{
		repo:  repo,
		clock: clk,
	}
}

type RegisterDonorInput struct {
	Name      string
	Email     string
	BloodType string
	Contact   string
}

func (s *DonorService) RegisterDonor(ctx context.Context, in RegisterDonorInput) (domain.Donor, error) {
	donor := domain.Donor{
		Name:      strings.TrimSpace(in.Name),
		Email:     domain.NormalizeEmail(in.Email),
		BloodType: domain.NormalizeBloodType(in.BloodType),
		Contact:   strings.TrimSpace(in.Contact),
		CreatedAt: s.clock.Now(),
	}
	if err := validateDonor(donor); err != nil {
		return domain.Donor{}, err
	}

	existing, err := s.repo.FindDonorByEmail(ctx, donor.Email)
	if err != nil {
		return domain.Donor{}, err
	}
	if existing != nil {
		return domain.Donor{}, domain.ErrEmailTaken
	}

	// The unique index still catches a concurrent registration with the same email.
	return s.repo.CreateDonor(ctx, donor)
}

func (s *DonorService) FindDonorByID(ctx context.Context, id int64) (domain.Donor, error) {
	if id <= 0 {
		return domain.Donor{}, domain.ErrInvalidID
	}
	return s.repo.GetDonor(ctx, id)
}

// ListDonors returns one page of donors ordered by id. Pages start at 1.
func (s *DonorService) ListDonors(ctx context.Context, page, limit int) ([]domain.Donor, error) {
	if page <= 0 || limit <= 0 {
		return nil, domain.ErrInvalidPagination
	}
	if page-1 > math.MaxInt32/limit {
		return nil, domain.ErrInvalidPagination
	}
	return s.repo.ListDonors(ctx, (page-1)*limit, limit)
}

func (s *DonorService) UpdateDonorDetails(ctx context.Context, id int64, patch domain.DonorPatch) (domain.Donor, error) {
	if id <= 0 {
		return domain.Donor{}, domain.ErrInvalidID
	}

	existing, err := s.repo.GetDonor(ctx, id)
	if err != nil {
		return domain.Donor{}, err
	}

	updated := patch.Apply(existing)
	if err := validateDonor(updated); err != nil {
		return domain.Donor{}, err
	}

	if updated.Email != existing.Email {
		owner, err := s.repo.FindDonorByEmail(ctx, updated.Email)
		if err != nil {
			return domain.Donor{}, err
		}
		if owner != nil && owner.ID != id {
			return domain.Donor{}, domain.ErrEmailTaken
		}
	}

	return s.repo.UpdateDonor(ctx, updated)
}

func (s *DonorService) RemoveDonor(ctx context.Context, id int64) (domain.Donor, error) {
	if id <= 0 {
		return domain.Donor{}, domain.ErrInvalidID
	}
	return s.repo.DeleteDonor(ctx, id)
}

func validateDonor(d domain.Donor) error {
	missing := map[string]string{}
	if d.Name == "" {
		missing["name"] = "required"
	}
	if d.Email == "" {
		missing["email"] = "required"
	}
	if d.BloodType == "" {
		missing["bloodType"] = "required"
	}
	if d.Contact == "" {
		missing["contact"] = "required"
	}
	if len(missing) > 0 {
		return domain.ErrInvalidDonor.WithDetails(missing)
	}
	return nil
}
