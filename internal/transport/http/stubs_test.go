package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cimillas/bloodbank/internal/app"
	"github.com/cimillas/bloodbank/internal/domain"
)

// withURLParam attaches a chi route context so handlers can read {key}
// without going through a router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type stubStockService struct {
	stock     []domain.BloodStock
	err       error
	gotType   string
	gotVolume int
}

func (s *stubStockService) ListStock(context.Context) ([]domain.BloodStock, error) {
	return s.stock, s.err
}

func (s *stubStockService) UpdateStockLevel(_ context.Context, bloodType string, volume int) (domain.BloodStock, error) {
	s.gotType, s.gotVolume = bloodType, volume
	if s.err != nil {
		return domain.BloodStock{}, s.err
	}
	return domain.BloodStock{BloodType: bloodType, Volume: volume}, nil
}

type stubDonorService struct {
	donor    domain.Donor
	donors   []domain.Donor
	err      error
	gotID    int64
	gotPage  int
	gotLimit int
	gotPatch domain.DonorPatch
	gotInput app.RegisterDonorInput
}

func (s *stubDonorService) RegisterDonor(_ context.Context, in app.RegisterDonorInput) (domain.Donor, error) {
	s.gotInput = in
	return s.donor, s.err
}

func (s *stubDonorService) FindDonorByID(_ context.Context, id int64) (domain.Donor, error) {
	s.gotID = id
	return s.donor, s.err
}

func (s *stubDonorService) ListDonors(_ context.Context, page, limit int) ([]domain.Donor, error) {
	s.gotPage, s.gotLimit = page, limit
	return s.donors, s.err
}

func (s *stubDonorService) UpdateDonorDetails(_ context.Context, id int64, patch domain.DonorPatch) (domain.Donor, error) {
	s.gotID, s.gotPatch = id, patch
	return s.donor, s.err
}

func (s *stubDonorService) RemoveDonor(_ context.Context, id int64) (domain.Donor, error) {
	s.gotID = id
	return s.donor, s.err
}

type stubRequestService struct {
	request      domain.Request
	requests     []domain.Request
	err          error
	gotID        int64
	gotStatus    domain.RequestStatus
	gotInput     app.SubmitRequestInput
	gotRecipient app.RecipientInput
}

func (s *stubRequestService) SubmitRequest(_ context.Context, in app.SubmitRequestInput, rin app.RecipientInput) (domain.Request, error) {
	s.gotInput, s.gotRecipient = in, rin
	return s.request, s.err
}

func (s *stubRequestService) ListAllRequests(context.Context) ([]domain.Request, error) {
	return s.requests, s.err
}

func (s *stubRequestService) UpdateRequestStatus(_ context.Context, id int64, status domain.RequestStatus) (domain.Request, error) {
	s.gotID, s.gotStatus = id, status
	return s.request, s.err
}
