package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cimillas/bloodbank/internal/app"
	"github.com/cimillas/bloodbank/internal/domain"
)

const (
	defaultDonorPage  = 1
	defaultDonorLimit = 10
)

type DonorRegistrar interface {
	RegisterDonor(ctx context.Context, in app.RegisterDonorInput) (domain.Donor, error)
}

type DonorFinder interface {
	FindDonorByID(ctx context.Context, id int64) (domain.Donor, error)
}

type DonorLister interface {
	ListDonors(ctx context.Context, page, limit int) ([]domain.Donor, error)
}

type DonorUpdater interface {
	UpdateDonorDetails(ctx context.Context, id int64, patch domain.DonorPatch) (domain.Donor, error)
}

type DonorRemover interface {
	RemoveDonor(ctx context.Context, id int64) (domain.Donor, error)
}

// HandleListDonors returns an HTTP handler for GET /donors?page=&limit=.
func HandleListDonors(svc DonorLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := queryInt(r, "page", defaultDonorPage)
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidPagination, "page must be a positive integer")
			return
		}
		limit, ok := queryInt(r, "limit", defaultDonorLimit)
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidPagination, "limit must be a positive integer")
			return
		}

		donors, err := svc.ListDonors(r.Context(), page, limit)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]donorResponse, 0, len(donors))
		for _, d := range donors {
			resp = append(resp, toDonorResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRegisterDonor returns an HTTP handler for POST /donors.
func HandleRegisterDonor(svc DonorRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDonorRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		donor, err := svc.RegisterDonor(r.Context(), app.RegisterDonorInput{
			Name:      req.Name,
			Email:     req.Email,
			BloodType: req.BloodType,
			Contact:   req.Contact,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDonorResponse(donor))
	}
}

// HandleGetDonor returns an HTTP handler for GET /donors/{id}.
func HandleGetDonor(svc DonorFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		donor, err := svc.FindDonorByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDonorResponse(donor))
	}
}

// HandleUpdateDonor returns an HTTP handler for PUT /donors/{id}. Absent
// fields are left unchanged.
func HandleUpdateDonor(svc DonorUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req updateDonorRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		donor, err := svc.UpdateDonorDetails(r.Context(), id, domain.DonorPatch{
			Name:      req.Name,
			Email:     req.Email,
			BloodType: req.BloodType,
			Contact:   req.Contact,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDonorResponse(donor))
	}
}

// HandleDeleteDonor returns an HTTP handler for DELETE /donors/{id}.
func HandleDeleteDonor(svc DonorRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		donor, err := svc.RemoveDonor(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDonorResponse(donor))
	}
}

// pathID parses the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

type createDonorRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	BloodType string `json:"bloodType" validate:"required"`
	Contact   string `json:"contact" validate:"required"`
}

type updateDonorRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	BloodType *string `json:"bloodType"`
	Contact   *string `json:"contact"`
}

type donorResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	BloodType string    `json:"bloodType"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"createdAt"`
}

func toDonorResponse(d domain.Donor) donorResponse {
	return donorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		BloodType: d.BloodType,
		Contact:   d.Contact,
		CreatedAt: d.CreatedAt,
	}
}
