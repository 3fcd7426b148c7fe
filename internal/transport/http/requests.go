package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cimillas/bloodbank/internal/app"
	"github.com/cimillas/bloodbank/internal/domain"
)

type RequestSubmitter interface {
	SubmitRequest(ctx context.Context, in app.SubmitRequestInput, recipient app.RecipientInput) (domain.Request, error)
}

type RequestLister interface {
	ListAllRequests(ctx context.Context) ([]domain.Request, error)
}

type RequestStatusUpdater interface {
	UpdateRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (domain.Request, error)
}

// HandleListRequests returns an HTTP handler for GET /requests.
func HandleListRequests(svc RequestLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := svc.ListAllRequests(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]requestResponse, 0, len(requests))
		for _, req := range requests {
			resp = append(resp, toRequestResponse(req))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleSubmitRequest returns an HTTP handler for POST /requests.
func HandleSubmitRequest(svc RequestSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequestRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		created, err := svc.SubmitRequest(r.Context(),
			app.SubmitRequestInput{
				BloodType: req.RequestData.BloodType,
				Volume:    req.RequestData.Volume,
			},
			app.RecipientInput{
				Name:      req.RecipientData.Name,
				Email:     req.RecipientData.Email,
				Contact:   req.RecipientData.Contact,
				BloodType: req.RecipientData.BloodType,
			},
		)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRequestResponse(created))
	}
}

// HandleUpdateRequestStatus returns an HTTP handler for
// PUT /requests/{id}/status. A missing request answers 400 on this route.
func HandleUpdateRequestStatus(svc RequestStatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req updateStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		updated, err := svc.UpdateRequestStatus(r.Context(), id, domain.RequestStatus(req.Status))
		if err != nil {
			if errors.Is(err, domain.ErrRequestNotFound) {
				writeError(w, http.StatusBadRequest, domain.ErrRequestNotFound.Code, domain.ErrRequestNotFound.Message)
				return
			}
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponse(updated))
	}
}

type submitRequestRequest struct {
	RequestData   *requestData   `json:"requestData" validate:"required"`
	RecipientData *recipientData `json:"recipientData" validate:"required"`
}

type requestData struct {
	BloodType string `json:"bloodType" validate:"required"`
	Volume    int    `json:"volume"`
}

type recipientData struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Contact   string `json:"contact" validate:"required"`
	BloodType string `json:"bloodType"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=fulfilled rejected"`
}

type recipientResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`
	BloodType string `json:"bloodType"`
}

type requestResponse struct {
	ID          int64              `json:"id"`
	RecipientID int64              `json:"recipientId"`
	Date        time.Time          `json:"date"`
	BloodType   string             `json:"bloodType"`
	Volume      int                `json:"volume"`
	Status      string             `json:"status"`
	Recipient   *recipientResponse `json:"recipient,omitempty"`
}

func toRequestResponse(req domain.Request) requestResponse {
	resp := requestResponse{
		ID:          req.ID,
		RecipientID: req.RecipientID,
		Date:        req.Date,
		BloodType:   req.BloodType,
		Volume:      req.Volume,
		Status:      string(req.Status),
	}
	if req.Recipient != nil {
		resp.Recipient = &recipientResponse{
			ID:        req.Recipient.ID,
			Name:      req.Recipient.Name,
			Email:     req.Recipient.Email,
			Contact:   req.Recipient.Contact,
			BloodType: req.Recipient.BloodType,
		}
	}
	return resp
}
