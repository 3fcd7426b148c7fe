package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cimillas/bloodbank/internal/domain"
)

// StockLister is the minimal interface needed to list stock.
type StockLister interface {
	ListStock(ctx context.Context) ([]domain.BloodStock, error)
}

// StockUpdater is the minimal interface needed to set a stock level.
type StockUpdater interface {
	UpdateStockLevel(ctx context.Context, bloodType string, volume int) (domain.BloodStock, error)
}

// HandleListStock returns an HTTP handler for GET /blood-stock.
func HandleListStock(svc StockLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stock, err := svc.ListStock(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]stockResponse, 0, len(stock))
		for _, s := range stock {
			resp = append(resp, toStockResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleUpdateStock returns an HTTP handler for PUT /blood-stock.
func HandleUpdateStock(svc StockUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStockRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		row, err := svc.UpdateStockLevel(r.Context(), req.BloodType, *req.Volume)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toStockResponse(row))
	}
}

type updateStockRequest struct {
	BloodType string `json:"bloodType" validate:"required"`
	Volume    *int   `json:"volume" validate:"required"`
}

type stockResponse struct {
	BloodType string    `json:"bloodType"`
	Volume    int       `json:"volume"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toStockResponse(s domain.BloodStock) stockResponse {
	return stockResponse{
		BloodType: s.BloodType,
		Volume:    s.Volume,
		UpdatedAt: s.UpdatedAt,
	}
}
