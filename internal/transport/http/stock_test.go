package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/bloodbank/internal/domain"
)

func TestHandleListStock(t *testing.T) {
	t.Parallel()

	t.Run("renders camelCase rows", func(t *testing.T) {
		t.Parallel()
		svc := &stubStockService{stock: []domain.BloodStock{
			{BloodType: "A+", Volume: 5, UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		}}
		rec := httptest.NewRecorder()
		HandleListStock(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blood-stock", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"bloodType":"A+","volume":5,"updatedAt":"2025-01-01T00:00:00Z"}]`, rec.Body.String())
	})

	t.Run("empty ledger renders empty array", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		HandleListStock(&stubStockService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blood-stock", nil))

		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("store failure is 500", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		HandleListStock(&stubStockService{err: errors.New("conn refused")}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blood-stock", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "conn refused", "internal error leaked to client")
	})
}

func TestHandleUpdateStock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"bloodType":"A+","volume":12}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"volume":12`,
		},
		{
			name:           "zero volume is allowed",
			body:           `{"bloodType":"A+","volume":0}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"volume":0`,
		},
		{
			name:           "invalid json",
			body:           `{"bloodType":`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidRequestBody,
		},
		{
			name:           "unknown field",
			body:           `{"bloodType":"A+","volume":1,"extra":true}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidRequestBody,
		},
		{
			name:           "missing volume",
			body:           `{"bloodType":"A+"}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"volume":"required"`,
		},
		{
			name:           "negative volume",
			body:           `{"bloodType":"A+","volume":-1}`,
			serviceErr:     domain.ErrNegativeVolume,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"negative_volume"`,
		},
		{
			name:           "blank blood type",
			body:           `{"bloodType":"  ","volume":1}`,
			serviceErr:     domain.ErrBloodTypeRequired,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"blood_type_required"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubStockService{err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPut, "/blood-stock", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleUpdateStock(svc).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.expectedSubstr)
		})
	}
}
