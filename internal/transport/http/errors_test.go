package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/bloodbank/internal/domain"
)

var errBoom = errors.New("boom")

func TestWriteServiceError_KindToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrInvalidID, http.StatusBadRequest, "invalid_id"},
		{domain.ErrInsufficientStock, http.StatusBadRequest, "insufficient_stock"},
		{domain.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{domain.ErrRequestNotPending, http.StatusConflict, "request_not_pending"},
		{domain.ErrDonorNotFound, http.StatusNotFound, "donor_not_found"},
		{fmt.Errorf("wrapped: %w", domain.ErrDonorNotFound), http.StatusNotFound, "donor_not_found"},
		{errBoom, http.StatusInternalServerError, codeInternalError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

		require.Equal(t, tt.wantStatus, rec.Code, "%v", tt.err)
		var resp errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, tt.wantCode, resp.Code, "%v", tt.err)
	}
}

func TestWriteServiceError_IncludesDetails(t *testing.T) {
	t.Parallel()

	err := domain.ErrInvalidDonor.WithDetails(map[string]string{"email": "required"})
	rec := httptest.NewRecorder()
	writeServiceError(rec, httptest.NewRequest(http.MethodPost, "/donors", nil), err)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "required", resp.Details["email"])
	assert.NotEmpty(t, resp.Message)
}
