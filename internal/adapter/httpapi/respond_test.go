package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError_StatusMapping(t *testing.T) {
	log := logger.NewNop()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("%w: listing", domain.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: sellers only", domain.ErrForbidden), http.StatusForbidden},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"invalid input", fmt.Errorf("%w: title is required", domain.ErrInvalidInput), http.StatusBadRequest},
		{"conflict", fmt.Errorf("%w: already approved", domain.ErrConflict), http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, log, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.err.Error(), decodeError(t, rec))
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRespondError_UnknownCauseStaysOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, logger.NewNop(), errors.New("dial tcp 10.0.0.4:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec))
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusCreated, map[string]string{"id": "listing-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "data")
	assert.NotContains(t, body, "pagination")
}

func TestWritePage(t *testing.T) {
	rec := httptest.NewRecorder()
	writePage(rec, []string{"a", "b"}, domain.NewPagination(2, 20, 45))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data       []string           `json:"data"`
		Pagination *domain.Pagination `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"a", "b"}, body.Data)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 2, body.Pagination.CurrentPage)
	assert.Equal(t, int64(45), body.Pagination.TotalItems)
	assert.True(t, body.Pagination.HasNext)
}
