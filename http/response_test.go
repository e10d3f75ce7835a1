package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stash-sh/stash"
	stashhttp "github.com/stash-sh/stash/http"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: stash.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "admission denied", err: stash.ErrAdmissionDenied, wantStatus: http.StatusForbidden, wantCode: "access_denied"},
		{name: "bad scheme", err: stash.ErrAuthScheme, wantStatus: http.StatusForbidden, wantCode: "bad_scheme"},
		{name: "invalid token", err: stash.ErrInvalidToken, wantStatus: http.StatusBadRequest, wantCode: "invalid_token"},
		{name: "negotiation", err: stash.ErrNegotiation, wantStatus: http.StatusBadRequest, wantCode: "unsupported_type"},
		{name: "malformed payload", err: stash.ErrMalformedPayload, wantStatus: http.StatusBadRequest, wantCode: "malformed_payload"},
		{name: "payload too large", err: stash.ErrPayloadTooLarge, wantStatus: http.StatusForbidden, wantCode: "too_large"},
		{name: "wrapped sentinel", err: fmt.Errorf("lookup: %w", stash.ErrNotFound), wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "unknown error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			stashhttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := stashhttp.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
