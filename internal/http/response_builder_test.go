package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"fintech/internal/assistant"
	"fintech/internal/auth"
	"fintech/internal/core"
	"fintech/internal/services"
	"fintech/internal/store"
)

func TestJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("Location", "/x").Body(map[string]int{"id": 1}).Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/x", rec.Header().Get("Location"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrap: %w", core.ErrEmptyCategory), http.StatusUnprocessableEntity},
		{assistant.ErrEmptyMessage, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: 9", services.ErrExpenseNotFound), http.StatusNotFound},
		{store.ErrNotFound, http.StatusNotFound},
		{services.ErrInvalidSort, http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{auth.ErrMissingToken, http.StatusUnauthorized},
		{errors.Join(auth.ErrInvalidToken, errors.New("expired")), http.StatusUnauthorized},
		{assistant.ErrSuperseded, http.StatusConflict},
		{assistant.ErrClosed, http.StatusGone},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}
