package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintech/internal/assistant"
	"fintech/internal/auth"
	"fintech/internal/core"
	"fintech/internal/services"
	"fintech/internal/store"
)

// JSONResponse is a small builder for JSON replies.
type JSONResponse struct {
	statusCode int
	headers    map[string]string
	body       any
}

func NewJSONResponse() *JSONResponse {
	return &JSONResponse{statusCode: http.StatusOK, headers: make(map[string]string)}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.statusCode = code
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

// Body sets the value to encode. A nil body writes no content.
func (b *JSONResponse) Body(v any) *JSONResponse {
	b.body = v
	return b
}

func (b *JSONResponse) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse builds the {"error": message} reply.
func ErrorResponse(statusCode int, message string) *JSONResponse {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponse {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponse {
	return ErrorResponse(http.StatusNotFound, message)
}

func UnprocessableEntityError(message string) *JSONResponse {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case core.IsValidationError(err), errors.Is(err, assistant.ErrEmptyMessage), errors.Is(err, errInvalidSettings):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrExpenseNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, services.ErrInvalidSort):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, assistant.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, assistant.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs the failure and replies with its mapped status. Internal
// errors are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	ctx := r.Context()
	if status >= 500 {
		slog.ErrorContext(ctx, "Request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	} else {
		slog.DebugContext(ctx, "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	ErrorResponse(status, msg).Write(w)
}
