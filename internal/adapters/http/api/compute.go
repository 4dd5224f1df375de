package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/storefront/internal/adapters/mq/dispatcher"
	"github.com/okian/storefront/internal/adapters/mq/message"
	service "github.com/okian/storefront/internal/app"
)

// ComputeHandler accepts raw wire messages.
type ComputeHandler struct {
	deps Dependencies
}

// NewComputeHandler creates a new compute handler.
func NewComputeHandler(deps Dependencies) *ComputeHandler {
	return &ComputeHandler{deps: deps}
}

// HandleCompute handles POST /compute with a {"type","data"} body and answers
// with the engine's {"type","data"} response.
func (h *ComputeHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
		return
	}
	env, err := message.FromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	resp, err := h.deps.Compute(r.Context(), env)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out, err := message.EncodeResponse(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	b, err := message.ToJSON(out)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeRawJSON(w, http.StatusOK, b)
}

// writeServiceError maps service and dispatcher failures to HTTP errors.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case isClientError(err):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNoResponse):
		writeError(w, http.StatusGatewayTimeout, "no_response", err)
	case errors.Is(err, context.Canceled):
		writeError(w, statusClientClosed, "canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	case errors.Is(err, dispatcher.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, dispatcher.ErrEngineUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
