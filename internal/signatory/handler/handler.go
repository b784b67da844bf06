// Package handler is the thin HTTP layer over the intake service. It owns
// JSON decoding, the error-to-status mapping, and nothing else.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"petition/internal/platform/metrics"
	platformmw "petition/internal/platform/middleware"
	"petition/internal/signatory/models"
	dErrors "petition/pkg/domain-errors"
	"petition/pkg/platform/middleware/metadata"
	"petition/pkg/platform/middleware/requesttime"
)

// Service is the interface the handler drives.
type Service interface {
	Sign(ctx context.Context, req *models.SignRequest) (*models.Signatory, error)
	Stats(ctx context.Context) (*models.StatsResponse, error)
}

// Handler handles the signatory endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a signatory Handler. metrics may be nil.
func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: m}
}

// Register mounts the signatory routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	sub := chi.NewRouter()
	sub.Use(platformmw.Recovery(h.logger))
	sub.Use(platformmw.RequestID)
	sub.Use(platformmw.Logger(h.logger))
	sub.Use(platformmw.Latency(h.metrics))
	sub.Use(platformmw.Timeout(30 * time.Second))
	sub.Use(metadata.ClientMetadata)
	sub.Use(requesttime.Middleware)
	sub.Use(platformmw.ContentTypeJSON)
	sub.Post("/signatories", h.handleSign)
	sub.Get("/signatories", h.handleStats)

	r.Mount("/", sub)
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": dErrors.MessageFor(err)})
		return
	}

	sig, err := h.service.Sign(ctx, &req)
	if err != nil {
		h.writeRejection(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.SignResponse{
		Message: "Successfully signed the charter",
		ID:      sig.ID,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeRejection(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeRejection maps intake outcomes to transport statuses: policy
// rejections are 409s with their specific message, verification failures are
// the caller's problem (400), collaborator outages are opaque 500s.
func (h *Handler) writeRejection(ctx context.Context, w http.ResponseWriter, err error) {
	var rejection *models.RejectionError
	if errors.As(err, &rejection) {
		status := http.StatusInternalServerError
		switch {
		case rejection.Reason.IsPolicy():
			status = http.StatusConflict
		case rejection.Reason == models.ReasonVerificationFailed:
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": rejection.Reason.Message()})
		return
	}

	h.logger.ErrorContext(ctx, "unhandled intake error",
		"request_id", platformmw.GetRequestID(ctx),
		"error", err.Error(),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
