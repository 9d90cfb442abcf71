package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tobyh/campussync/internal/domain"
	"github.com/tobyh/campussync/internal/parser"
)

const maxBodyBytes = 4 << 20

// Handler exposes the pipeline as a webhook endpoint. Register it as
// "POST /webhook/{module}".
type Handler struct {
	service       *Service
	defaultTenant uuid.UUID
	log           *zap.Logger
}

// NewHTTPHandler wraps the pipeline service. defaultTenant applies when
// the caller sends no X-Tenant-ID header; uuid.Nil disables the fallback.
func NewHTTPHandler(service *Service, defaultTenant uuid.UUID, log *zap.Logger) *Handler {
	return &Handler{service: service, defaultTenant: defaultTenant, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	module := domain.Kind(strings.TrimSpace(r.PathValue("module")))
	if !module.Valid() {
		http.Error(w, fmt.Sprintf("unknown module: %q", module), http.StatusBadRequest)
		return
	}

	tenantID := h.defaultTenant
	if header := strings.TrimSpace(r.Header.Get("X-Tenant-ID")); header != "" {
		parsed, err := uuid.Parse(header)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid tenant id: %v", err), http.StatusBadRequest)
			return
		}
		tenantID = parsed
	}
	if tenantID == uuid.Nil {
		http.Error(w, "tenant id is required", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read body: %v", err), http.StatusBadRequest)
		return
	}

	outcomes, err := h.service.Process(r.Context(), Notification{
		TenantID:  tenantID,
		Module:    module,
		EventType: strings.TrimSpace(r.Header.Get("X-Event-Type")),
		Instance:  strings.TrimSpace(r.Header.Get("X-Notification-ID")),
		Body:      body,
	})
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrEmptyPayload),
			errors.Is(err, parser.ErrMalformedEnvelope),
			errors.Is(err, ErrUnknownModule):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.log.Error("pipeline failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"results": outcomes}); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}
