// Package handler exposes the trust registry admin surface.
//
// All routes require the admin key in the X-Admin-Key header, verified
// against the configured bcrypt hash. With no hash configured the surface
// is disabled entirely.
package handler

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veripay/internal/trust"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
	"veripay/pkg/platform/httputil"
	"veripay/pkg/requestcontext"
	"veripay/pkg/secrets"
)

// AdminKeyHeader carries the trust admin key on admin requests.
const AdminKeyHeader = "X-Admin-Key"

// Service defines the registry operations used by the admin surface.
type Service interface {
	AddIssuer(ctx context.Context, issuer domain.DID, key ed25519.PublicKey) error
	RemoveIssuer(ctx context.Context, issuer domain.DID) error
	CacheStats(ctx context.Context) (trust.CacheStats, error)
	ClearExpiredCache(ctx context.Context) (int, error)
}

// Handler wires trust admin endpoints to the registry.
type Handler struct {
	service      Service
	adminKeyHash string
	logger       *slog.Logger
}

// New constructs a trust admin handler. An empty adminKeyHash disables
// every route.
func New(service Service, adminKeyHash string, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		adminKeyHash: adminKeyHash,
		logger:       logger,
	}
}

// Register mounts trust admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/trust/issuers", h.HandleAddIssuer)
	r.Delete("/trust/issuers/{did}", h.HandleRemoveIssuer)
	r.Get("/trust/cache/stats", h.HandleCacheStats)
	r.Post("/trust/cache/clear-expired", h.HandleClearExpired)
}

// authorize checks the admin key header. Writes the error response and
// returns false when the caller is not allowed in.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) bool {
	ctx := r.Context()

	if h.adminKeyHash == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "trust admin surface is disabled"))
		return false
	}

	key := r.Header.Get(AdminKeyHeader)
	if key == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing admin key"))
		return false
	}
	if err := secrets.Verify(key, h.adminKeyHash); err != nil {
		h.logger.WarnContext(ctx, "trust admin key rejected",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid admin key"))
		return false
	}
	return true
}

// HandleAddIssuer handles POST /trust/issuers requests.
func (h *Handler) HandleAddIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.authorize(w, r) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddIssuerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddIssuer(ctx, req.ParsedIssuer(), req.ParsedKey()); err != nil {
		h.logger.ErrorContext(ctx, "failed to add trusted issuer",
			"request_id", requestID,
			"issuer", req.Issuer,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "trusted issuer added",
		"request_id", requestID,
		"issuer", req.Issuer,
	)
	httputil.WriteJSON(w, http.StatusCreated, IssuerResponse{Issuer: req.Issuer, Trusted: true})
}

// HandleRemoveIssuer handles DELETE /trust/issuers/{did} requests.
func (h *Handler) HandleRemoveIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.authorize(w, r) {
		return
	}

	issuer, err := domain.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	if err := h.service.RemoveIssuer(ctx, issuer); err != nil {
		h.logger.ErrorContext(ctx, "failed to remove trusted issuer",
			"request_id", requestID,
			"issuer", issuer,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "trusted issuer removed",
		"request_id", requestID,
		"issuer", issuer,
	)
	httputil.WriteJSON(w, http.StatusOK, IssuerResponse{Issuer: issuer.String(), Trusted: false})
}

// HandleCacheStats handles GET /trust/cache/stats requests.
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorize(w, r) {
		return
	}

	stats, err := h.service.CacheStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read trust cache stats",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleClearExpired handles POST /trust/cache/clear-expired requests.
func (h *Handler) HandleClearExpired(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorize(w, r) {
		return
	}

	removed, err := h.service.ClearExpiredCache(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to clear expired trust cache entries",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ClearExpiredResponse{Removed: removed})
}
