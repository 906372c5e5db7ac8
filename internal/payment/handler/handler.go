// Package handler exposes the payment intent endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veripay/internal/payment"
	"veripay/pkg/domain"
	dErrors "veripay/pkg/domain-errors"
	"veripay/pkg/platform/httputil"
	"veripay/pkg/requestcontext"
)

// Service defines the payment operations used by handlers.
type Service interface {
	CreateIntent(ctx context.Context, payer, receiver domain.DID, amount int64) (*payment.Intent, error)
	GetIntent(ctx context.Context, id domain.IntentID) (*payment.Intent, error)
	AttachKYC(ctx context.Context, id domain.IntentID, rawToken string) (*payment.Intent, error)
	Confirm(ctx context.Context, id domain.IntentID) (*payment.ConfirmResult, error)
	GetBalance(ctx context.Context, did domain.DID) int64
}

// Handler wires payment endpoints to the payment service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a payment handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts payment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/payments/intents", h.HandleCreateIntent)
	r.Get("/payments/intents/{id}", h.HandleGetIntent)
	r.Post("/payments/{id}/verify-kyc", h.HandleVerifyKYC)
	r.Post("/payments/{id}/confirm", h.HandleConfirm)
	r.Get("/payments/balance/{did}", h.HandleGetBalance)
}

// HandleCreateIntent handles POST /payments/intents requests.
func (h *Handler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateIntentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	intent, err := h.service.CreateIntent(ctx, req.ParsedPayer(), req.ParsedReceiver(), req.Amount)
	if err != nil {
		h.logger.WarnContext(ctx, "intent creation rejected",
			"request_id", requestID,
			"payer", req.PayerDID,
			"receiver", req.ReceiverDID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromIntent(intent))
}

// HandleGetIntent handles GET /payments/intents/{id} requests.
func (h *Handler) HandleGetIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.intentID(w, r)
	if !ok {
		return
	}

	intent, err := h.service.GetIntent(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromIntent(intent))
}

// HandleVerifyKYC handles POST /payments/{id}/verify-kyc requests.
func (h *Handler) HandleVerifyKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.intentID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyKYCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	intent, err := h.service.AttachKYC(ctx, id, req.DecisionToken)
	if err != nil {
		h.logger.WarnContext(ctx, "KYC attachment rejected",
			"request_id", requestID,
			"intent_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromIntent(intent))
}

// HandleConfirm handles POST /payments/{id}/confirm requests.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.intentID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Confirm(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "confirmation rejected",
			"request_id", requestID,
			"intent_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromConfirmResult(result))
}

// HandleGetBalance handles GET /payments/balance/{did} requests.
func (h *Handler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	did, err := domain.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		DID:     did.String(),
		Balance: h.service.GetBalance(ctx, did),
	})
}

func (h *Handler) intentID(w http.ResponseWriter, r *http.Request) (domain.IntentID, bool) {
	id, err := domain.ParseIntentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed intent id"))
		return domain.IntentID{}, false
	}
	return id, true
}
