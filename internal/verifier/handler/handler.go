// Package handler exposes the verification endpoints and the verifier's
// discovery documents.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veripay/internal/platform/keys"
	"veripay/internal/verifier"
	"veripay/pkg/domain"
	"veripay/pkg/platform/httputil"
	"veripay/pkg/requestcontext"
)

// Service defines the verifier operations used by handlers.
type Service interface {
	MintChallenge(ctx context.Context) (string, error)
	ChallengeTTL() time.Duration
	Verify(ctx context.Context, req verifier.VerifyRequest) (*verifier.VerifiedResult, error)
	Authorize(ctx context.Context, req verifier.AuthorizeRequest) (*verifier.AuthorizeResult, error)
	SubmitPresentation(ctx context.Context, req verifier.PresentationRequest) (*verifier.VerifiedResult, error)
}

// KeySet exposes the verifier's public key material.
type KeySet interface {
	PublicJWKSet() keys.JWKSet
}

// Handler wires verification endpoints to the verifier service.
type Handler struct {
	service     Service
	keySet      KeySet
	verifierDID domain.DID
	logger      *slog.Logger
}

// New constructs a verifier handler.
func New(service Service, keySet KeySet, verifierDID domain.DID, logger *slog.Logger) *Handler {
	return &Handler{
		service:     service,
		keySet:      keySet,
		verifierDID: verifierDID,
		logger:      logger,
	}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verify/challenge", h.HandleMintChallenge)
	r.Post("/verify", h.HandleVerify)
	r.Get("/.well-known/openid-provider", h.HandleWellKnown)
	r.Get("/.well-known/openid-verifier", h.HandleVerifierMetadata)
	r.Get("/jwks.json", h.HandleJWKS)
	r.Get("/presentation-definition", h.HandlePresentationDefinition)
	r.Get("/authorize", h.HandleAuthorize)
	r.Post("/callback", h.HandleCallback)
}

// HandleMintChallenge handles GET /verify/challenge requests.
func (h *Handler) HandleMintChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	value, err := h.service.MintChallenge(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint challenge",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ChallengeResponse{
		Challenge: value,
		ExpiresIn: int64(h.service.ChallengeTTL().Seconds()),
	})
}

// HandleVerify handles POST /verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, req.ToDomain())
	if err != nil {
		// The service already logged the gate that rejected.
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromVerifiedResult(result))
}

// HandleWellKnown handles GET /.well-known/openid-provider requests.
func (h *Handler) HandleWellKnown(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	httputil.WriteJSON(w, http.StatusOK, WellKnownResponse{
		Issuer:               h.verifierDID.String(),
		JWKSURI:              base + "/jwks.json",
		VerificationEndpoint: base + "/verify",
		ChallengeEndpoint:    base + "/verify/challenge",
	})
}

// HandleJWKS handles GET /jwks.json requests.
func (h *Handler) HandleJWKS(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.keySet.PublicJWKSet())
}

// HandleVerifierMetadata handles GET /.well-known/openid-verifier requests.
func (h *Handler) HandleVerifierMetadata(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	httputil.WriteJSON(w, http.StatusOK, VerifierMetadataResponse{
		ClientID:                       h.verifierDID.String(),
		AuthorizationEndpoint:          base + "/authorize",
		ResponseEndpoint:               base + "/callback",
		PresentationDefinitionEndpoint: base + "/presentation-definition",
		SupportedCredentialFormats:     []string{"jwt_vc", "jwt_vp"},
		SupportedAlgorithms:            []string{"EdDSA"},
	})
}

// HandlePresentationDefinition handles GET /presentation-definition requests.
func (h *Handler) HandlePresentationDefinition(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, PassportPresentationDefinition())
}

// HandleAuthorize handles GET /authorize requests.
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	result, err := h.service.Authorize(ctx, verifier.AuthorizeRequest{
		ResponseType: query.Get("response_type"),
		ClientID:     query.Get("client_id"),
		State:        query.Get("state"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "authorization request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AuthorizeResponse{
		SessionID:              result.SessionID,
		Nonce:                  result.Nonce,
		ExpiresIn:              result.ExpiresIn,
		ResponseURI:            baseURL(r) + "/callback",
		State:                  query.Get("state"),
		PresentationDefinition: PassportPresentationDefinition(),
	})
}

// HandleCallback handles POST /callback requests.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CallbackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SubmitPresentation(ctx, req.ToDomain())
	if err != nil {
		// The service already logged the gate that rejected.
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CallbackResponse{
		IDToken:        result.DecisionToken,
		State:          req.State,
		VerifiedClaims: result.VerifiedClaims,
		ExpiresIn:      result.ExpiresIn,
	})
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
