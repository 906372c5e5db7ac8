package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "veripay/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and error responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	// Fallback for unexpected errors; never leak internals to the client.
	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeIntentNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeIntentAlreadyConfirmed:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeKycRequired:
		return http.StatusPreconditionFailed
	case dErrors.CodeInsufficientBalance:
		return http.StatusPaymentRequired
	// Verification gate failures and bad decision tokens are client errors:
	// the presentation cannot be accepted as submitted.
	case dErrors.CodeChallengeInvalid,
		dErrors.CodeUntrustedIssuer,
		dErrors.CodeInvalidSignature,
		dErrors.CodeProofChallengeMismatch,
		dErrors.CodeProofInvalid,
		dErrors.CodePredicateNotSatisfied,
		dErrors.CodeInvalidDecisionToken:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
