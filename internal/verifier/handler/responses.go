package handler

import "veripay/internal/verifier"

// ChallengeResponse is the body for GET /verify/challenge.
type ChallengeResponse struct {
	Challenge string `json:"challenge"`
	ExpiresIn int64  `json:"expires_in"`
}

// VerifyResponse is the body for POST /verify.
type VerifyResponse struct {
	DecisionToken  string   `json:"decisionToken"`
	AssuranceLevel string   `json:"assuranceLevel"`
	VerifiedClaims []string `json:"verifiedClaims"`
	ExpiresIn      int64    `json:"expiresIn"`
}

// FromVerifiedResult maps the service result to the response body.
func FromVerifiedResult(result *verifier.VerifiedResult) VerifyResponse {
	return VerifyResponse{
		DecisionToken:  result.DecisionToken,
		AssuranceLevel: result.AssuranceLevel,
		VerifiedClaims: result.VerifiedClaims,
		ExpiresIn:      result.ExpiresIn,
	}
}

// WellKnownResponse is the issuer metadata document.
type WellKnownResponse struct {
	Issuer               string `json:"issuer"`
	JWKSURI              string `json:"jwks_uri"`
	VerificationEndpoint string `json:"verification_endpoint"`
	ChallengeEndpoint    string `json:"challenge_endpoint"`
}

// VerifierMetadataResponse is the OpenID4VP verifier metadata document.
type VerifierMetadataResponse struct {
	ClientID                       string   `json:"client_id"`
	AuthorizationEndpoint          string   `json:"authorization_endpoint"`
	ResponseEndpoint               string   `json:"response_endpoint"`
	PresentationDefinitionEndpoint string   `json:"presentation_definition_endpoint"`
	SupportedCredentialFormats     []string `json:"supported_credential_formats"`
	SupportedAlgorithms            []string `json:"supported_algorithms"`
}

// PresentationDefinitionResponse describes what the verifier asks wallets
// to present.
type PresentationDefinitionResponse struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Purpose          string             `json:"purpose"`
	Format           PresentationFormat `json:"format"`
	InputDescriptors []InputDescriptor  `json:"input_descriptors"`
}

// PresentationFormat lists the accepted credential formats and algorithms.
type PresentationFormat struct {
	JWTVC AlgFormat `json:"jwt_vc"`
	JWTVP AlgFormat `json:"jwt_vp"`
}

// AlgFormat lists accepted signing algorithms for one format.
type AlgFormat struct {
	Alg []string `json:"alg"`
}

// InputDescriptor describes one requested credential.
type InputDescriptor struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Purpose     string      `json:"purpose"`
	Constraints Constraints `json:"constraints"`
}

// Constraints holds the field requirements of an input descriptor.
type Constraints struct {
	Fields []FieldConstraint `json:"fields"`
}

// FieldConstraint requires one credential subject field.
type FieldConstraint struct {
	ID      string   `json:"id"`
	Path    []string `json:"path"`
	Purpose string   `json:"purpose"`
}

// PassportPresentationDefinition is the definition served to wallets. The
// passport number is requested but not required by the gate sequence.
func PassportPresentationDefinition() PresentationDefinitionResponse {
	eddsa := AlgFormat{Alg: []string{"EdDSA"}}
	return PresentationDefinitionResponse{
		ID:      "passport_verification_definition",
		Name:    "Passport Verification",
		Purpose: "Verify your passport credential to access this service",
		Format:  PresentationFormat{JWTVC: eddsa, JWTVP: eddsa},
		InputDescriptors: []InputDescriptor{{
			ID:      "passport_credential",
			Name:    "Passport Credential",
			Purpose: "Please present your passport credential for verification",
			Constraints: Constraints{Fields: []FieldConstraint{
				{ID: "name_field", Path: []string{"$.vc.credentialSubject.name"}, Purpose: "Verify your name"},
				{ID: "nationality_field", Path: []string{"$.vc.credentialSubject.nationality"}, Purpose: "Verify your nationality"},
				{ID: "birth_date_field", Path: []string{"$.vc.credentialSubject.birthDate"}, Purpose: "Verify your birth date"},
				{ID: "passport_number_field", Path: []string{"$.vc.credentialSubject.passportNumber"}, Purpose: "Verify your passport number"},
			}},
		}},
	}
}

// AuthorizeResponse is the body for GET /authorize.
type AuthorizeResponse struct {
	SessionID              string                         `json:"sessionId"`
	Nonce                  string                         `json:"nonce"`
	ExpiresIn              int64                          `json:"expiresIn"`
	ResponseURI            string                         `json:"responseUri"`
	State                  string                         `json:"state,omitempty"`
	PresentationDefinition PresentationDefinitionResponse `json:"presentationDefinition"`
}

// CallbackResponse is the body for POST /callback.
type CallbackResponse struct {
	IDToken        string   `json:"idToken"`
	State          string   `json:"state,omitempty"`
	VerifiedClaims []string `json:"verifiedClaims"`
	ExpiresIn      int64    `json:"expiresIn"`
}
