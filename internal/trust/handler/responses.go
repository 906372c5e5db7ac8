package handler

// IssuerResponse acknowledges a trust list change.
type IssuerResponse struct {
	Issuer  string `json:"issuer"`
	Trusted bool   `json:"trusted"`
}

// ClearExpiredResponse reports how many cache entries were dropped.
type ClearExpiredResponse struct {
	Removed int `json:"removed"`
}
