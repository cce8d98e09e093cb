package models

// ValidationDetails carries the informational part of a validation result.
type ValidationDetails struct {
	HasSignatures  bool `json:"hasSignatures"`
	SignatureCount int  `json:"signatureCount"`
	FileExists     bool `json:"fileExists"`
	ChecksumMatch  bool `json:"checksumMatch"`
}

// ValidationResult is the server-side integrity verdict for one version.
// Issues are human-readable and keep the server's order.
type ValidationResult struct {
	IsValid    bool              `json:"isValid"`
	Issues     []string          `json:"issues"`
	Validation ValidationDetails `json:"validation"`
}
