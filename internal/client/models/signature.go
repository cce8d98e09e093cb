package models

import "time"

// SignatureStamp is a reusable approval marker an approver picks when
// approving a document.
type SignatureStamp struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// ActiveOnly keeps the stamps with IsActive set, preserving order.
func ActiveOnly(stamps []SignatureStamp) []SignatureStamp {
	out := make([]SignatureStamp, 0, len(stamps))
	for _, s := range stamps {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

// ApplySignatureRequest is the body of the apply-signature call.
type ApplySignatureRequest struct {
	DocumentID       string `json:"documentId"`
	SignatureStampID string `json:"signatureStampId"`
	Reason           string `json:"reason"`
}

// AppliedSignature is the record the backend creates for a stamped document.
type AppliedSignature struct {
	ID               string    `json:"id"`
	DocumentID       string    `json:"documentId"`
	SignatureStampID string    `json:"signatureStampId"`
	Reason           string    `json:"reason,omitempty"`
	SignedAt         time.Time `json:"signedAt"`
}
