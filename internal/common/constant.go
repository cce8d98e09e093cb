// Package common contains shared constants, sentinel errors and byte helpers
// used across the gophdocs client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer access token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName correlates a request with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// ApprovalReason is the reason recorded with every signature applied by
	// the approval flow.
	ApprovalReason = "Document approved"
)

// Metadata keys of the local session store.
const (
	MetaKeyUserEmail    = "user_email"
	MetaKeyAccessToken  = "access_token"
	MetaKeyRefreshToken = "refresh_token"
)
