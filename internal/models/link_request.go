package models

// CreateLinkRequest represents the request body for creating a tracking link.
// CustomURL takes precedence over ContentRef when both are supplied.
type CreateLinkRequest struct {
	CustomURL    string `json:"custom_url,omitempty"`
	ContentRef   *int64 `json:"content_ref,omitempty"`
	CommonName   string `json:"common_name,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// UpdateDestinationRequest represents the request body for changing a
// link's destination URL.
type UpdateDestinationRequest struct {
	DestinationURL string `json:"destination_url" binding:"required"`
}

// LoginRequest represents the admin login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
