package models

import (
	"time"

	"qr-trackr-be/internal/entities"
)

// LinkResponse represents a tracking link returned to API callers.
type LinkResponse struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	ScanURL        string    `json:"scan_url"` // Full public URL the QR image encodes
	DestinationURL string    `json:"destination_url"`
	ContentRef     *int64    `json:"content_ref,omitempty"`
	CommonName     string    `json:"common_name"`
	ReferralCode   string    `json:"referral_code,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LinkListResponse wraps a page of links with the total row count.
type LinkListResponse struct {
	Links   []*LinkResponse `json:"links"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// AuthResponse represents a successful admin login.
type AuthResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// NewLinkResponse converts a TrackingLink entity into the API shape.
func NewLinkResponse(link *entities.TrackingLink, baseURL string) *LinkResponse {
	resp := &LinkResponse{
		ID:             link.ID,
		Code:           link.Code,
		ScanURL:        baseURL + "/" + link.Code,
		DestinationURL: link.DestinationURL,
		ContentRef:     link.ContentRef,
		CommonName:     link.CommonName,
		ImageURL:       link.ImageURL,
		CreatedAt:      link.CreatedAt,
		UpdatedAt:      link.UpdatedAt,
	}
	if link.ReferralCode != nil {
		resp.ReferralCode = *link.ReferralCode
	}
	return resp
}
