package entities

import "time"

// TrackingLink represents a QR tracking link row in the database.
type TrackingLink struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`                    // Short URL-safe identifier, immutable
	DestinationURL string    `json:"destination_url"`         // Effective redirect target
	ContentRef     *int64    `json:"content_ref,omitempty"`   // Pointer allows nil (link not tied to content)
	CommonName     string    `json:"common_name"`
	ReferralCode   *string   `json:"referral_code,omitempty"` // Pointer allows nil; unique when set
	ImageURL       string    `json:"image_url"`               // Cached QR asset URL, empty until first render
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
