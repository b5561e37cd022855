package domain

import "time"

// Settings holds a user's stored preferences. Every preference is nullable:
// a missing row and a row full of NULLs are both legal states.
type Settings struct {
	UserID     string    `json:"user_id"`
	Locale     *string   `json:"locale,omitempty"`
	NoAds      *bool     `json:"no_ads,omitempty"`
	Newsletter *bool     `json:"newsletter,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
