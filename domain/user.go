package domain

import "time"

// User is a registered account as persisted in the user store.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	AvatarURL        *string    `json:"avatar_url,omitempty"`
	IsSubscriber     bool       `json:"is_subscriber"`
	SubscriptionType string     `json:"subscription_type"`
	LastSeenAt       *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
