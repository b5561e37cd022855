package transport

import "github.com/whoamid/backend/domain"

// GeoInfo carries the coarse location derived from the edge network header.
type GeoInfo struct {
	Country string `json:"country"`
}

// SettingsPayload is the response shape of a user's stored preferences.
type SettingsPayload struct {
	Locale     *string `json:"locale,omitempty"`
	NoAds      *bool   `json:"no_ads,omitempty"`
	Newsletter *bool   `json:"newsletter,omitempty"`
}

// WhoamiResponse is a partial record: the zero value marshals with every
// field absent. The authenticated bundle is only ever set as a whole through
// WithIdentity, so a document can never be half-authenticated.
type WhoamiResponse struct {
	Geo              *GeoInfo         `json:"geo,omitempty"`
	Username         *string          `json:"username,omitempty"`
	IsAuthenticated  *bool            `json:"is_authenticated,omitempty"`
	Email            *string          `json:"email,omitempty"`
	AvatarURL        *string          `json:"avatar_url,omitempty"`
	IsSubscriber     *bool            `json:"is_subscriber,omitempty"`
	SubscriptionType *string          `json:"subscription_type,omitempty"`
	Settings         *SettingsPayload `json:"settings,omitempty"`
}

// NewWhoamiResponse builds the anonymous document. geo may be nil.
func NewWhoamiResponse(geo *GeoInfo) WhoamiResponse {
	return WhoamiResponse{Geo: geo}
}

// WithIdentity sets the authenticated field bundle from the resolved records.
// Settings stays absent when the user has no stored preferences.
func (r WhoamiResponse) WithIdentity(user *domain.User, settings *domain.Settings) WhoamiResponse {
	if user == nil {
		return r
	}
	authenticated := true
	username := user.ID
	email := user.Email
	isSubscriber := user.IsSubscriber
	subscriptionType := user.SubscriptionType

	r.IsAuthenticated = &authenticated
	r.Username = &username
	r.Email = &email
	r.AvatarURL = user.AvatarURL
	r.IsSubscriber = &isSubscriber
	r.SubscriptionType = &subscriptionType
	if settings != nil {
		r.Settings = &SettingsPayload{
			Locale:     settings.Locale,
			NoAds:      settings.NoAds,
			Newsletter: settings.Newsletter,
		}
	}
	return r
}
