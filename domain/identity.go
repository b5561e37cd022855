package domain

// Identity bundles everything known about an authenticated caller. Settings
// stays nil when the user has no stored preferences.
type Identity struct {
	User     *User
	Settings *Settings
}
