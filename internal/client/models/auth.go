package models

// User is the account record returned by the auth endpoints.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is shared by /auth/login and /auth/register: both return a
// fresh access token alongside the account. The refresh credential travels
// out-of-band as an http-only cookie.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type MeResponse struct {
	User User `json:"user"`
}

// NewExposureType is the request body for creating an exposure type.
type NewExposureType struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
