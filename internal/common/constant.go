package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// API paths used by more than one package.
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathRefresh  = "/auth/refresh"
	PathLogout   = "/auth/logout"
	PathMe       = "/me"

	PathEntries       = "/api/entries"
	PathExposureTypes = "/api/exposure-types"
)
