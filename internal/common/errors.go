// Package common defines shared constants and sentinel errors used across
// the allerlog client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Transport-level failure: the request never produced a response.
	ErrNetwork = errors.New("network error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthExpired marks a 401/403 that survived the refresh protocol:
	// the refresh either failed or was excluded by the retry rules. The
	// token has already been cleared by the time callers see it.
	ErrAuthExpired = errors.New("authentication expired")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
