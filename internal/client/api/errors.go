package api

import (
	"encoding/json"
	"fmt"
)

// HTTPError is any non-2xx response that survived classification: either a
// plain failure, or a 401/403 that could not be resolved by refresh. The
// transport classifies once at the boundary; callers never inspect raw
// responses.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d", e.Status)
}

// ServerMessage extracts the "message" field from a JSON error body, or
// returns an empty string. Used to prefer server-provided text over generic
// fallbacks in user-facing errors.
func (e *HTTPError) ServerMessage() string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
