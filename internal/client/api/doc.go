// Package api is the authenticated HTTP access layer of the client.
//
// # Overview
//
// Client wraps the four JSON verbs against a configured base URL. Every
// request is signed with the bearer token held by the token store at the
// moment it is dispatched. Responses are classified once at this boundary:
//
//   - 2xx: decoded into the caller's value.
//   - transport failure: wrapped common.ErrNetwork.
//   - non-2xx other than a refresh-eligible 401/403: *HTTPError.
//   - 401/403: the request obtains a fresh token through a single-flight
//     refresh exchange and is re-issued exactly once; if the refresh fails,
//     the original failure is returned wrapped in common.ErrAuthExpired with
//     the stored token cleared and the logout endpoint notified best-effort.
//
// A 401 from /auth/login, /auth/register or /auth/refresh never triggers a
// refresh, and neither does a request sent without a stored token.
//
// Any number of requests failing with 401 around the same moment result in
// exactly one call to the refresh endpoint; each then independently
// re-issues its own original request.
package api
