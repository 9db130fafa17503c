package api

import (
	"context"

	"github.com/mkowalczyk/allerlog/internal/common"
)

// refreshToken exchanges the cookie-carried refresh credential for a new
// bearer token. Concurrent callers share a single in-flight exchange: the
// first one performs it, the rest wait and reuse its outcome. The returned
// token is empty when the exchange failed; by then the stored token has been
// cleared and the logout endpoint notified, so every waiter observes the
// same terminal state.
func (c *Client) refreshToken(ctx context.Context) string {
	v, _, shared := c.group.Do("refresh", func() (any, error) {
		var out struct {
			AccessToken string `json:"accessToken"`
		}
		// PathRefresh is a no-refresh endpoint, so this cannot recurse
		// into the recovery protocol.
		if err := c.roundTrip(ctx, "POST", common.PathRefresh, nil, &out); err != nil || out.AccessToken == "" {
			c.metrics.RecordRefresh(false)
			c.log.Warn(ctx, "token refresh failed", "error", err)

			if cerr := c.tokens.Clear(); cerr != nil {
				c.log.Warn(ctx, "failed to clear token", "error", cerr)
			}
			// Advisory cleanup of the server-side refresh credential.
			// Its failure never affects the outcome.
			if lerr := c.roundTrip(ctx, "POST", common.PathLogout, struct{}{}, nil); lerr != nil {
				c.log.Debug(ctx, "logout notification failed", "error", lerr)
			}
			return "", nil
		}

		c.metrics.RecordRefresh(true)
		if err := c.tokens.Set(out.AccessToken); err != nil {
			c.log.Warn(ctx, "failed to persist refreshed token", "error", err)
		}
		return out.AccessToken, nil
	})

	tok, _ := v.(string)
	if shared && tok != "" {
		c.log.Debug(ctx, "reused in-flight token refresh")
	}
	return tok
}
