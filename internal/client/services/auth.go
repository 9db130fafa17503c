// Package services contains the application services of the allerlog
// client. This file defines the authentication service: login, register,
// logout, and the current-account probe.
package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/mkowalczyk/allerlog/internal/client/api"
	"github.com/mkowalczyk/allerlog/internal/client/cache"
	"github.com/mkowalczyk/allerlog/internal/client/models"
	"github.com/mkowalczyk/allerlog/internal/client/repositories"
	"github.com/mkowalczyk/allerlog/internal/client/token"
	"github.com/mkowalczyk/allerlog/internal/common"
	"github.com/mkowalczyk/allerlog/internal/logging"
)

// HTTPClient is the slice of the transport layer the services depend on.
// *api.Client satisfies it.
type HTTPClient interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login/Register: authenticate against the server and store the
//     returned bearer token; the refresh credential arrives as an http-only
//     cookie handled by the transport.
//   - Logout: best-effort server notification, then wipe all local state.
//   - Me: fetch the account the current token belongs to.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
}

type authService struct {
	api    HTTPClient
	tokens *token.Store
	cache  *cache.Cache
	repos  *repositories.Repositories
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given transport,
// token store, query cache, and local repositories.
func NewAuthService(api HTTPClient, tokens *token.Store, c *cache.Cache, repos *repositories.Repositories, log logging.Logger) AuthService {
	return &authService{api: api, tokens: tokens, cache: c, repos: repos, log: log}
}

func (a *authService) authenticate(ctx context.Context, path string, email, password string) (models.User, error) {
	var resp models.LoginResponse
	err := a.api.Post(ctx, path, models.Credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return models.User{}, err
	}

	if err := a.tokens.Set(resp.AccessToken); err != nil {
		return models.User{}, err
	}
	if err := a.repos.State.SetAccountEmail(ctx, resp.User.Email); err != nil {
		a.log.Warn(ctx, "failed to remember account email", "error", err)
	}
	// Any cached queries belong to the previous session.
	a.cache.Clear()
	return resp.User, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	return a.authenticate(ctx, common.PathLogin, email, password)
}

func (a *authService) Register(ctx context.Context, email, password string) (models.User, error) {
	return a.authenticate(ctx, common.PathRegister, email, password)
}

// Logout notifies the server to drop the refresh credential, then wipes the
// token, the query cache, and the offline snapshot. The server notification
// is advisory: its failure does not keep the local session alive.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.api.Post(ctx, common.PathLogout, struct{}{}, nil); err != nil {
		a.log.Debug(ctx, "logout notification failed", "error", err)
	}

	if err := a.tokens.Clear(); err != nil {
		return err
	}
	a.cache.Clear()
	if err := a.repos.Journal.Clear(ctx); err != nil {
		a.log.Warn(ctx, "failed to clear offline snapshot", "error", err)
	}
	if err := a.repos.State.Clear(ctx); err != nil {
		a.log.Warn(ctx, "failed to clear local state", "error", err)
	}
	return nil
}

func (a *authService) Me(ctx context.Context) (models.User, error) {
	var resp models.MeResponse
	if err := a.api.Get(ctx, common.PathMe, &resp); err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

// LoginErrorMessage turns a Login failure into display text, preferring
// status-specific wording, then the server's own message, then a generic
// fallback.
func LoginErrorMessage(err error) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case http.StatusUnauthorized:
			return "Invalid email or password."
		case http.StatusBadRequest:
			return "Invalid login details."
		}
		if msg := httpErr.ServerMessage(); msg != "" {
			return msg
		}
	}
	return "Login failed. Please try again."
}

// RegisterErrorMessage is the Register counterpart of LoginErrorMessage.
func RegisterErrorMessage(err error) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case http.StatusConflict:
			return "This email address is already in use."
		case http.StatusBadRequest:
			return "Invalid registration details."
		}
		if msg := httpErr.ServerMessage(); msg != "" {
			return msg
		}
	}
	return "Registration failed. Please try again."
}
