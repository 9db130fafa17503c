package cli

import (
	"context"
	"os"

	"github.com/mkowalczyk/allerlog/internal/client/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and attempts to create
// a new account via the AuthService. On success the session is established
// immediately; no separate login is needed.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, email, password)
	if err != nil {
		printlnFn(services.RegisterErrorMessage(err))
		return err
	}

	a.userEmail = user.Email
	printlnFn("Account created. You are now logged in.")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		printlnFn(services.LoginErrorMessage(err))
		return err
	}

	a.userEmail = user.Email
	printlnFn("Logged in as " + user.Email)
	return nil
}

// Logout ends the session and wipes locally cached data.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err.Error())
		return err
	}
	a.userEmail = ""
	printlnFn("Logged out.")
	return nil
}

// Me shows the account the current session belongs to.
func (a *App) Me(ctx context.Context) error {
	user, err := a.auth.Me(ctx)
	if err != nil {
		printlnFn("Could not fetch account:", err.Error())
		return err
	}
	printlnFn("Logged in as " + user.Email)
	return nil
}
