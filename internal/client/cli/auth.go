package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials and authenticates against the
// backend. The session is saved locally so the next start skips the prompt.
// The password buffer is wiped by the AuthService.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.authService.Login(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			fmt.Fprintln(a.out, "Login unsuccessful: wrong email or password")
		case errors.Is(err, client.ErrUnavailable):
			a.setMode(ModeOffline)
			fmt.Fprintln(a.out, "Server unavailable, try again later")
		default:
			fmt.Fprintln(a.out, "Login unsuccessful:", client.Message(err, err.Error()))
		}
		return err
	}

	a.setUser(email)
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Welcome,", user.DisplayName())
	return nil
}

// Logout forgets the saved session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setUser("")
	a.setCurrentDoc("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
