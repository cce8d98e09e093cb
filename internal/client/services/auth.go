// Package services contains the application services of the gophdocs
// client: the validation, approval and status coordinators that drive a
// version through its lifecycle, plus authentication and document access.
// This file defines the authentication service: login against the backend,
// restoring a saved session, liveness probe and logout.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and persist the session tokens.
//   - Restore: load a previously saved session into the client.
//   - SaveSession: persist the client's current (possibly refreshed) tokens.
//   - Logout: forget the session locally.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Restore(ctx context.Context) (string, error)
	SaveSession(ctx context.Context) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and the local SQL database for session metadata.
type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

// Login authenticates against the server and saves the user's email and
// token pair so the next start can skip the prompt. The password buffer is
// wiped before returning.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, common.ErrEmptyIdentifier
	}

	user, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	access, refresh := a.client.Tokens()
	if err := a.saveSession(ctx, email, access, refresh); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return user, nil
}

// saveSession persists email and tokens in a single transaction.
func (a *authService) saveSession(ctx context.Context, email, access, refresh string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.MetaKeyUserEmail, []byte(email)); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.MetaKeyAccessToken, []byte(access)); err != nil {
			return err
		}
		return repo.Set(ctx, common.MetaKeyRefreshToken, []byte(refresh))
	})
}

// Restore loads the saved tokens into the client and returns the email they
// belong to. Without a saved session it returns client.ErrLocalDataNotAvailable.
func (a *authService) Restore(ctx context.Context) (string, error) {
	values, err := metadata.NewSQLiteRepository(a.db).List(ctx)
	if err != nil {
		return "", err
	}
	email := string(values[common.MetaKeyUserEmail])
	access := string(values[common.MetaKeyAccessToken])
	refresh := string(values[common.MetaKeyRefreshToken])
	if email == "" || (access == "" && refresh == "") {
		return "", client.ErrLocalDataNotAvailable
	}

	a.client.SetTokens(access, refresh)
	return email, nil
}

// SaveSession stores the tokens the client currently holds. Refreshes made
// during the session would otherwise be lost on exit.
func (a *authService) SaveSession(ctx context.Context) error {
	access, refresh := a.client.Tokens()
	if access == "" && refresh == "" {
		return nil
	}
	email, err := metadata.NewSQLiteRepository(a.db).Get(ctx, common.MetaKeyUserEmail)
	if err != nil {
		return err
	}
	if email == nil {
		return client.ErrLocalDataNotAvailable
	}
	return a.saveSession(ctx, string(email), access, refresh)
}

// Logout drops the tokens from the client and wipes the saved session.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens("", "")
	return metadata.NewSQLiteRepository(a.db).Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
