package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/stretchr/testify/require"
)

func TestLogin_SavesSession(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginUser: &models.User{ID: "u1", Email: "ann@example.com"}, LoginAt: "at-1", LoginRt: "rt-1"}
	svc := NewAuthService(fc, db)

	pass := []byte("secret")
	user, err := svc.Login(context.Background(), " ann@example.com ", pass)
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)

	require.Equal(t, "ann@example.com", fc.LastEmail)
	require.Equal(t, []byte("secret"), fc.LastPass)
	require.Equal(t, make([]byte, 6), pass, "password buffer is wiped")

	require.Equal(t, []byte("ann@example.com"), getMeta(t, db, common.MetaKeyUserEmail))
	require.Equal(t, []byte("at-1"), getMeta(t, db, common.MetaKeyAccessToken))
	require.Equal(t, []byte("rt-1"), getMeta(t, db, common.MetaKeyRefreshToken))
}

func TestLogin_ServerError(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginErr: client.ErrUnauthorized}
	svc := NewAuthService(fc, db)

	_, err := svc.Login(context.Background(), "ann@example.com", []byte("bad"))
	require.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = svc.Restore(context.Background())
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestLogin_EmptyEmail(t *testing.T) {
	fc := &fakeClient{}
	_, err := NewAuthService(fc, setupDB(t)).Login(context.Background(), "  ", []byte("x"))
	require.ErrorIs(t, err, common.ErrEmptyIdentifier)
	require.Empty(t, fc.Calls())
}

func TestRestore_LoadsTokensIntoClient(t *testing.T) {
	db := setupDB(t)
	first := &fakeClient{LoginUser: &models.User{ID: "u1"}, LoginAt: "at-1", LoginRt: "rt-1"}
	_, err := NewAuthService(first, db).Login(context.Background(), "ann@example.com", []byte("p"))
	require.NoError(t, err)

	second := &fakeClient{}
	email, err := NewAuthService(second, db).Restore(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", email)

	at, rt := second.Tokens()
	require.Equal(t, "at-1", at)
	require.Equal(t, "rt-1", rt)
}

func TestSaveSession_PersistsRefreshedTokens(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginUser: &models.User{ID: "u1"}, LoginAt: "at-1", LoginRt: "rt-1"}
	svc := NewAuthService(fc, db)
	_, err := svc.Login(context.Background(), "ann@example.com", []byte("p"))
	require.NoError(t, err)

	fc.SetTokens("at-2", "rt-2")
	require.NoError(t, svc.SaveSession(context.Background()))
	require.Equal(t, []byte("at-2"), getMeta(t, db, common.MetaKeyAccessToken))
	require.Equal(t, []byte("rt-2"), getMeta(t, db, common.MetaKeyRefreshToken))
}

func TestSaveSession_NoTokensIsNoop(t *testing.T) {
	svc := NewAuthService(&fakeClient{}, setupDB(t))
	require.NoError(t, svc.SaveSession(context.Background()))
}

func TestLogout_ClearsEverything(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginUser: &models.User{ID: "u1"}, LoginAt: "at-1", LoginRt: "rt-1"}
	svc := NewAuthService(fc, db)
	_, err := svc.Login(context.Background(), "ann@example.com", []byte("p"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	at, rt := fc.Tokens()
	require.Empty(t, at)
	require.Empty(t, rt)

	_, err = svc.Restore(context.Background())
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestPingAndClose(t *testing.T) {
	boom := errors.New("down")
	fc := &fakeClient{PingErr: boom}
	svc := NewAuthService(fc, setupDB(t))

	require.ErrorIs(t, svc.Ping(context.Background()), boom)
	require.NoError(t, svc.Close(context.Background()))
	require.True(t, fc.closed)
}
