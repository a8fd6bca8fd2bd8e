package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	issued, err := f.tokens.CreateToken(ctx, CreateTokenRequest{Login: "alice", Password: "s3cret"})
	require.NoError(t, err)
	id := issued.Token.ID

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.validator.Validate(ctx, "nope", "", "")
		require.ErrorIs(t, err, ErrTokenNotFound)

		_, err = f.validator.Validate(ctx, "", "", "")
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("scope granted", func(t *testing.T) {
		_, err := f.validator.Validate(ctx, id, "admin.read", "")
		require.NoError(t, err)
	})

	t.Run("scope not granted", func(t *testing.T) {
		_, err := f.validator.Validate(ctx, id, "admin.write", "")
		require.ErrorIs(t, err, ErrInsufficientScope)
	})

	t.Run("me matches the token's auth id", func(t *testing.T) {
		_, err := f.validator.Validate(ctx, id, "users.alice-id.read", "")
		require.NoError(t, err)

		_, err = f.validator.Validate(ctx, id, "users.bob-id.read", "")
		require.ErrorIs(t, err, ErrInsufficientScope)
	})

	t.Run("tenant subtree", func(t *testing.T) {
		_, err := f.validator.Validate(ctx, id, "", "tenant-a")
		require.NoError(t, err)

		_, err = f.validator.Validate(ctx, id, "", "tenant-b")
		require.NoError(t, err)

		_, err = f.validator.Validate(ctx, id, "", "root")
		require.ErrorIs(t, err, ErrTenantMismatch)

		_, err = f.validator.Validate(ctx, id, "", "unknown")
		require.ErrorIs(t, err, ErrTenantMismatch)
	})

	t.Run("broken hierarchy fails closed", func(t *testing.T) {
		_, err := f.validator.Validate(ctx, id, "", "orphan")
		require.ErrorIs(t, err, ErrDataIntegrity)
	})

	t.Run("scope is checked before tenant", func(t *testing.T) {
		_, err := f.validator.Validate(ctx, id, "admin.write", "root")
		require.ErrorIs(t, err, ErrInsufficientScope)
	})

	t.Run("check only", func(t *testing.T) {
		require.NoError(t, f.validator.CheckOnly(ctx, id, "admin.read", "tenant-b"))
		require.ErrorIs(t, f.validator.CheckOnly(ctx, id, "admin.write", ""), ErrInsufficientScope)
	})

	t.Run("expired token is not found", func(t *testing.T) {
		f.advance(time.Hour)
		_, err := f.validator.Validate(ctx, id, "", "")
		require.ErrorIs(t, err, ErrTokenNotFound)
		require.ErrorIs(t, f.validator.CheckOnly(ctx, id, "", ""), ErrTokenNotFound)
	})
}

func TestUnscopedTokenPassesTenantCheck(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	issued, err := f.tokens.CreateToken(ctx, CreateTokenRequest{Login: "root", Password: "toor"})
	require.NoError(t, err)
	require.Empty(t, issued.Token.TenantUUID)

	_, err = f.validator.Validate(ctx, issued.Token.ID, "anything.goes", "root")
	require.NoError(t, err)
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	issued, err := f.tokens.CreateToken(ctx, CreateTokenRequest{
		Login: "alice", Password: "s3cret", AccessType: domain.AccessOffline, ClientID: "app1",
	})
	require.NoError(t, err)

	require.NoError(t, f.validator.Revoke(ctx, issued.Token.ID))
	require.ErrorIs(t, f.validator.Revoke(ctx, issued.Token.ID), ErrTokenNotFound)
	require.ErrorIs(t, f.validator.Revoke(ctx, "never-existed"), ErrTokenNotFound)

	_, err = f.validator.Validate(ctx, issued.Token.ID, "", "")
	require.ErrorIs(t, err, ErrTokenNotFound)

	// The refresh token survives the access token.
	_, err = f.tokens.CreateToken(ctx, CreateTokenRequest{RefreshToken: issued.RefreshToken, ClientID: "app1"})
	require.NoError(t, err)
}

func TestRevokeRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	issued, err := f.tokens.CreateToken(ctx, CreateTokenRequest{
		Login: "alice", Password: "s3cret", AccessType: domain.AccessOffline, ClientID: "app1",
	})
	require.NoError(t, err)

	list, err := f.validator.ListRefreshTokens(ctx, "alice-id")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "app1", list[0].ClientID)
	require.Equal(t, issued.Token.SessionUUID, list[0].SessionUUID)

	require.NoError(t, f.validator.RevokeRefreshToken(ctx, "alice-id", "app1"))
	require.ErrorIs(t, f.validator.RevokeRefreshToken(ctx, "alice-id", "app1"), ErrTokenNotFound)

	_, err = f.tokens.CreateToken(ctx, CreateTokenRequest{RefreshToken: issued.RefreshToken, ClientID: "app1"})
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	// The access token is independent of its refresh token.
	_, err = f.validator.Validate(ctx, issued.Token.ID, "", "")
	require.NoError(t, err)
}
