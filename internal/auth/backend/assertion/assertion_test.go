package assertion_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/backend"
	"github.com/aussiebroadwan/tokengate/internal/auth/backend/assertion"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*assertion.Backend, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	pemData, err := cryptox.MarshalPublicKeyPEM(pub)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "idp.pem")
	require.NoError(t, os.WriteFile(path, pemData, 0o600))

	b, err := assertion.New(assertion.Config{
		Issuer:   "https://idp.example.com",
		Audience: []string{"tokengate"},
		Keys:     map[string]string{"idp-1": path},
	})
	require.NoError(t, err)
	return b, priv
}

func mint(t *testing.T, priv ed25519.PrivateKey, sub string, ttl time.Duration, acls ...string) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://idp.example.com",
			Subject:   sub,
			Audience:  jwt.ClaimStrings{"tokengate"},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserUUID:   "u-" + sub,
		TenantUUID: "t-1",
		ACLs:       acls,
	})
	tok.Header["kid"] = "idp-1"
	s, err := tok.SignedString(priv)
	require.NoError(t, err)
	return s
}

func TestAuthenticate(t *testing.T) {
	b, priv := setup(t)
	require.Equal(t, "assertion", b.Name())

	t.Run("valid assertion", func(t *testing.T) {
		p, err := b.Authenticate(t.Context(), backend.Credentials{
			Login:    "alice",
			Password: mint(t, priv, "alice", time.Minute, "users.me.read"),
		})
		require.NoError(t, err)
		require.Equal(t, "alice", p.AuthID)
		require.Equal(t, "u-alice", p.UserUUID)
		require.Equal(t, "t-1", p.TenantUUID)
		require.Equal(t, []string{"users.me.read"}, p.ACLs)
	})

	t.Run("login must match subject", func(t *testing.T) {
		_, err := b.Authenticate(t.Context(), backend.Credentials{
			Login:    "bob",
			Password: mint(t, priv, "alice", time.Minute),
		})
		require.ErrorIs(t, err, backend.ErrAuthenticationFailed)
	})

	t.Run("expired assertion", func(t *testing.T) {
		_, err := b.Authenticate(t.Context(), backend.Credentials{
			Login:    "alice",
			Password: mint(t, priv, "alice", -time.Minute),
		})
		require.ErrorIs(t, err, backend.ErrAuthenticationFailed)
	})

	t.Run("foreign key", func(t *testing.T) {
		_, other, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		_, err = b.Authenticate(t.Context(), backend.Credentials{
			Login:    "alice",
			Password: mint(t, other, "alice", time.Minute),
		})
		require.ErrorIs(t, err, backend.ErrAuthenticationFailed)
	})
}

func TestPrincipalRemembersLastAssertion(t *testing.T) {
	b, priv := setup(t)

	_, err := b.Principal(t.Context(), "carol")
	require.ErrorIs(t, err, backend.ErrAuthenticationFailed)

	_, err = b.Authenticate(t.Context(), backend.Credentials{Login: "carol", Password: mint(t, priv, "carol", time.Minute, "a.b")})
	require.NoError(t, err)
	_, err = b.Authenticate(t.Context(), backend.Credentials{Login: "carol", Password: mint(t, priv, "carol", time.Minute, "c.d")})
	require.NoError(t, err)

	p, err := b.Principal(t.Context(), "carol")
	require.NoError(t, err)
	require.Equal(t, []string{"c.d"}, p.ACLs)
}

func TestNewRequiresKeys(t *testing.T) {
	_, err := assertion.New(assertion.Config{})
	require.Error(t, err)

	_, err = assertion.New(assertion.Config{Keys: map[string]string{"k": filepath.Join(t.TempDir(), "missing.pem")}})
	require.Error(t, err)
}
