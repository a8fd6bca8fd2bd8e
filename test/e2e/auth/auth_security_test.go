package auth_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies that login with wrong password is rejected.
func TestInvalidCredentials(t *testing.T) {
	client := setupAuthContainer(t)

	_, err := client.CreateToken(t.Context(), aliceLogin, "wrong-password", authsdk.CreateTokenRequest{})
	assertAPIError(t, err, authsdk.ErrAuthenticationFailed, "Invalid password should be rejected")

	_, err = client.CreateToken(t.Context(), "nobody", "whatever", authsdk.CreateTokenRequest{})
	assertAPIError(t, err, authsdk.ErrAuthenticationFailed, "Unknown user should be rejected the same way")

	t.Logf("Invalid credentials correctly rejected with 401")
}

// TestInvalidToken verifies that unknown tokens are never accepted.
func TestInvalidToken(t *testing.T) {
	client := setupAuthContainer(t)

	_, err := client.GetToken(t.Context(), "invalid-token-12345", authsdk.ValidateOptions{})
	assertAPIError(t, err, authsdk.ErrTokenNotFound, "Invalid token should be rejected")

	err = client.CheckToken(t.Context(), "invalid-token-12345", authsdk.ValidateOptions{})
	assertAPIError(t, err, authsdk.ErrTokenNotFound, "HEAD should report the same failure")

	require.NoError(t, client.RevokeToken(t.Context(), "invalid-token-12345"), "Revoking an unknown token succeeds")
}

// TestTokenResponsesAreNotCached verifies token material is never cacheable.
func TestTokenResponsesAreNotCached(t *testing.T) {
	client := setupAuthContainer(t)
	tok := login(t, client, aliceLogin, alicePassword)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet,
		strings.TrimRight(client.BaseURL, "/")+"/token/"+tok.Token, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}
