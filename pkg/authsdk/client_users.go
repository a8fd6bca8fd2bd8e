package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// AuthTokenHeader carries the caller's access token on user routes.
const AuthTokenHeader = "X-Auth-Token"

// ListRefreshTokens lists the refresh tokens of authID. authToken must grant
// auth.users.{authID}.tokens.read.
func (c *SDKClient) ListRefreshTokens(ctx context.Context, authToken, authID string) (*RefreshTokenList, error) {
	resp, err := c.doRequest(ctx, http.MethodGet,
		"/users/"+url.PathEscape(authID)+"/tokens", nil,
		map[string]string{AuthTokenHeader: authToken},
	)
	if err != nil {
		return nil, err
	}

	var out RefreshTokenList
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeRefreshToken deletes the refresh token authID holds for clientID.
// authToken must grant auth.users.{authID}.tokens.{clientID}.delete.
func (c *SDKClient) RevokeRefreshToken(ctx context.Context, authToken, authID, clientID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete,
		"/users/"+url.PathEscape(authID)+"/tokens/"+url.PathEscape(clientID), nil,
		map[string]string{AuthTokenHeader: authToken},
	)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}
