package authsdk

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
)

// CreateToken authenticates login and password against req.Backend and
// returns a new access token. Offline requests also return a refresh token.
func (c *SDKClient) CreateToken(
	ctx context.Context,
	login, password string,
	req CreateTokenRequest,
) (*TokenResponse, error) {
	headers := map[string]string{
		"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(login+":"+password)),
	}
	return c.createToken(ctx, req, headers)
}

// RefreshToken exchanges a refresh token for a new access token. The
// refresh token must have been issued to clientID.
func (c *SDKClient) RefreshToken(
	ctx context.Context,
	clientID, refreshToken string,
	req CreateTokenRequest,
) (*TokenResponse, error) {
	req.ClientID = clientID
	req.RefreshToken = refreshToken
	return c.createToken(ctx, req, map[string]string{})
}

func (c *SDKClient) createToken(ctx context.Context, req CreateTokenRequest, headers map[string]string) (*TokenResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	headers["Content-Type"] = "application/json"
	if req.SessionType != "" {
		headers[SessionTypeHeader] = req.SessionType
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/token", body, headers)
	if err != nil {
		return nil, err
	}

	var env TokenEnvelope
	if err := decodeJSON(resp, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// GetToken fetches a token, checking opts.Scope and opts.Tenant when set.
func (c *SDKClient) GetToken(ctx context.Context, token string, opts ValidateOptions) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, tokenPath(token, opts), nil, nil)
	if err != nil {
		return nil, err
	}

	var env TokenEnvelope
	if err := decodeJSON(resp, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CheckToken is GetToken without the response body. HEAD responses carry no
// error body, so a 403 is reported as ErrInsufficientScope even when the
// tenant check failed.
func (c *SDKClient) CheckToken(ctx context.Context, token string, opts ValidateOptions) error {
	resp, err := c.doRequest(ctx, http.MethodHead, tokenPath(token, opts), nil, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// RevokeToken revokes an access token. Revoking an unknown token succeeds.
func (c *SDKClient) RevokeToken(ctx context.Context, token string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/token/"+url.PathEscape(token), nil, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

func tokenPath(token string, opts ValidateOptions) string {
	path := "/token/" + url.PathEscape(token)

	q := url.Values{}
	if opts.Scope != "" {
		q.Set("scope", opts.Scope)
	}
	if opts.Tenant != "" {
		q.Set("tenant", opts.Tenant)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return path
}
