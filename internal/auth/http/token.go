package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

// TokenHandler serves the /token routes.
type TokenHandler struct {
	Tokens       *service.TokenService
	Validator    *service.ValidationService
	InstanceUUID string
}

type createTokenBody struct {
	Backend      string `json:"backend"`
	Expiration   *int   `json:"expiration"`
	AccessType   string `json:"access_type"`
	ClientID     string `json:"client_id"`
	RefreshToken string `json:"refresh_token"`
}

// HandleCreate godoc
//
//	@Summary		Create a token
//	@Description	Authenticates the Basic credentials against a backend, or exchanges a refresh token, and issues an access token.
//	@Description	Offline access also returns a refresh token bound to client_id; it replaces any previous refresh token of the same user and client.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Security		BasicAuth
//	@Param			X-Session-Type	header		string						false	"Client kind"	Enums(mobile, desktop)
//	@Param			body			body		authsdk.CreateTokenRequest	false	"Token options"
//	@Success		200				{object}	authsdk.TokenEnvelope
//	@Failure		400				{object}	authsdk.ErrorResponse	"invalid_request, invalid_expiration"
//	@Failure		401				{object}	authsdk.ErrorResponse	"authentication_failed"
//	@Failure		429				{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500				{object}	authsdk.ErrorResponse	"backend_unavailable, server_error"
//	@Header			200				{string}	Cache-Control	"no-store"
//	@Router			/token [post].
func (h *TokenHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body createTokenBody
	if err := httpx.ReadJSON(w, r, &body); err != nil {
		authsdk.ErrInvalidRequest.WithReason(err.Error()).WriteError(w)
		return
	}

	req := service.CreateTokenRequest{
		Backend:      body.Backend,
		RefreshToken: body.RefreshToken,
		Expiration:   body.Expiration,
		AccessType:   domain.AccessType(body.AccessType),
		ClientID:     body.ClientID,
		SessionType:  r.Header.Get(authsdk.SessionTypeHeader),
	}
	if req.AccessType == "" {
		req.AccessType = domain.AccessOnline
	}
	if login, password, ok := r.BasicAuth(); ok {
		req.Login, req.Password = login, password
	}

	issued, err := h.Tokens.CreateToken(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tokenResponse(issued.Token, h.InstanceUUID)
	resp.RefreshToken = issued.RefreshToken
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenEnvelope{Data: resp})
}

// HandleGet godoc
//
//	@Summary		Fetch a token
//	@Description	Returns the token if it is live, grants scope and can access tenant. Checks run in that order.
//	@Tags			Tokens
//	@Produce		json
//	@Param			token	path		string	true	"Token id"
//	@Param			scope	query		string	false	"ACL the token must grant"
//	@Param			tenant	query		string	false	"Tenant uuid that must be within the token's tenant subtree"
//	@Success		200		{object}	authsdk.TokenEnvelope
//	@Failure		403		{object}	authsdk.ErrorResponse	"insufficient_scope, tenant_mismatch"
//	@Failure		404		{object}	authsdk.ErrorResponse	"token_not_found"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/token/{token} [get].
func (h *TokenHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tok, err := h.Validator.Validate(r.Context(), r.PathValue("token"), q.Get("scope"), q.Get("tenant"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenEnvelope{Data: tokenResponse(tok, h.InstanceUUID)})
}

// HandleHead godoc
//
//	@Summary		Check a token
//	@Description	Same checks as GET without a response body.
//	@Tags			Tokens
//	@Param			token	path	string	true	"Token id"
//	@Param			scope	query	string	false	"ACL the token must grant"
//	@Param			tenant	query	string	false	"Tenant uuid that must be within the token's tenant subtree"
//	@Success		204
//	@Failure		403
//	@Failure		404
//	@Failure		500
//	@Router			/token/{token} [head].
func (h *TokenHandler) HandleHead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.Validator.CheckOnly(r.Context(), r.PathValue("token"), q.Get("scope"), q.Get("tenant")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Revoke a token
//	@Description	Revokes an access token. Unknown tokens are accepted so revocation can be retried. The token's refresh token is left alone.
//	@Tags			Tokens
//	@Param			token	path	string	true	"Token id"
//	@Success		200
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/token/{token} [delete].
func (h *TokenHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.Validator.Revoke(r.Context(), r.PathValue("token"))
	if err != nil && !errors.Is(err, service.ErrTokenNotFound) {
		writeError(w, r, err)
		return
	}
	if err != nil {
		slogx.FromContext(r.Context()).Debug("revoked unknown token")
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
}

func tokenResponse(t domain.Token, instanceUUID string) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		Token:        t.ID,
		TokenID:      t.ID,
		AuthID:       t.AuthID,
		UserUUID:     t.UserUUID,
		TenantUUID:   t.TenantUUID,
		InstanceUUID: instanceUUID,
		Backend:      t.BackendName,
		ACLs:         t.ACLs,
		Metadata:     t.Metadata,
		SessionUUID:  t.SessionUUID,
		SessionType:  t.SessionType,
		IssuedAt:     t.IssuedAt.Local(),
		ExpiresAt:    t.ExpiresAt.Local(),
		UTCIssuedAt:  t.IssuedAt.UTC(),
		UTCExpiresAt: t.ExpiresAt.UTC(),
	}
}
