package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

// UsersHandler serves refresh token administration.
type UsersHandler struct {
	Validator *service.ValidationService
}

// HandleList godoc
//
//	@Summary		List refresh tokens
//	@Description	Lists the refresh tokens held by auth_id. Requires auth.users.{auth_id}.tokens.read.
//	@Tags			Users
//	@Produce		json
//	@Security		AuthToken
//	@Param			auth_id	path		string	true	"Principal identifier"
//	@Success		200		{object}	authsdk.RefreshTokenList
//	@Failure		401		{object}	authsdk.ErrorResponse	"authentication_failed"
//	@Failure		403		{object}	authsdk.ErrorResponse	"insufficient_scope"
//	@Router			/users/{auth_id}/tokens [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.Validator.ListRefreshTokens(r.Context(), r.PathValue("auth_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := authsdk.RefreshTokenList{Items: make([]authsdk.RefreshTokenInfo, 0, len(records))}
	for _, rt := range records {
		out.Items = append(out.Items, authsdk.RefreshTokenInfo{
			ClientID:    rt.ClientID,
			Backend:     rt.BackendName,
			SessionUUID: rt.SessionUUID,
			CreatedAt:   rt.CreatedAt.UTC(),
		})
	}
	out.Total = len(out.Items)

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRevoke godoc
//
//	@Summary		Revoke a refresh token
//	@Description	Deletes the refresh token auth_id holds for client_id. Access tokens already issued from it stay valid.
//	@Description	Requires auth.users.{auth_id}.tokens.{client_id}.delete.
//	@Tags			Users
//	@Security		AuthToken
//	@Param			auth_id		path	string	true	"Principal identifier"
//	@Param			client_id	path	string	true	"Client identifier"
//	@Success		204
//	@Failure		401	{object}	authsdk.ErrorResponse	"authentication_failed"
//	@Failure		403	{object}	authsdk.ErrorResponse	"insufficient_scope"
//	@Failure		404	{object}	authsdk.ErrorResponse	"token_not_found"
//	@Router			/users/{auth_id}/tokens/{client_id} [delete].
func (h *UsersHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	authID, clientID := r.PathValue("auth_id"), r.PathValue("client_id")
	if err := h.Validator.RevokeRefreshToken(r.Context(), authID, clientID); err != nil {
		writeError(w, r, err)
		return
	}

	caller, _ := httpx.AuthIDFromContext(r.Context())
	slogx.FromContext(r.Context()).Info("refresh token revoked",
		"auth_id", authID,
		"client_id", clientID,
		"caller", caller,
	)
	w.WriteHeader(http.StatusNoContent)
}

// callerVerifier checks X-Auth-Token for the administration routes. A missing
// or unknown token is an authentication failure rather than a 404.
func callerVerifier(v *service.ValidationService) httpx.TokenVerifier {
	return func(ctx context.Context, token, scope string) (string, error) {
		tok, err := v.Validate(ctx, token, scope, "")
		if errors.Is(err, service.ErrTokenNotFound) {
			return "", fmt.Errorf("%w: invalid %s", service.ErrAuthenticationFailed, httpx.AuthTokenHeader)
		}
		if err != nil {
			return "", err
		}
		return tok.AuthID, nil
	}
}

func listTokensScope(r *http.Request) string {
	return "auth.users." + r.PathValue("auth_id") + ".tokens.read"
}

func revokeTokenScope(r *http.Request) string {
	return "auth.users." + r.PathValue("auth_id") + ".tokens." + r.PathValue("client_id") + ".delete"
}
