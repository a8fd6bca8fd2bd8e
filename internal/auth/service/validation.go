package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/acl"
	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/internal/auth/tenant"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
	"go.opentelemetry.io/otel/attribute"
)

// ValidationService answers token lookups and revocations.
type ValidationService struct {
	Store   store.Store
	Tenants *tenant.Index

	// Now defaults to time.Now.
	Now func() time.Time
}

// Validate returns the token if it is live, its ACLs grant scope and tenant
// lies in the token's tenant subtree. Checks run in that order and the first
// failure is returned. Empty scope or tenant skip their check.
func (s *ValidationService) Validate(ctx context.Context, tokenID, scope, tenantUUID string) (_ domain.Token, err error) {
	ctx, span := startSpan(ctx, "token.Validate",
		attribute.Bool("auth.scope_requested", scope != ""),
		attribute.Bool("auth.tenant_requested", tenantUUID != ""),
	)
	defer func() { finishSpan(span, err) }()

	if tokenID == "" {
		return domain.Token{}, ErrTokenNotFound
	}

	tok, err := s.Store.Tokens().Get(ctx, tokenID, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Token{}, ErrTokenNotFound
		}
		return domain.Token{}, err
	}

	if !acl.MatchesFor(tok.ACLs, scope, tok.AuthID) {
		return domain.Token{}, ErrInsufficientScope
	}

	ok, err := s.Tenants.IsInSubtree(tok.TenantUUID, tenantUUID)
	if err != nil {
		slogx.FromContext(ctx).Error("tenant hierarchy integrity failure",
			slog.String("token_tenant", tok.TenantUUID),
			slog.String("requested_tenant", tenantUUID),
			slog.String("error", err.Error()),
		)
		return domain.Token{}, fmt.Errorf("%w: %w", ErrDataIntegrity, err)
	}
	if !ok {
		return domain.Token{}, ErrTenantMismatch
	}

	return tok, nil
}

// CheckOnly is Validate without the payload.
func (s *ValidationService) CheckOnly(ctx context.Context, tokenID, scope, tenantUUID string) error {
	_, err := s.Validate(ctx, tokenID, scope, tenantUUID)
	return err
}

// Revoke deletes the access token. Refresh tokens issued in the same
// session are left alone.
func (s *ValidationService) Revoke(ctx context.Context, tokenID string) (err error) {
	ctx, span := startSpan(ctx, "token.Revoke")
	defer func() { finishSpan(span, err) }()

	if tokenID == "" {
		return ErrTokenNotFound
	}
	if err := s.Store.Tokens().Delete(ctx, tokenID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Debug("token revoked", slog.String("token_id", tokenID))
	return nil
}

// ListRefreshTokens returns the refresh tokens held by authID.
func (s *ValidationService) ListRefreshTokens(ctx context.Context, authID string) ([]domain.RefreshToken, error) {
	return s.Store.RefreshTokens().ListByAuthID(ctx, authID)
}

// RevokeRefreshToken deletes the refresh token of (authID, clientID).
func (s *ValidationService) RevokeRefreshToken(ctx context.Context, authID, clientID string) error {
	if err := s.Store.RefreshTokens().Delete(ctx, authID, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Info("refresh token revoked",
		slog.String("auth_id", authID),
		slog.String("client_id", clientID),
	)
	return nil
}

func (s *ValidationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
