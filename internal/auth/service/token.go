package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/backend"
	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/idx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultExpiration = 2 * time.Hour
	MaxExpiration     = 10 * 24 * time.Hour

	maxClientIDLen = 1024
)

// Session types accepted from the caller. They are stored on the token and
// have no authorization effect.
const (
	SessionMobile  = "mobile"
	SessionDesktop = "desktop"
)

// Authenticator is the backend capability the coordinator depends on.
// *backend.Gateway implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, name string, creds backend.Credentials) (backend.Principal, error)
	Principal(ctx context.Context, name, authID string) (backend.Principal, error)
}

// CreateTokenRequest carries one token creation attempt. Login and Password
// come from the Basic authorization header; RefreshToken from the body.
type CreateTokenRequest struct {
	Backend      string
	Login        string
	Password     string
	RefreshToken string
	Expiration   *int // seconds, nil selects the default
	AccessType   domain.AccessType
	ClientID     string
	SessionType  string
}

// IssuedToken is the result of a successful CreateToken.
type IssuedToken struct {
	Token domain.Token

	// RefreshToken is the opaque refresh credential, only set for offline
	// access. It is never stored in clear.
	RefreshToken string
}

// TokenService coordinates token issuance.
type TokenService struct {
	Store   store.Store
	Gateway Authenticator

	DefaultBackend    string
	DefaultExpiration time.Duration
	MaxExpiration     time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// CreateToken authenticates the caller, mints an access token and, for
// offline access, replaces the refresh token of (auth_id, client_id). The
// token and refresh token are written in one transaction.
func (s *TokenService) CreateToken(ctx context.Context, req CreateTokenRequest) (_ *IssuedToken, err error) {
	if req.Backend == "" {
		req.Backend = s.DefaultBackend
	}
	if req.AccessType == "" {
		req.AccessType = domain.AccessOnline
	}

	ctx, span := startSpan(ctx, "token.Create",
		attribute.String("auth.backend", req.Backend),
		attribute.String("auth.access_type", string(req.AccessType)),
	)
	defer func() { finishSpan(span, err) }()

	l := slogx.FromContext(ctx)

	expiration, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	principal, sessionUUID, err := s.authenticate(ctx, req)
	if err != nil {
		l.Info("token creation rejected",
			slog.String("backend", req.Backend),
			slog.Bool("refresh", req.RefreshToken != ""),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if sessionUUID == "" {
		sessionUUID = uuid.NewString()
	}

	acls := principal.ACLs
	if acls == nil {
		acls = []string{}
	}
	metadata := principal.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	tok := domain.Token{
		ID:          uuid.NewString(),
		AuthID:      principal.AuthID,
		BackendName: req.Backend,
		UserUUID:    principal.UserUUID,
		TenantUUID:  principal.TenantUUID,
		ACLs:        acls,
		Metadata:    metadata,
		SessionUUID: sessionUUID,
		SessionType: req.SessionType,
		IssuedAt:    now,
		ExpiresAt:   now.Add(expiration),
	}

	if req.AccessType != domain.AccessOffline {
		if err := s.Store.Tokens().Put(ctx, tok); err != nil {
			return nil, fmt.Errorf("store token: %w", err)
		}
		l.Debug("token created", slog.String("auth_id", tok.AuthID), slog.String("token_id", tok.ID))
		return &IssuedToken{Token: tok}, nil
	}

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	rec := domain.RefreshToken{
		ID:          idx.New().String(),
		Token:       raw,
		TokenHash:   cryptox.FingerprintToken(raw),
		AuthID:      tok.AuthID,
		BackendName: tok.BackendName,
		ClientID:    req.ClientID,
		SessionUUID: tok.SessionUUID,
		CreatedAt:   now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().Put(ctx, tok); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		old, err := tx.RefreshTokens().Replace(ctx, rec)
		if err != nil {
			return fmt.Errorf("replace refresh token: %w", err)
		}
		if old != nil {
			l.Info("refresh token replaced",
				slog.String("auth_id", rec.AuthID),
				slog.String("client_id", rec.ClientID),
				slog.String("previous_id", old.ID),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Debug("offline token created", slog.String("auth_id", tok.AuthID), slog.String("token_id", tok.ID))
	return &IssuedToken{Token: tok, RefreshToken: raw}, nil
}

// validate checks the request shape and returns the effective lifetime.
func (s *TokenService) validate(req CreateTokenRequest) (time.Duration, error) {
	if !req.AccessType.Valid() {
		return 0, fmt.Errorf("%w: access_type must be online or offline", ErrInvalidRequest)
	}

	hasPassword := req.Login != ""
	hasRefresh := req.RefreshToken != ""
	switch {
	case hasPassword && hasRefresh:
		return 0, fmt.Errorf("%w: credentials and refresh_token are mutually exclusive", ErrInvalidRequest)
	case !hasPassword && !hasRefresh:
		return 0, fmt.Errorf("%w: credentials or refresh_token required", ErrInvalidRequest)
	}

	if len(req.ClientID) > maxClientIDLen {
		return 0, fmt.Errorf("%w: client_id too long", ErrInvalidRequest)
	}
	if req.AccessType == domain.AccessOffline {
		if req.ClientID == "" {
			return 0, fmt.Errorf("%w: client_id is required for offline access", ErrInvalidRequest)
		}
		if hasRefresh {
			return 0, fmt.Errorf("%w: refresh_token cannot create offline tokens", ErrInvalidRequest)
		}
	}
	if hasRefresh && req.ClientID == "" {
		return 0, fmt.Errorf("%w: client_id is required with refresh_token", ErrInvalidRequest)
	}

	switch req.SessionType {
	case "", SessionMobile, SessionDesktop:
	default:
		return 0, fmt.Errorf("%w: unknown session type %q", ErrInvalidRequest, req.SessionType)
	}

	def, ceiling := s.DefaultExpiration, s.MaxExpiration
	if def <= 0 {
		def = DefaultExpiration
	}
	if ceiling <= 0 {
		ceiling = MaxExpiration
	}
	if req.Expiration == nil {
		return min(def, ceiling), nil
	}

	// Compare in seconds; multiplying first can overflow into range.
	if *req.Expiration < 1 || int64(*req.Expiration) > int64(ceiling/time.Second) {
		return 0, fmt.Errorf("%w: expiration must be between 1 and %d seconds", ErrInvalidExpiration, int(ceiling/time.Second))
	}
	d := time.Duration(*req.Expiration) * time.Second
	return d, nil
}

// authenticate resolves the principal either from the backend or from a
// stored refresh token. For refresh logins it also returns the session to
// re-use.
func (s *TokenService) authenticate(ctx context.Context, req CreateTokenRequest) (backend.Principal, string, error) {
	if req.RefreshToken == "" {
		p, err := s.Gateway.Authenticate(ctx, req.Backend, backend.Credentials{
			Login:    req.Login,
			Password: req.Password,
		})
		if err != nil {
			return backend.Principal{}, "", mapBackendError(err)
		}
		return p, "", nil
	}

	rec, err := s.Store.RefreshTokens().Get(ctx, cryptox.FingerprintToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return backend.Principal{}, "", ErrAuthenticationFailed
		}
		return backend.Principal{}, "", err
	}
	if rec.BackendName != req.Backend || rec.ClientID != req.ClientID {
		return backend.Principal{}, "", ErrAuthenticationFailed
	}

	p, err := s.Gateway.Principal(ctx, rec.BackendName, rec.AuthID)
	if err != nil {
		return backend.Principal{}, "", mapBackendError(err)
	}
	p.AuthID = rec.AuthID
	return p, rec.SessionUUID, nil
}

func mapBackendError(err error) error {
	switch {
	case errors.Is(err, backend.ErrAuthenticationFailed):
		return ErrAuthenticationFailed
	case errors.Is(err, backend.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	default:
		return err
	}
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
