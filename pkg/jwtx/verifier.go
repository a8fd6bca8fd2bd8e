// Package jwtx verifies signed identity assertions issued by upstream
// providers.
package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyOptions captures what a verifier expects of every assertion.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience values the token must contain (claims.aud). Empty means "don't care".
	Audience []string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// RequireKID enforces presence of the "kid" header.
	RequireKID bool
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Verifier checks EdDSA, ES256 and RS256 signatures against a KeySet. The
// algorithm must agree with the type of the key the kid resolves to.
type Verifier struct {
	keys *KeySet
	opts VerifyOptions

	// Now is the clock used for exp/nbf. Defaults to time.Now.
	Now func() time.Time
}

// NewVerifier creates a verifier over keys.
func NewVerifier(keys *KeySet, opts VerifyOptions) *Verifier {
	return &Verifier{keys: keys, opts: opts, Now: time.Now}
}

var validMethods = []string{
	jwt.SigningMethodEdDSA.Alg(),
	jwt.SigningMethodES256.Alg(),
	jwt.SigningMethodRS256.Alg(),
}

// Verify validates the JWT string and returns its claims.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(validMethods),
		// Time claims are checked below with our own clock.
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, v.keyFunc)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", ErrInvalidSig, err)
		case errors.Is(err, ErrUnknownKID), errors.Is(err, ErrAlgMismatch):
			return nil, err
		default:
			return nil, fmt.Errorf("jwtx: parse or verify: %w", err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(v.Now(), v.opts.Leeway); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidClaim)
	}

	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" && v.opts.RequireKID {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
	}

	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}

	var ok bool
	switch t.Method.Alg() {
	case jwt.SigningMethodEdDSA.Alg():
		_, ok = pub.(ed25519.PublicKey)
	case jwt.SigningMethodES256.Alg():
		_, ok = pub.(*ecdsa.PublicKey)
	case jwt.SigningMethodRS256.Alg():
		_, ok = pub.(*rsa.PublicKey)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s with %T", ErrAlgMismatch, t.Method.Alg(), pub)
	}
	return pub, nil
}
