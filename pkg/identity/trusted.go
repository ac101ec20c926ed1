package identity

import (
	"context"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// KeySet supplies verification keys for provider-signed tokens.
type KeySet interface {
	KeyfuncCtx(ctx context.Context) jwtv5.Keyfunc
}

// providerClaims ID-token claims issued by the external identity provider.
type providerClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwtv5.RegisteredClaims
}

// TrustedVerifier validates provider-issued JWTs.
type TrustedVerifier struct {
	keys   KeySet
	parser *jwtv5.Parser
}

// NewTrustedVerifier creates a verifier bound to one issuer and audience.
func NewTrustedVerifier(keys KeySet, issuer, audience string) *TrustedVerifier {
	return &TrustedVerifier{
		keys: keys,
		parser: jwtv5.NewParser(
			jwtv5.WithValidMethods([]string{"RS256", "ES256"}),
			jwtv5.WithIssuer(issuer),
			jwtv5.WithAudience(audience),
			jwtv5.WithExpirationRequired(),
			jwtv5.WithLeeway(30*time.Second),
		),
	}
}

// Mode implements Verifier.
func (v *TrustedVerifier) Mode() Mode { return ModeTrusted }

// Verify parses and validates the bearer token.
func (v *TrustedVerifier) Verify(ctx context.Context, ev Evidence) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	if ev.Bearer == "" {
		return Identity{}, ErrMissingCredential
	}

	claims := &providerClaims{}
	token, err := v.parser.ParseWithClaims(ev.Bearer, claims, v.keys.KeyfuncCtx(ctx))
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return Identity{}, ErrCredentialExpired
		}
		return Identity{}, ErrInvalidCredential
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidCredential
	}

	return Identity{
		Subject: claims.Subject,
		Email:   normalizeEmail(claims.Email),
	}, nil
}
