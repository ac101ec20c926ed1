// Package identity verifies who a caller claims to be.
//
// Two verifiers exist and exactly one is selected at start-up:
//   - TrustedVerifier checks a bearer JWT against the identity provider's key set.
//   - PermissiveVerifier accepts whatever identity the caller asserts (offline/demo).
//
// Both produce an Identity that downstream code consumes without knowing which one ran.
package identity

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/config"
)

var (
	ErrMissingCredential = errors.New("missing bearer credential")
	ErrInvalidCredential = errors.New("invalid bearer credential")
	ErrCredentialExpired = errors.New("bearer credential expired")
)

// Mode names the verifier variant.
type Mode string

const (
	ModeTrusted    Mode = "trusted"
	ModePermissive Mode = "permissive"
)

// Evidence is everything a request presents about its caller.
// The email fields are only consulted in permissive mode.
type Evidence struct {
	Bearer      string
	HeaderEmail string
	QueryEmail  string
	BodyEmail   string
}

// Identity is a verified or caller-asserted principal.
type Identity struct {
	Subject string
	Email   string // normalized, may be empty in trusted mode
	// Asserted is true when nothing was cryptographically verified.
	Asserted bool
	// Placeholder is true when no email was supplied and a stand-in was used.
	Placeholder bool
}

// Verifier turns request evidence into an Identity.
type Verifier interface {
	Verify(ctx context.Context, ev Evidence) (Identity, error)
	Mode() Mode
}

// Select picks the verifier for the process lifetime.
// Trusted mode is used whenever provider credentials are configured; a failure to load the
// provider key set is returned rather than degrading to permissive mode.
func Select(ctx context.Context, cfg *config.AuthConfig, logger *zap.Logger) (Verifier, error) {
	if cfg.Provider.Configured() {
		keys, err := NewProviderKeySet(ctx, cfg.Provider.JWKSURL)
		if err != nil {
			return nil, err
		}
		logger.Info("identity verifier selected",
			zap.String("mode", string(ModeTrusted)),
			zap.String("issuer", cfg.Provider.Issuer),
		)
		return NewTrustedVerifier(keys, cfg.Provider.Issuer, cfg.Provider.Audience), nil
	}

	logger.Warn("no identity provider configured, running in permissive demo mode",
		zap.String("mode", string(ModePermissive)),
	)
	return NewPermissiveVerifier(cfg.Demo.PlaceholderEmail), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
