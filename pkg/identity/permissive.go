package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

const anonymousSubject = "demo-anonymous"

// PermissiveVerifier accepts caller-asserted identities without proof.
// Only ever selected when no identity provider is configured.
type PermissiveVerifier struct {
	placeholderEmail string
}

// NewPermissiveVerifier creates a verifier that substitutes placeholderEmail when none is asserted.
func NewPermissiveVerifier(placeholderEmail string) *PermissiveVerifier {
	return &PermissiveVerifier{placeholderEmail: normalizeEmail(placeholderEmail)}
}

// Mode implements Verifier.
func (v *PermissiveVerifier) Mode() Mode { return ModePermissive }

// Verify never fails. Email precedence: header, query, body.
func (v *PermissiveVerifier) Verify(_ context.Context, ev Evidence) (Identity, error) {
	email := ""
	for _, candidate := range []string{ev.HeaderEmail, ev.QueryEmail, ev.BodyEmail} {
		if e := normalizeEmail(candidate); e != "" {
			email = e
			break
		}
	}

	id := Identity{Email: email, Asserted: true}

	switch {
	case ev.Bearer != "":
		id.Subject = pseudoSubject(ev.Bearer)
	case email != "":
		id.Subject = pseudoSubject(email)
	default:
		id.Subject = anonymousSubject
	}

	if id.Email == "" {
		id.Email = v.placeholderEmail
		id.Placeholder = true
	}

	return id, nil
}

// pseudoSubject derives a stable, bounded-length id from arbitrary caller input.
func pseudoSubject(s string) string {
	sum := sha256.Sum256([]byte(s))
	return "demo-" + hex.EncodeToString(sum[:])[:24]
}
