package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://securetoken.example/college-connect"
	testAudience = "college-connect"
)

type staticKeySet struct {
	key interface{}
}

func (s staticKeySet) KeyfuncCtx(_ context.Context) jwtv5.Keyfunc {
	return func(*jwtv5.Token) (interface{}, error) { return s.key, nil }
}

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims providerClaims) string {
	t.Helper()
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(sub, email string) providerClaims {
	now := time.Now()
	return providerClaims{
		Email: email,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   sub,
			Issuer:    testIssuer,
			Audience:  jwtv5.ClaimStrings{testAudience},
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestTrustedVerifier_Valid(t *testing.T) {
	key := newTestKey(t)
	v := NewTrustedVerifier(staticKeySet{key: &key.PublicKey}, testIssuer, testAudience)

	id, err := v.Verify(context.Background(), Evidence{
		Bearer:      signToken(t, key, validClaims("uid-123", " Staff7@College.edu ")),
		HeaderEmail: "admin@college.edu",
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-123", id.Subject)
	assert.Equal(t, "staff7@college.edu", id.Email, "email comes from the token, never from headers")
	assert.False(t, id.Asserted)
	assert.Equal(t, ModeTrusted, v.Mode())
}

func TestTrustedVerifier_MissingBearer(t *testing.T) {
	key := newTestKey(t)
	v := NewTrustedVerifier(staticKeySet{key: &key.PublicKey}, testIssuer, testAudience)

	_, err := v.Verify(context.Background(), Evidence{HeaderEmail: "admin@college.edu"})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestTrustedVerifier_Expired(t *testing.T) {
	key := newTestKey(t)
	v := NewTrustedVerifier(staticKeySet{key: &key.PublicKey}, testIssuer, testAudience)

	claims := validClaims("uid-123", "a@college.edu")
	claims.IssuedAt = jwtv5.NewNumericDate(time.Now().Add(-3 * time.Hour))
	claims.ExpiresAt = jwtv5.NewNumericDate(time.Now().Add(-2 * time.Hour))

	_, err := v.Verify(context.Background(), Evidence{Bearer: signToken(t, key, claims)})
	assert.ErrorIs(t, err, ErrCredentialExpired)
}

func TestTrustedVerifier_Rejections(t *testing.T) {
	key := newTestKey(t)
	other := newTestKey(t)
	v := NewTrustedVerifier(staticKeySet{key: &key.PublicKey}, testIssuer, testAudience)

	wrongAudience := validClaims("uid-1", "a@college.edu")
	wrongAudience.Audience = jwtv5.ClaimStrings{"someone-else"}

	wrongIssuer := validClaims("uid-1", "a@college.edu")
	wrongIssuer.Issuer = "https://evil.example"

	noSubject := validClaims("", "a@college.edu")

	hmac, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, validClaims("uid-1", "a@college.edu")).
		SignedString([]byte("shared-secret-shared-secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"malformed":      "not.a.jwt",
		"wrong signer":   signToken(t, other, validClaims("uid-1", "a@college.edu")),
		"wrong audience": signToken(t, key, wrongAudience),
		"wrong issuer":   signToken(t, key, wrongIssuer),
		"no subject":     signToken(t, key, noSubject),
		"hmac algorithm": hmac,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), Evidence{Bearer: token})
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestTrustedVerifier_CancelledContext(t *testing.T) {
	key := newTestKey(t)
	v := NewTrustedVerifier(staticKeySet{key: &key.PublicKey}, testIssuer, testAudience)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Verify(ctx, Evidence{Bearer: signToken(t, key, validClaims("uid-1", "a@college.edu"))})
	assert.ErrorIs(t, err, context.Canceled)
}
