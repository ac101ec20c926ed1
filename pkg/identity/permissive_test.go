package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/config"
)

func TestPermissiveVerifier_EmailPrecedence(t *testing.T) {
	v := NewPermissiveVerifier("demo.student@college.edu")

	cases := []struct {
		name string
		ev   Evidence
		want string
	}{
		{"header wins", Evidence{HeaderEmail: "h@college.edu", QueryEmail: "q@college.edu", BodyEmail: "b@college.edu"}, "h@college.edu"},
		{"query before body", Evidence{QueryEmail: "q@college.edu", BodyEmail: "b@college.edu"}, "q@college.edu"},
		{"body last", Evidence{BodyEmail: "b@college.edu"}, "b@college.edu"},
		{"blank header skipped", Evidence{HeaderEmail: "  ", QueryEmail: "Q@College.edu"}, "q@college.edu"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := v.Verify(context.Background(), tc.ev)
			require.NoError(t, err)
			assert.Equal(t, tc.want, id.Email)
			assert.True(t, id.Asserted)
			assert.False(t, id.Placeholder)
		})
	}
}

func TestPermissiveVerifier_Placeholder(t *testing.T) {
	v := NewPermissiveVerifier("Demo.Student@college.edu")

	id, err := v.Verify(context.Background(), Evidence{})
	require.NoError(t, err)
	assert.Equal(t, "demo.student@college.edu", id.Email)
	assert.True(t, id.Placeholder)
	assert.Equal(t, anonymousSubject, id.Subject)
}

func TestPermissiveVerifier_PseudoSubject(t *testing.T) {
	v := NewPermissiveVerifier("demo.student@college.edu")

	a, _ := v.Verify(context.Background(), Evidence{Bearer: strings.Repeat("x", 900)})
	b, _ := v.Verify(context.Background(), Evidence{Bearer: strings.Repeat("x", 900)})
	c, _ := v.Verify(context.Background(), Evidence{Bearer: "another-token"})

	assert.Equal(t, a.Subject, b.Subject, "same bearer maps to the same pseudo id")
	assert.NotEqual(t, a.Subject, c.Subject)
	assert.True(t, strings.HasPrefix(a.Subject, "demo-"))
	assert.Len(t, a.Subject, len("demo-")+24)

	byEmail, _ := v.Verify(context.Background(), Evidence{QueryEmail: "x@college.edu"})
	assert.NotEqual(t, anonymousSubject, byEmail.Subject)
}

func TestSelect_PermissiveWithoutProvider(t *testing.T) {
	v, err := Select(context.Background(), &config.AuthConfig{
		Demo: config.DemoConfig{PlaceholderEmail: "demo.student@college.edu"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ModePermissive, v.Mode())
}
