package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeDirectory provisions on first contact by email.
type fakeDirectory struct {
	byEmail map[string]*model.User
	seen    []string
}

func newFakeDirectory(users ...*model.User) *fakeDirectory {
	d := &fakeDirectory{byEmail: make(map[string]*model.User)}
	for _, u := range users {
		d.byEmail[u.Email] = u
	}
	return d
}

func (d *fakeDirectory) ResolveOrProvision(_ context.Context, subjectID, email string) (*model.User, error) {
	d.seen = append(d.seen, email)
	if email == "" {
		return nil, service.ErrUserNotFound
	}
	if u, ok := d.byEmail[email]; ok {
		return u, nil
	}
	u := &model.User{UserID: subjectID, Email: email, Role: model.RoleStudent}
	d.byEmail[email] = u
	return u, nil
}

func (d *fakeDirectory) GetByID(context.Context, string) (*model.User, error) {
	return nil, service.ErrUserNotFound
}
func (d *fakeDirectory) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, service.ErrUserNotFound
}
func (d *fakeDirectory) ListByIDs(context.Context, []string) ([]model.User, error) { return nil, nil }
func (d *fakeDirectory) Provision(context.Context, *dto.ProvisionUserRequest, string) (*model.User, error) {
	return nil, nil
}
func (d *fakeDirectory) AssignRole(context.Context, string, string, string) (*model.User, error) {
	return nil, nil
}
func (d *fakeDirectory) Delete(context.Context, string, string) error { return nil }
func (d *fakeDirectory) List(context.Context, *dto.UserListRequest) ([]model.User, int64, error) {
	return nil, 0, nil
}

// rejectingVerifier fails every request like a trusted verifier without a token.
type rejectingVerifier struct{ err error }

func (v rejectingVerifier) Verify(context.Context, identity.Evidence) (identity.Identity, error) {
	return identity.Identity{}, v.err
}
func (v rejectingVerifier) Mode() identity.Mode { return identity.ModeTrusted }

func newAuthEngine(v identity.Verifier, dir service.UserDirectory, m *metrics.Metrics, roles ...string) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{Authenticate(v, dir, m, 0, zap.NewNop())}
	if len(roles) > 0 {
		chain = append(chain, RoleAuth(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		var body struct {
			Email string `json:"email"`
			Note  string `json:"note"`
		}
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserID), "role": c.GetString(ContextRole), "note": body.Note})
	})
	r.POST("/probe", chain...)
	r.GET("/probe", chain...)
	return r
}

func TestAuthenticate_PermissiveHeaderEmail(t *testing.T) {
	m := metrics.New("test")
	dir := newFakeDirectory()
	r := newAuthEngine(identity.NewPermissiveVerifier("demo.student@college.edu"), dir, m)

	req := httptest.NewRequest(http.MethodGet, "/probe?email=query@college.edu", nil)
	req.Header.Set("X-User-Email", " Header@College.edu ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"header@college.edu"}, dir.seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("permissive", "ok")))
}

func TestAuthenticate_BodyEmailIsRestored(t *testing.T) {
	dir := newFakeDirectory()
	r := newAuthEngine(identity.NewPermissiveVerifier("demo.student@college.edu"), dir, metrics.New("test"))

	req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(`{"email":"body@college.edu","note":"kept"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"body@college.edu"}, dir.seen)
	assert.Contains(t, w.Body.String(), `"note":"kept"`)
}

func TestAuthenticate_ChunkedBodyArrivesWhole(t *testing.T) {
	dir := newFakeDirectory()
	r := gin.New()
	r.POST("/bulk",
		Authenticate(identity.NewPermissiveVerifier("demo.student@college.edu"), dir, metrics.New("test"), 0, zap.NewNop()),
		func(c *gin.Context) {
			raw, err := io.ReadAll(c.Request.Body)
			require.NoError(t, err)
			c.JSON(http.StatusOK, gin.H{"size": len(raw)})
		})

	payload := `{"email":"staff1@college.edu","pad":"` + strings.Repeat("x", 100<<10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/bulk", io.MultiReader(strings.NewReader(payload)))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"size":%d}`, len(payload)), w.Body.String())
}

func TestAuthenticate_PlaceholderWhenNothingAsserted(t *testing.T) {
	dir := newFakeDirectory()
	r := newAuthEngine(identity.NewPermissiveVerifier("demo.student@college.edu"), dir, metrics.New("test"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"demo.student@college.edu"}, dir.seen)
	assert.Contains(t, w.Body.String(), `"user":"demo-anonymous"`)
}

func TestAuthenticate_VerifierRejects(t *testing.T) {
	m := metrics.New("test")
	dir := newFakeDirectory()
	r := newAuthEngine(rejectingVerifier{err: identity.ErrMissingCredential}, dir, m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":10002`)
	assert.Empty(t, dir.seen, "directory must not be consulted for a rejected caller")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("trusted", "missing")))
}

func TestRoleAuth(t *testing.T) {
	staff := &model.User{UserID: "staff-1", Email: "staff1@college.edu", Role: model.RoleStaff}
	student := &model.User{UserID: "stu-1", Email: "student001@college.edu", Role: model.RoleStudent}
	dir := newFakeDirectory(staff, student)
	r := newAuthEngine(identity.NewPermissiveVerifier("demo.student@college.edu"), dir, metrics.New("test"),
		model.RoleStaff, model.RoleAdmin)

	tests := []struct {
		email    string
		wantCode int
	}{
		{"staff1@college.edu", http.StatusOK},
		{"student001@college.edu", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			req.Header.Set("X-User-Email", tt.email)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), `"code":10003`)
			}
		})
	}
}

func TestRoleAuth_WithoutUser(t *testing.T) {
	r := gin.New()
	r.GET("/probe", RoleAuth(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCollectEvidence_Bearer(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws?access_token=query-token", nil)

	assert.Equal(t, "query-token", collectEvidence(c).Bearer)

	c.Request.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", collectEvidence(c).Bearer)
}
