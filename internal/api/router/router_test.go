package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/prasanthzodiac/College-connect-sub001/config"
	"github.com/prasanthzodiac/College-connect-sub001/internal/api/handler"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/mailer"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

type testApp struct {
	engine *gin.Engine
	db     *gorm.DB
}

// newTestApp wires the whole stack over in-memory SQLite in permissive mode.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080, MaxBodyBytes: 1 << 20},
		Auth:    config.AuthConfig{Demo: config.DemoConfig{PlaceholderEmail: "demo.student@college.edu"}},
		Campus:  config.CampusConfig{EmailDomain: "college.edu", SubjectPrefix: "SUBJ-"},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "test"},
	}

	log := zap.NewNop()
	m := metrics.New(cfg.Metrics.Namespace)
	hub := realtime.NewHub(nil, nil, log, m)
	verifier, err := identity.Select(context.Background(), &cfg.Auth, log)
	require.NoError(t, err)

	svc := service.NewService(cfg, repository.NewRepository(db), service.Deps{
		Broadcaster: hub,
		Mailer:      mailer.New(&config.MailConfig{}, log),
		Metrics:     m,
		Logger:      log,
	})
	h := handler.NewHandler(svc, verifier.Mode(), hub, sqlDB)

	return &testApp{engine: Setup(cfg, h, verifier, svc.Directory, m, log), db: db}
}

func (a *testApp) do(t *testing.T, method, path, email string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) (int, json.RawMessage) {
	t.Helper()
	var resp struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Code, resp.Data
}

func TestRouter_AdminProvisionedOnFirstContact(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/v1/users", "Admin@College.edu", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var admin model.User
	require.NoError(t, app.db.Where("email = ?", "admin@college.edu").First(&admin).Error)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, "Admin", admin.Name)

	// the second request resolves the same record
	w = app.do(t, http.MethodGet, "/api/v1/auth/me", "admin@college.edu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, data := envelope(t, w)
	var me struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Mode string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(data, &me))
	assert.Equal(t, admin.UserID, me.User.ID)
	assert.Equal(t, "permissive", me.Mode)

	var count int64
	app.db.Model(&model.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRouter_StudentDeniedStaffRoute(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/v1/marks", "student001@college.edu", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	code, _ := envelope(t, w)
	assert.Equal(t, 10003, code)
}

func TestRouter_SharedDemoBearerDoesNotShareRole(t *testing.T) {
	app := newTestApp(t)

	as := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer demo-token")
		req.Header.Set("X-User-Email", email)
		w := httptest.NewRecorder()
		app.engine.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, as("admin@college.edu").Code)

	w := as("student001@college.edu")
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	var student model.User
	require.NoError(t, app.db.Where("email = ?", "student001@college.edu").First(&student).Error)
	assert.Equal(t, model.RoleStudent, student.Role)
}

func TestRouter_MarkFlowByReference(t *testing.T) {
	app := newTestApp(t)

	// student exists once they have signed in
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/v1/auth/me", "student001@college.edu", nil).Code)

	w := app.do(t, http.MethodPost, "/api/v1/subjects", "admin@college.edu", map[string]string{
		"code": "SUBJ-CS101", "name": "Programming", "section": "A",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/v1/marks", "staff1@college.edu", map[string]interface{}{
		"student": "001", "subject": "SUBJ-CS101", "assessment": "midterm", "score": 42, "maxScore": 50,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/v1/marks", "staff1@college.edu", map[string]interface{}{
		"student": "999", "subject": "CS101", "assessment": "midterm", "score": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	code, _ := envelope(t, w)
	assert.Equal(t, 20002, code)

	w = app.do(t, http.MethodGet, "/api/v1/marks/me", "student001@college.edu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, data := envelope(t, w)
	var mine struct {
		List []struct {
			Score   float64 `json:"score"`
			Subject *struct {
				Code string `json:"code"`
			} `json:"subject"`
			Student *struct {
				RollNumber string `json:"rollNumber"`
			} `json:"student"`
			RecordedBy *struct {
				Email string `json:"email"`
			} `json:"recordedBy"`
		} `json:"list"`
	}
	require.NoError(t, json.Unmarshal(data, &mine))
	require.Len(t, mine.List, 1)
	assert.Equal(t, 42.0, mine.List[0].Score)
	require.NotNil(t, mine.List[0].Subject)
	assert.Equal(t, "CS101", mine.List[0].Subject.Code)
	require.NotNil(t, mine.List[0].Student)
	assert.Equal(t, "001", mine.List[0].Student.RollNumber)
	require.NotNil(t, mine.List[0].RecordedBy)
	assert.Equal(t, "staff1@college.edu", mine.List[0].RecordedBy.Email)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"permissive"`)

	w = app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
