package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/config"
	"github.com/prasanthzodiac/College-connect-sub001/internal/api/handler"
	"github.com/prasanthzodiac/College-connect-sub001/internal/api/middleware"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
)

const (
	student = model.RoleStudent
	staff   = model.RoleStaff
	admin   = model.RoleAdmin
)

// Setup builds the gin engine.
func Setup(cfg *config.Config, h *handler.Handler, verifier identity.Verifier, directory service.UserDirectory, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── ops ──
	r.GET("/health", h.Health.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authTimeout := cfg.Auth.Provider.RequestTimeout
	if authTimeout <= 0 {
		authTimeout = 5 * time.Second
	}
	authenticate := middleware.Authenticate(verifier, directory, m, authTimeout, logger)

	// ── realtime ──
	r.GET("/ws", authenticate, h.Realtime.Connect)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(authenticate)
	{
		v1.GET("/auth/me", h.Auth.Me)

		users := v1.Group("/users")
		{
			users.GET("", middleware.RoleAuth(admin, staff), h.User.ListUsers)
			users.GET("/:id", middleware.RoleAuth(admin, staff), h.User.GetUser)
			users.POST("", middleware.RoleAuth(admin), h.User.ProvisionUser)
			users.PUT("/:id/role", middleware.RoleAuth(admin), h.User.AssignRole)
			users.DELETE("/:id", middleware.RoleAuth(admin), h.User.DeleteUser)
		}

		subjects := v1.Group("/subjects")
		{
			subjects.GET("", h.Subject.ListSubjects)
			subjects.GET("/:ref", h.Subject.GetSubject)
			subjects.POST("", middleware.RoleAuth(admin, staff), h.Subject.CreateSubject)
			subjects.PUT("/:ref", middleware.RoleAuth(admin, staff), h.Subject.UpdateSubject)
			subjects.DELETE("/:ref", middleware.RoleAuth(admin), h.Subject.DeleteSubject)
		}

		marks := v1.Group("/marks")
		{
			marks.GET("/me", middleware.RoleAuth(student), h.Mark.MyMarks)
			marks.GET("", middleware.RoleAuth(staff, admin), h.Mark.ListMarks)
			marks.GET("/export", middleware.RoleAuth(staff, admin), h.Mark.ExportMarks)
			marks.POST("", middleware.RoleAuth(staff, admin), h.Mark.RecordMark)
			marks.POST("/bulk", middleware.RoleAuth(staff, admin), h.Mark.RecordBulk)
			marks.PUT("/:id", middleware.RoleAuth(staff, admin), h.Mark.UpdateMark)
			marks.DELETE("/:id", middleware.RoleAuth(staff, admin), h.Mark.DeleteMark)
		}

		attendance := v1.Group("/attendance")
		{
			attendance.GET("/me", middleware.RoleAuth(student), h.Attendance.MyAttendance)
			attendance.GET("", middleware.RoleAuth(staff, admin), h.Attendance.ListAttendance)
			attendance.POST("", middleware.RoleAuth(staff, admin), h.Attendance.RecordAttendance)
		}

		leaves := v1.Group("/leaves")
		{
			leaves.POST("", middleware.RoleAuth(student), h.Leave.ApplyLeave)
			leaves.GET("/me", middleware.RoleAuth(student), h.Leave.MyLeaves)
			leaves.GET("/me.ics", middleware.RoleAuth(student), h.Leave.MyCalendar)
			leaves.GET("", middleware.RoleAuth(staff, admin), h.Leave.ListLeaves)
			leaves.PUT("/:id/review", middleware.RoleAuth(staff, admin), h.Leave.ReviewLeave)
		}

		grievances := v1.Group("/grievances")
		{
			grievances.POST("", middleware.RoleAuth(student), h.Grievance.CreateGrievance)
			grievances.GET("/me", middleware.RoleAuth(student), h.Grievance.MyGrievances)
			grievances.GET("", middleware.RoleAuth(staff, admin), h.Grievance.ListGrievances)
			grievances.PUT("/:id/respond", middleware.RoleAuth(staff, admin), h.Grievance.RespondGrievance)
		}

		certificates := v1.Group("/certificates")
		{
			certificates.POST("", middleware.RoleAuth(student), h.Certificate.RequestCertificate)
			certificates.GET("/me", middleware.RoleAuth(student), h.Certificate.MyCertificates)
			certificates.GET("", middleware.RoleAuth(staff, admin), h.Certificate.ListCertificates)
			certificates.PUT("/:id/issue", middleware.RoleAuth(admin), h.Certificate.IssueCertificate)
			certificates.PUT("/:id/reject", middleware.RoleAuth(admin), h.Certificate.RejectCertificate)
		}
	}

	return r
}
