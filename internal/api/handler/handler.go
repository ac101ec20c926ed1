package handler

import (
	"github.com/prasanthzodiac/College-connect-sub001/internal/service"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/identity"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

// Handler aggregate entry point for every handler.
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Subject     *SubjectHandler
	Mark        *MarkHandler
	Attendance  *AttendanceHandler
	Leave       *LeaveHandler
	Grievance   *GrievanceHandler
	Certificate *CertificateHandler
	Realtime    *RealtimeHandler
	Health      *HealthHandler
}

// NewHandler wires handlers over the service aggregate.
func NewHandler(svc *service.Service, mode identity.Mode, hub *realtime.Hub, pinger Pinger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.User, mode),
		User:        NewUserHandler(svc.User),
		Subject:     NewSubjectHandler(svc.Subject),
		Mark:        NewMarkHandler(svc.Mark),
		Attendance:  NewAttendanceHandler(svc.Attendance),
		Leave:       NewLeaveHandler(svc.Leave),
		Grievance:   NewGrievanceHandler(svc.Grievance),
		Certificate: NewCertificateHandler(svc.Certificate),
		Realtime:    NewRealtimeHandler(hub),
		Health:      NewHealthHandler(mode, pinger),
	}
}
