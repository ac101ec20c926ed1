package repository

import "gorm.io/gorm"

// Repository aggregate entry point for every repository.
type Repository struct {
	User        UserRepository
	Subject     SubjectRepository
	Mark        MarkRepository
	Attendance  AttendanceRepository
	Leave       LeaveRepository
	Grievance   GrievanceRepository
	Certificate CertificateRepository
}

// NewRepository builds the aggregate over one connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepo(db),
		Subject:     NewSubjectRepo(db),
		Mark:        NewMarkRepo(db),
		Attendance:  NewAttendanceRepo(db),
		Leave:       NewLeaveRepo(db),
		Grievance:   NewGrievanceRepo(db),
		Certificate: NewCertificateRepo(db),
	}
}

// likePattern wraps a keyword for a case-insensitive LIKE match.
func likePattern(keyword string) string {
	return "%" + keyword + "%"
}
