package dto

// ── attendance DTOs ──

// AttendanceEntry one student's status.
type AttendanceEntry struct {
	Student string `json:"student" binding:"required,max=255"`
	Status  string `json:"status"  binding:"required,oneof=present absent late"`
}

// RecordAttendanceRequest a class session's attendance.
type RecordAttendanceRequest struct {
	Subject string            `json:"subject" binding:"required,max=100"`
	Date    string            `json:"date"    binding:"required,datetime=2006-01-02"`
	Entries []AttendanceEntry `json:"entries" binding:"required,min=1,max=500,dive"`
}

// AttendanceListRequest attendance list query.
type AttendanceListRequest struct {
	PaginationRequest
	Subject string `form:"subject" binding:"omitempty,max=100"`
	Student string `form:"student" binding:"omitempty,max=255"`
	From    string `form:"from"    binding:"omitempty,datetime=2006-01-02"`
	To      string `form:"to"      binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceResponse enriched attendance row.
type AttendanceResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Status string `json:"status"`
	Relations
}

// AttendanceSummary per-subject totals for one student.
type AttendanceSummary struct {
	Subject    *SubjectSummary `json:"subject"`
	Total      int             `json:"total"`
	Present    int             `json:"present"`
	Late       int             `json:"late"`
	Absent     int             `json:"absent"`
	Percentage float64         `json:"percentage"`
}

// MyAttendanceResponse GET /attendance/me.
type MyAttendanceResponse struct {
	Records []AttendanceResponse `json:"records"`
	Summary []AttendanceSummary  `json:"summary"`
}
