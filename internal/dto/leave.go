package dto

// ── leave DTOs ──

// CreateLeaveRequest a student's leave application.
type CreateLeaveRequest struct {
	FromDate string `json:"fromDate" binding:"required,datetime=2006-01-02"`
	ToDate   string `json:"toDate"   binding:"required,datetime=2006-01-02"`
	Reason   string `json:"reason"   binding:"required,min=1,max=500"`
}

// ReviewLeaveRequest approve or reject.
type ReviewLeaveRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Note     string `json:"note"     binding:"omitempty,max=500"`
}

// LeaveListRequest leave list query.
type LeaveListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// LeaveResponse enriched leave request.
type LeaveResponse struct {
	ID         string          `json:"id"`
	FromDate   string          `json:"fromDate"`
	ToDate     string          `json:"toDate"`
	Reason     string          `json:"reason"`
	Status     string          `json:"status"`
	ReviewNote string          `json:"reviewNote,omitempty"`
	ReviewedAt string          `json:"reviewedAt,omitempty"`
	CreatedAt  string          `json:"createdAt"`
	Student    *StudentSummary `json:"student"`
	ReviewedBy *StaffSummary   `json:"reviewedBy"`
}
