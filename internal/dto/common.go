package dto

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for instants.
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// ── pagination ──

// PaginationRequest common paging parameters.
type PaginationRequest struct {
	Page     int `form:"page"     binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default.
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset.
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── relation summaries ──

// SubjectSummary compact subject attached to records.
type SubjectSummary struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Section string `json:"section"`
}

// StudentSummary compact student attached to records.
type StudentSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"rollNumber"`
}

// StaffSummary compact staff/admin attached to records.
type StaffSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Relations related entities of one record. Missing relations serialize as null.
type Relations struct {
	Subject    *SubjectSummary `json:"subject"`
	Student    *StudentSummary `json:"student"`
	RecordedBy *StaffSummary   `json:"recordedBy"`
}

// RowResult outcome of one row of a batch write.
type RowResult struct {
	Row     int    `json:"row"`
	Student string `json:"student"`
	ID      string `json:"id,omitempty"`
	// Reason is a stable machine-readable failure kind, empty on success.
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResponse per-row outcome of a batch write.
type BatchResponse struct {
	Stored  int         `json:"stored"`
	Failed  int         `json:"failed"`
	Results []RowResult `json:"results"`
}
