package dto

// ── mark DTOs ──

// RecordMarkRequest one mark. Student and Subject accept any supported reference form
// (id, email, roll number, subject code with or without prefix).
type RecordMarkRequest struct {
	Student    string  `json:"student"    binding:"required,max=255"`
	Subject    string  `json:"subject"    binding:"required,max=100"`
	Assessment string  `json:"assessment" binding:"required,min=1,max=50"`
	Score      float64 `json:"score"      binding:"min=0"`
	MaxScore   float64 `json:"maxScore"   binding:"omitempty,gt=0"`
	Remarks    string  `json:"remarks"    binding:"omitempty,max=500"`
}

// BulkMarkRow one row of a bulk upload.
type BulkMarkRow struct {
	Student string  `json:"student" binding:"required,max=255"`
	Score   float64 `json:"score"   binding:"min=0"`
	Remarks string  `json:"remarks" binding:"omitempty,max=500"`
}

// BulkMarkRequest many students, one subject and assessment.
type BulkMarkRequest struct {
	Subject    string        `json:"subject"    binding:"required,max=100"`
	Assessment string        `json:"assessment" binding:"required,min=1,max=50"`
	MaxScore   float64       `json:"maxScore"   binding:"omitempty,gt=0"`
	Rows       []BulkMarkRow `json:"rows"       binding:"required,min=1,max=500,dive"`
}

// UpdateMarkRequest optimistic-lock update; Version is the version last read.
type UpdateMarkRequest struct {
	Score    *float64 `json:"score"    binding:"omitempty,min=0"`
	MaxScore *float64 `json:"maxScore" binding:"omitempty,gt=0"`
	Remarks  *string  `json:"remarks"  binding:"omitempty,max=500"`
	Version  int      `json:"version"  binding:"required,min=1"`
}

// MarkListRequest mark list query; references are resolved before filtering.
type MarkListRequest struct {
	PaginationRequest
	Subject    string `form:"subject"    binding:"omitempty,max=100"`
	Student    string `form:"student"    binding:"omitempty,max=255"`
	Assessment string `form:"assessment" binding:"omitempty,max=50"`
}

// MarkResponse enriched mark.
type MarkResponse struct {
	ID         string  `json:"id"`
	Assessment string  `json:"assessment"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Remarks    string  `json:"remarks,omitempty"`
	Version    int     `json:"version"`
	UpdatedAt  string  `json:"updatedAt"`
	Relations
}
