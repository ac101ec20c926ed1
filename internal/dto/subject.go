package dto

// ── subject DTOs ──

// CreateSubjectRequest create a subject. Code is stored without the institution prefix.
type CreateSubjectRequest struct {
	Code    string `json:"code"    binding:"required,min=1,max=50"`
	Name    string `json:"name"    binding:"required,min=1,max=150"`
	Section string `json:"section" binding:"omitempty,max=20"`
}

// UpdateSubjectRequest partial update.
type UpdateSubjectRequest struct {
	Code    *string `json:"code"    binding:"omitempty,min=1,max=50"`
	Name    *string `json:"name"    binding:"omitempty,min=1,max=150"`
	Section *string `json:"section" binding:"omitempty,max=20"`
}

// SubjectListRequest subject list query.
type SubjectListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// SubjectResponse subject view.
type SubjectResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Section   string `json:"section"`
	CreatedAt string `json:"createdAt"`
}
