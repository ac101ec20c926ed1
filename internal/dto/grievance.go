package dto

// ── grievance DTOs ──

// CreateGrievanceRequest a student's grievance.
type CreateGrievanceRequest struct {
	Category    string `json:"category"    binding:"required,oneof=academic examination hostel transport finance other"`
	Title       string `json:"title"       binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"required,min=1,max=2000"`
}

// RespondGrievanceRequest staff response.
type RespondGrievanceRequest struct {
	Status   string `json:"status"   binding:"required,oneof=in_progress resolved"`
	Response string `json:"response" binding:"required,min=1,max=2000"`
}

// GrievanceListRequest grievance list query.
type GrievanceListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=open in_progress resolved"`
}

// GrievanceResponse enriched grievance.
type GrievanceResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Response    string          `json:"response,omitempty"`
	RespondedAt string          `json:"respondedAt,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	Student     *StudentSummary `json:"student"`
	RespondedBy *StaffSummary   `json:"respondedBy"`
}
