package dto

// ── user DTOs ──

// UserListRequest user list query.
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=student staff admin"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// ProvisionUserRequest explicit user creation by an admin.
type ProvisionUserRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name"  binding:"omitempty,min=1,max=100"`
	Role  string `json:"role"  binding:"required,oneof=student staff admin"`
}

// AssignRoleRequest role change.
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student staff admin"`
}

// UserResponse public user view.
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	RollNumber string `json:"rollNumber,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// MeResponse GET /auth/me.
type MeResponse struct {
	User UserResponse `json:"user"`
	// Mode is the verifier the process runs with.
	Mode        string `json:"mode"`
	Placeholder bool   `json:"placeholder"`
}
