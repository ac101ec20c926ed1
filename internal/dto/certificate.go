package dto

// ── certificate DTOs ──

// RequestCertificateRequest a student's certificate request.
type RequestCertificateRequest struct {
	Type    string `json:"type"    binding:"required,oneof=bonafide conduct transfer course_completion"`
	Purpose string `json:"purpose" binding:"required,min=1,max=255"`
}

// IssueCertificateRequest issue a requested certificate. The document is hosted elsewhere.
type IssueCertificateRequest struct {
	DocumentURL string `json:"documentUrl" binding:"omitempty,url,max=500"`
	Remarks     string `json:"remarks"     binding:"omitempty,max=500"`
}

// RejectCertificateRequest reject a requested certificate.
type RejectCertificateRequest struct {
	Remarks string `json:"remarks" binding:"required,min=1,max=500"`
}

// CertificateListRequest certificate list query.
type CertificateListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=requested issued rejected"`
}

// CertificateResponse enriched certificate.
type CertificateResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Purpose     string          `json:"purpose"`
	Status      string          `json:"status"`
	SerialNo    string          `json:"serialNo,omitempty"`
	DocumentURL string          `json:"documentUrl,omitempty"`
	Remarks     string          `json:"remarks,omitempty"`
	IssuedAt    string          `json:"issuedAt,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	Student     *StudentSummary `json:"student"`
	IssuedBy    *StaffSummary   `json:"issuedBy"`
}
