package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
)

// VerifiedCertificate is the public view of a certificate
type VerifiedCertificate struct {
	ID                uuid.UUID `json:"id"`
	CertificateNumber string    `json:"certificate_number" example:"NSBS-7K3M-9QX2-ABCD"`
	CourseTitle       string    `json:"course_title" example:"AML Foundations"`
	UserName          string    `json:"user_name" example:"Jane Doe"`
	IssuedAt          time.Time `json:"issued_at"`
}

// VerificationResponse is returned by the public verification endpoint
type VerificationResponse struct {
	Valid       bool                 `json:"valid"`
	Certificate *VerifiedCertificate `json:"certificate,omitempty"`
	Error       string               `json:"error,omitempty"`
	RevokedAt   *time.Time           `json:"revoked_at,omitempty"`
}

// CertificateResponse is the owner's view of one of their certificates
type CertificateResponse struct {
	ID                uuid.UUID  `json:"id"`
	CertificateNumber string     `json:"certificateNumber"`
	CourseSlug        string     `json:"courseSlug"`
	IssuedAt          time.Time  `json:"issuedAt"`
	Revoked           bool       `json:"revoked"`
	RevokedAt         *time.Time `json:"revokedAt,omitempty"`
}

// CertificateListResponse wraps the caller's certificates
type CertificateListResponse struct {
	Certificates []CertificateResponse `json:"certificates"`
}

// RevokeCertificateRequest represents an administrative revocation
type RevokeCertificateRequest struct {
	Reason string `json:"reason" binding:"required,notblank,min=3,max=500"`
}

// NewVerifiedCertificate builds the public view from a resolved certificate
func NewVerifiedCertificate(cert *models.Certificate) *VerifiedCertificate {
	return &VerifiedCertificate{
		ID:                cert.ID,
		CertificateNumber: cert.CertificateNumber,
		CourseTitle:       cert.CourseTitle,
		UserName:          cert.HolderName,
		IssuedAt:          cert.IssuedAt,
	}
}

// ToCertificateResponse converts a certificate into the owner's view
func ToCertificateResponse(cert *models.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:                cert.ID,
		CertificateNumber: cert.CertificateNumber,
		CourseSlug:        cert.CourseSlug,
		IssuedAt:          cert.IssuedAt,
		Revoked:           cert.Revoked,
		RevokedAt:         cert.RevokedAt,
	}
}
