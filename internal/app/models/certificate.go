package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate defines the certificate model based on the 'certificates' table
type Certificate struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"userId" db:"user_id"`
	CourseSlug        string     `json:"courseSlug" db:"course_slug"`
	CertificateNumber string     `json:"certificateNumber" db:"certificate_number" example:"NSBS-7K3M-9QX2-ABCD"`
	IssuedAt          time.Time  `json:"issuedAt" db:"issued_at"`
	ExamAttemptID     uuid.UUID  `json:"examAttemptId" db:"exam_attempt_id"`
	Revoked           bool       `json:"revoked" db:"revoked"`
	RevokedAt         *time.Time `json:"revokedAt,omitempty" db:"revoked_at"`
	RevokedReason     *string    `json:"revokedReason,omitempty" db:"revoked_reason"`

	// Relations, populated by verification lookups
	CourseTitle string `json:"courseTitle,omitempty"`
	HolderName  string `json:"holderName,omitempty"`
}

// CertificateVerification is one audit row written per public verification lookup
type CertificateVerification struct {
	ID            uuid.UUID `db:"id"`
	CertificateID uuid.UUID `db:"certificate_id"`
	VerifiedAt    time.Time `db:"verified_at"`
	IPAddress     string    `db:"ip_address"`
	UserAgent     string    `db:"user_agent"`
}
