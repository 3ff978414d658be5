package models

import "github.com/google/uuid"

// Profile is the public user profile keyed by the auth provider's user id
type Profile struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Email    string    `json:"email" db:"email"`
	FullName string    `json:"fullName" db:"full_name"`
}

// DisplayName returns the name printed on certificates
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
