package domain

import (
	"strings"
	"time"
)

// Donor is a registered blood donor. Email is unique across donors.
type Donor struct {
	ID        int64
	Name      string
	Email     string
	BloodType string
	Contact   string
	CreatedAt time.Time
}

// DonorPatch carries the fields of a partial donor update; nil means unchanged.
type DonorPatch struct {
	Name      *string
	Email     *string
	BloodType *string
	Contact   *string
}

// Apply merges the non-nil fields of p into d.
func (p DonorPatch) Apply(d Donor) Donor {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		d.Email = NormalizeEmail(*p.Email)
	}
	if p.BloodType != nil {
		d.BloodType = NormalizeBloodType(*p.BloodType)
	}
	if p.Contact != nil {
		d.Contact = strings.TrimSpace(*p.Contact)
	}
	return d
}

// NormalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
