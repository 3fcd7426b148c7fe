package domain

import (
	"strings"
	"time"
)

// BloodStock is the available volume for one blood type.
type BloodStock struct {
	BloodType string
	Volume    int
	UpdatedAt time.Time
}

// NormalizeBloodType trims whitespace and upper-cases the ABO letters so that
// "a+" and "A+" share one ledger row.
func NormalizeBloodType(bt string) string {
	return strings.ToUpper(strings.TrimSpace(bt))
}
