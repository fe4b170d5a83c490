package db

import (
	"strings"

	"gorm.io/gorm"
)

// Lawyer is an attorney listed under a firm.
type Lawyer struct {
	gorm.Model
	FirmID        uint           `gorm:"index;not null" json:"firmId"`
	Firm          *Firm          `json:"firm,omitempty"`
	FirstName     string         `gorm:"size:100;not null" json:"firstName"`
	LastName      string         `gorm:"size:100;not null" json:"lastName"`
	Slug          string         `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Title         string         `gorm:"size:120" json:"title"`
	Email         string         `gorm:"size:255" json:"email"`
	Phone         string         `gorm:"size:50" json:"phone"`
	Bio           string         `gorm:"type:text" json:"bio"`
	PhotoURL      string         `gorm:"size:255" json:"photoUrl"`
	BarAdmissions string         `gorm:"size:255" json:"barAdmissions"`
	PracticeAreas []PracticeArea `gorm:"many2many:lawyer_practice_areas;" json:"practiceAreas,omitempty"`
}

// FullName joins first and last name.
func (l Lawyer) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(l.FirstName) + " " + strings.TrimSpace(l.LastName))
}
