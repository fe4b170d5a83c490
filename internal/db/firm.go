package db

import (
	"strings"

	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"

	// DefaultTier 是没有定价配置可参考时的默认档位，也用于迁移回填。
	DefaultTier = "basic"
)

// Firm 定义律所目录条目
type Firm struct {
	gorm.Model
	Name          string         `gorm:"size:200;not null" json:"name"`
	Slug          string         `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Summary       string         `gorm:"size:500" json:"summary"`
	Description   string         `gorm:"type:text" json:"description"`
	Website       string         `gorm:"size:255" json:"website"`
	Email         string         `gorm:"size:255" json:"email"`
	Phone         string         `gorm:"size:50" json:"phone"`
	LogoURL       string         `gorm:"size:255" json:"logoUrl"`
	LogoWidth     int            `json:"logoWidth"`
	LogoHeight    int            `json:"logoHeight"`
	Tier          string         `gorm:"size:50;index;default:basic" json:"tier"`
	Featured      bool           `gorm:"index" json:"featured"`
	Status        string         `gorm:"size:20;index;default:draft" json:"status"`
	FoundedYear   int            `json:"foundedYear,omitempty"`
	PracticeAreas []PracticeArea `gorm:"many2many:firm_practice_areas;" json:"practiceAreas,omitempty"`
	Offices       []Office       `gorm:"constraint:OnDelete:CASCADE;" json:"offices,omitempty"`
	Lawyers       []Lawyer       `gorm:"constraint:OnDelete:CASCADE;" json:"lawyers,omitempty"`
}

// IsPublished reports whether the firm is visible on public pages.
func (f Firm) IsPublished() bool {
	return strings.EqualFold(f.Status, StatusPublished)
}

// Headquarters returns the office flagged as headquarters, else the first office.
func (f Firm) Headquarters() *Office {
	for i := range f.Offices {
		if f.Offices[i].Headquarters {
			return &f.Offices[i]
		}
	}
	if len(f.Offices) > 0 {
		return &f.Offices[0]
	}
	return nil
}
