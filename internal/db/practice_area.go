package db

import "gorm.io/gorm"

// PracticeArea 法律业务领域，例如 Family Law、Personal Injury
type PracticeArea struct {
	gorm.Model
	Name        string `gorm:"size:120;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `gorm:"default:0" json:"sortOrder"`
	FirmCount   int64  `gorm:"->;-:migration" json:"firmCount"`
}
