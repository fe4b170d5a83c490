package db

import "gorm.io/gorm"

// Page represents a standalone content page such as About or Terms.
type Page struct {
	gorm.Model
	Slug      string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Summary   string `gorm:"size:500" json:"summary"`
	Content   string `gorm:"type:text" json:"content"`
	Published bool   `gorm:"index" json:"published"`
}
