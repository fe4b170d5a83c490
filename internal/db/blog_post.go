package db

import (
	"time"

	"gorm.io/gorm"
)

// BlogPost 定义了博客文章模型
type BlogPost struct {
	gorm.Model
	Title          string        `gorm:"size:200;not null" json:"title"`
	Slug           string        `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Excerpt        string        `gorm:"size:500" json:"excerpt"`
	Content        string        `gorm:"type:text" json:"content"`
	CoverURL       string        `gorm:"size:255" json:"coverUrl"`
	AuthorName     string        `gorm:"size:120" json:"authorName"`
	Status         string        `gorm:"size:20;index;default:draft" json:"status"`
	PublishedAt    *time.Time    `gorm:"index" json:"publishedAt"`
	ReadingTime    int           `json:"readingTime"`
	PracticeAreaID *uint         `gorm:"index" json:"practiceAreaId"`
	PracticeArea   *PracticeArea `json:"practiceArea,omitempty"`
}
