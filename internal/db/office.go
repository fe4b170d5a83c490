package db

import (
	"strings"

	"gorm.io/gorm"
)

// Office 记录律所的办公地点，City/State 用于搜索过滤
type Office struct {
	gorm.Model
	FirmID       uint   `gorm:"index;not null" json:"firmId"`
	Label        string `gorm:"size:120" json:"label"`
	Street       string `gorm:"size:255" json:"street"`
	City         string `gorm:"size:120;index;not null" json:"city"`
	Zip          string `gorm:"size:20" json:"zip"`
	Phone        string `gorm:"size:50" json:"phone"`
	StateID      uint   `gorm:"index;not null" json:"stateId"`
	State        State  `json:"state"`
	MetroID      *uint  `gorm:"index" json:"metroId"`
	Metro        *Metro `json:"metro,omitempty"`
	Headquarters bool   `json:"headquarters"`
}

// Locality formats "City, ST" for listings.
func (o Office) Locality() string {
	parts := make([]string, 0, 2)
	if city := strings.TrimSpace(o.City); city != "" {
		parts = append(parts, city)
	}
	if code := strings.TrimSpace(o.State.Code); code != "" {
		parts = append(parts, code)
	}
	return strings.Join(parts, ", ")
}
