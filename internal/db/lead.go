package db

import "gorm.io/gorm"

const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadClosed    = "closed"
)

// Lead 访客通过联系表单留下的咨询
type Lead struct {
	gorm.Model
	FirmID       *uint  `gorm:"index" json:"firmId"`
	Firm         *Firm  `json:"firm,omitempty"`
	Name         string `gorm:"size:120;not null" json:"name"`
	Email        string `gorm:"size:255;not null" json:"email"`
	Phone        string `gorm:"size:50" json:"phone"`
	PracticeArea string `gorm:"size:120" json:"practiceArea"`
	City         string `gorm:"size:120" json:"city"`
	StateCode    string `gorm:"size:2" json:"stateCode"`
	Message      string `gorm:"type:text" json:"message"`
	Source       string `gorm:"size:120" json:"source"`
	Status       string `gorm:"size:20;index;default:new" json:"status"`
}

// TableName 返回自定义表名
func (Lead) TableName() string {
	return "leads"
}
