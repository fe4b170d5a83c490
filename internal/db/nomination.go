package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	NominationPending  = "pending"
	NominationApproved = "approved"
	NominationRejected = "rejected"
)

// Nomination 公开提交的律所提名，待管理员审核
type Nomination struct {
	gorm.Model
	FirmName       string     `gorm:"size:200;not null" json:"firmName"`
	FirmWebsite    string     `gorm:"size:255" json:"firmWebsite"`
	City           string     `gorm:"size:120" json:"city"`
	StateCode      string     `gorm:"size:2" json:"stateCode"`
	PracticeArea   string     `gorm:"size:120" json:"practiceArea"`
	NominatorName  string     `gorm:"size:120;not null" json:"nominatorName"`
	NominatorEmail string     `gorm:"size:255;not null" json:"nominatorEmail"`
	NominatorPhone string     `gorm:"size:50" json:"nominatorPhone"`
	Relationship   string     `gorm:"size:120" json:"relationship"`
	Reason         string     `gorm:"type:text;not null" json:"reason"`
	Status         string     `gorm:"size:20;index;default:pending" json:"status"`
	ReviewNote     string     `gorm:"type:text" json:"reviewNote"`
	ReviewedAt     *time.Time `json:"reviewedAt"`
	FirmID         *uint      `gorm:"index" json:"firmId"`
}
