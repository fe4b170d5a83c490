package db

import "time"

// FirmStatistic 汇总律所主页的浏览数据。
type FirmStatistic struct {
	ID             uint   `gorm:"primaryKey"`
	FirmID         uint   `gorm:"uniqueIndex"`
	PageViews      uint64 `gorm:"default:0"`
	UniqueVisitors uint64 `gorm:"default:0"`
	LastViewedAt   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (FirmStatistic) TableName() string {
	return "firm_statistics"
}

// FirmVisit 记录访客层面的浏览历史，用于 UV/PV 去重。
type FirmVisit struct {
	ID            uint   `gorm:"primaryKey"`
	FirmID        uint   `gorm:"uniqueIndex:idx_firm_visitor"`
	VisitorID     string `gorm:"size:64;uniqueIndex:idx_firm_visitor"`
	LastViewedAt  time.Time
	LastCountedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 指定自定义表名。
func (FirmVisit) TableName() string {
	return "firm_visits"
}
