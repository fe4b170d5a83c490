package service

import (
	"errors"
	"time"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultViewDedupWindow = 30 * time.Minute

// AnalyticsService 负责律所主页浏览相关的统计逻辑。
type AnalyticsService struct {
	db          *gorm.DB
	dedupWindow time.Duration
}

// NewAnalyticsService 创建 AnalyticsService，默认去重窗口为 30 分钟。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb, dedupWindow: defaultViewDedupWindow}
}

// WithDedupWindow 允许在测试或特定场景下调整去重窗口。
func (s *AnalyticsService) WithDedupWindow(d time.Duration) *AnalyticsService {
	if d <= 0 {
		return s
	}
	s.dedupWindow = d
	return s
}

// RecordFirmView 记录访客对律所主页的浏览，同一访客在去重窗口内重复访问不计 PV。
func (s *AnalyticsService) RecordFirmView(firmID uint, visitorID string, now time.Time) (*db.FirmStatistic, error) {
	if visitorID == "" || firmID == 0 {
		return nil, errors.New("invalid visitor or firm id")
	}

	var stats db.FirmStatistic

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		visit := db.FirmVisit{
			FirmID:        firmID,
			VisitorID:     visitorID,
			LastViewedAt:  now,
			LastCountedAt: now,
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "firm_id"}, {Name: "visitor_id"}},
			DoNothing: true,
		}).Create(&visit)
		if insert.Error != nil {
			return insert.Error
		}

		isNewVisitor := insert.RowsAffected == 1
		countView := isNewVisitor
		if !isNewVisitor {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("firm_id = ? AND visitor_id = ?", firmID, visitorID).
				First(&visit).Error; err != nil {
				return err
			}
			visit.LastViewedAt = now
			if now.Sub(visit.LastCountedAt) >= s.dedupWindow {
				visit.LastCountedAt = now
				countView = true
			}
			if err := tx.Save(&visit).Error; err != nil {
				return err
			}
		}

		statsResult := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("firm_id = ?", firmID).
			First(&stats)

		switch {
		case errors.Is(statsResult.Error, gorm.ErrRecordNotFound):
			stats = db.FirmStatistic{FirmID: firmID}
			if err := tx.Create(&stats).Error; err != nil {
				return err
			}
		case statsResult.Error != nil:
			return statsResult.Error
		}

		if countView {
			stats.PageViews++
		}
		if isNewVisitor {
			stats.UniqueVisitors++
		}
		stats.LastViewedAt = now

		return tx.Save(&stats).Error
	}); err != nil {
		return nil, err
	}

	return &stats, nil
}

// FirmStatsMap 返回指定律所的统计数据，未找到的律所不会出现在结果中。
func (s *AnalyticsService) FirmStatsMap(firmIDs []uint) (map[uint]*db.FirmStatistic, error) {
	result := make(map[uint]*db.FirmStatistic, len(firmIDs))
	if len(firmIDs) == 0 {
		return result, nil
	}

	var stats []db.FirmStatistic
	if err := s.db.Where("firm_id IN ?", firmIDs).Find(&stats).Error; err != nil {
		return nil, err
	}

	for i := range stats {
		stat := stats[i]
		result[stat.FirmID] = &stat
	}

	return result, nil
}

// SiteOverview 聚合站点层面的 UV/PV 数据及热门律所。
type SiteOverview struct {
	TotalPageViews      uint64
	TotalUniqueVisitors uint64
	TopFirms            []TopFirmStat
}

// TopFirmStat 描述热门律所的统计信息。
type TopFirmStat struct {
	FirmID         uint
	Name           string
	Slug           string
	PageViews      uint64
	UniqueVisitors uint64
}

// Overview 汇总全站 UV/PV。
func (s *AnalyticsService) Overview(limit int) (SiteOverview, error) {
	if limit <= 0 {
		limit = 5
	}

	var overview SiteOverview

	var totals struct {
		PageViews uint64
	}
	if err := s.db.Model(&db.FirmStatistic{}).
		Select("COALESCE(SUM(page_views), 0) AS page_views").
		Scan(&totals).Error; err != nil {
		return overview, err
	}
	overview.TotalPageViews = totals.PageViews

	var uniqueVisitors int64
	if err := s.db.Model(&db.FirmVisit{}).Distinct("visitor_id").Count(&uniqueVisitors).Error; err != nil {
		return overview, err
	}
	overview.TotalUniqueVisitors = uint64(uniqueVisitors)

	var top []TopFirmStat
	if err := s.db.Table("firm_statistics fs").
		Select("fs.firm_id, f.name, f.slug, fs.page_views, fs.unique_visitors").
		Joins("JOIN firms f ON f.id = fs.firm_id AND f.deleted_at IS NULL").
		Order("fs.page_views DESC").
		Limit(limit).
		Scan(&top).Error; err != nil {
		return overview, err
	}

	overview.TopFirms = top
	return overview, nil
}
