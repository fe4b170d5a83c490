package service

import (
	"context"

	"github.com/firmdirectory/internal/db"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DashboardStats 后台首页的计数汇总。
type DashboardStats struct {
	Firms              int64 `json:"firms"`
	PublishedFirms     int64 `json:"publishedFirms"`
	Lawyers            int64 `json:"lawyers"`
	PracticeAreas      int64 `json:"practiceAreas"`
	BlogPosts          int64 `json:"blogPosts"`
	PendingNominations int64 `json:"pendingNominations"`
	NewLeads           int64 `json:"newLeads"`
}

// StatsService collects dashboard counters.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a StatsService.
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

// Dashboard runs the counters concurrently and fails on the first error.
func (s *StatsService) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, model interface{}, query string, args ...interface{}) {
		g.Go(func() error {
			q := s.db.WithContext(ctx).Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dst).Error
		})
	}

	count(&stats.Firms, &db.Firm{}, "")
	count(&stats.PublishedFirms, &db.Firm{}, "status = ?", db.StatusPublished)
	count(&stats.Lawyers, &db.Lawyer{}, "")
	count(&stats.PracticeAreas, &db.PracticeArea{}, "")
	count(&stats.BlogPosts, &db.BlogPost{}, "")
	count(&stats.PendingNominations, &db.Nomination{}, "status = ?", db.NominationPending)
	count(&stats.NewLeads, &db.Lead{}, "status = ?", db.LeadNew)

	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}
