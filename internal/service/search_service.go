package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/pricing"
	"gorm.io/gorm"
)

const (
	defaultSearchPerPage = 12
	maxSearchPerPage     = 50
)

// PricingSource provides the current pricing configuration.
type PricingSource interface {
	Load() (pricing.Config, error)
}

// SearchQuery 描述公开目录的搜索条件，各条件之间为 AND 关系。
type SearchQuery struct {
	Text         string `json:"q"`
	PracticeArea string `json:"practiceArea"`
	State        string `json:"state"`
	Metro        string `json:"metro"`
	Tier         string `json:"tier"`
	Page         int    `json:"page"`
	PerPage      int    `json:"perPage"`
}

// IsEmpty reports whether no filter is set.
func (q SearchQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" &&
		strings.TrimSpace(q.PracticeArea) == "" &&
		strings.TrimSpace(q.State) == "" &&
		strings.TrimSpace(q.Metro) == "" &&
		strings.TrimSpace(q.Tier) == ""
}

// SearchResult holds one page of matching firms.
type SearchResult struct {
	Items []db.Firm `json:"items"`
	Pagination
}

// SearchService 查询已发布的律所。
type SearchService struct {
	db      *gorm.DB
	pricing PricingSource
}

// NewSearchService creates a SearchService. source may be nil, in which case tiers rank equally.
func NewSearchService(gdb *gorm.DB, source PricingSource) *SearchService {
	return &SearchService{db: gdb, pricing: source}
}

// Search returns published firms matching every provided filter.
func (s *SearchService) Search(query SearchQuery) (*SearchResult, error) {
	result := &SearchResult{
		Items:      []db.Firm{},
		Pagination: newPagination(query.Page, query.PerPage, defaultSearchPerPage, maxSearchPerPage),
	}

	filtered := s.filter(query)

	var total int64
	if err := s.db.Model(&db.Firm{}).
		Where("firms.id IN (?)", filtered).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count firms: %w", err)
	}
	result.finish(total)
	if total == 0 {
		return result, nil
	}

	rankExpr, err := s.tierRankExpr()
	if err != nil {
		return nil, err
	}

	if err := s.db.
		Preload("Offices", func(q *gorm.DB) *gorm.DB { return q.Order("headquarters desc, id asc") }).
		Preload("Offices.State").
		Preload("Offices.Metro").
		Preload("PracticeAreas", func(q *gorm.DB) *gorm.DB { return q.Order("sort_order asc, name asc") }).
		Where("firms.id IN (?)", filtered).
		Order("firms.featured desc").
		Order(rankExpr).
		Order("firms.name asc").
		Order("firms.id asc").
		Limit(result.PerPage).
		Offset(result.offset()).
		Find(&result.Items).Error; err != nil {
		return nil, fmt.Errorf("search firms: %w", err)
	}

	return result, nil
}

// filter builds the subquery of distinct matching firm ids.
func (s *SearchService) filter(query SearchQuery) *gorm.DB {
	sub := s.db.Model(&db.Firm{}).
		Select("DISTINCT firms.id").
		Where("firms.status = ?", db.StatusPublished)

	if text := strings.TrimSpace(query.Text); text != "" {
		like := likePattern(text)
		sub = sub.Where(
			"LOWER(firms.name) LIKE ? OR LOWER(firms.summary) LIKE ? OR LOWER(firms.description) LIKE ?",
			like, like, like,
		)
	}

	if area := strings.ToLower(strings.TrimSpace(query.PracticeArea)); area != "" {
		sub = sub.
			Joins("JOIN firm_practice_areas fpa ON fpa.firm_id = firms.id").
			Joins("JOIN practice_areas pa ON pa.id = fpa.practice_area_id AND pa.deleted_at IS NULL").
			Where("pa.slug = ?", area)
	}

	state := strings.TrimSpace(query.State)
	metro := strings.ToLower(strings.TrimSpace(query.Metro))
	if state != "" || metro != "" {
		sub = sub.Joins("JOIN offices o ON o.firm_id = firms.id AND o.deleted_at IS NULL")
	}
	if state != "" {
		sub = sub.
			Joins("JOIN states st ON st.id = o.state_id").
			Where("st.code = ? OR st.slug = ?", strings.ToUpper(state), strings.ToLower(state))
	}
	if metro != "" {
		sub = sub.
			Joins("JOIN metros m ON m.id = o.metro_id").
			Where("m.slug = ?", metro)
	}

	if tier := strings.ToLower(strings.TrimSpace(query.Tier)); tier != "" {
		sub = sub.Where("firms.tier = ?", tier)
	}

	return sub
}

// tierRankExpr orders higher pricing tiers first; unknown tiers sort last.
func (s *SearchService) tierRankExpr() (string, error) {
	if s.pricing == nil {
		return "firms.id asc", nil
	}

	cfg, err := s.pricing.Load()
	if err != nil {
		return "", err
	}
	ranks := cfg.Ranks()
	if len(ranks) == 0 {
		return "firms.id asc", nil
	}

	ids := make([]string, 0, len(ranks))
	for id := range ranks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("CASE firms.tier")
	for _, id := range ids {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", strings.ReplaceAll(id, "'", "''"), ranks[id])
	}
	b.WriteString(" ELSE -1 END DESC")
	return b.String(), nil
}
