package service

import (
	"errors"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrFirmNotFound     = errors.New("firm not found")
	ErrFirmNameRequired = errors.New("firm name is required")
	ErrFirmContact      = errors.New("firm contact details are invalid")
	ErrTierUnknown      = errors.New("pricing tier does not exist")
)

// TierChecker reports whether a pricing tier id is configured and which
// tier new firms start on.
type TierChecker interface {
	HasTier(id string) (bool, error)
	DefaultTier() (string, error)
}

// FirmService wraps firm related database operations.
type FirmService struct {
	db    *gorm.DB
	tiers TierChecker
}

// FirmFilter describes filters for the admin firm listing.
type FirmFilter struct {
	Search  string
	Status  string
	Tier    string
	Page    int
	PerPage int
}

// FirmListResult aggregates paginated firms.
type FirmListResult struct {
	Firms []db.Firm `json:"firms"`
	Pagination
}

// FirmInput represents fields accepted when creating or updating a firm.
type FirmInput struct {
	Name            string
	Slug            string
	Summary         string
	Description     string
	Website         string
	Email           string
	Phone           string
	Tier            string
	Status          string
	Featured        bool
	FoundedYear     int
	PracticeAreaIDs []uint
}

type firmContact struct {
	Website string `validate:"omitempty,http_url"`
	Email   string `validate:"omitempty,email"`
	Founded int    `validate:"omitempty,min=1700,max=2100"`
}

// NewFirmService creates a FirmService. tiers may be nil to skip tier validation.
func NewFirmService(gdb *gorm.DB, tiers TierChecker) *FirmService {
	return &FirmService{db: gdb, tiers: tiers}
}

// List provides paginated firms for the admin back-office.
func (s *FirmService) List(filter FirmFilter) (*FirmListResult, error) {
	result := &FirmListResult{Pagination: newPagination(filter.Page, filter.PerPage, 20, 100)}

	query := s.db.Model(&db.Firm{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := likePattern(search)
		query = query.Where("LOWER(firms.name) LIKE ? OR LOWER(firms.slug) LIKE ?", like, like)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("firms.status = ?", strings.ToLower(status))
	}
	if tier := strings.TrimSpace(filter.Tier); tier != "" {
		query = query.Where("firms.tier = ?", tier)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	result.finish(total)

	if err := query.
		Preload("Offices.State").
		Order("firms.updated_at desc, firms.id desc").
		Limit(result.PerPage).
		Offset(result.offset()).
		Find(&result.Firms).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Get fetches a firm by id with its relations.
func (s *FirmService) Get(id uint) (*db.Firm, error) {
	var firm db.Firm
	if err := s.withRelations(s.db).First(&firm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFirmNotFound
		}
		return nil, err
	}
	return &firm, nil
}

// GetBySlug fetches a firm by slug; publishedOnly hides drafts.
func (s *FirmService) GetBySlug(slugValue string, publishedOnly bool) (*db.Firm, error) {
	query := s.withRelations(s.db).Where("slug = ?", strings.TrimSpace(slugValue))
	if publishedOnly {
		query = query.Where("status = ?", db.StatusPublished)
	}

	var firm db.Firm
	if err := query.First(&firm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFirmNotFound
		}
		return nil, err
	}
	return &firm, nil
}

// Featured returns published featured firms for the home page.
func (s *FirmService) Featured(limit int) ([]db.Firm, error) {
	if limit <= 0 {
		limit = 6
	}
	var firms []db.Firm
	if err := s.db.
		Preload("Offices.State").
		Preload("PracticeAreas").
		Where("status = ? AND featured = ?", db.StatusPublished, true).
		Order("name asc").
		Limit(limit).
		Find(&firms).Error; err != nil {
		return nil, err
	}
	return firms, nil
}

// Create persists a firm and associates practice areas in a transaction.
func (s *FirmService) Create(input FirmInput) (*db.Firm, error) {
	firm := db.Firm{}
	if err := s.apply(&firm, input); err != nil {
		return nil, err
	}
	return s.saveWithPracticeAreas(&firm, input.PracticeAreaIDs)
}

// Update applies updates to an existing firm.
func (s *FirmService) Update(id uint, input FirmInput) (*db.Firm, error) {
	var existing db.Firm
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFirmNotFound
		}
		return nil, err
	}

	if err := s.apply(&existing, input); err != nil {
		return nil, err
	}
	return s.saveWithPracticeAreas(&existing, input.PracticeAreaIDs)
}

// SetLogo records an uploaded logo and returns the previous URL.
func (s *FirmService) SetLogo(id uint, url string, width, height int) (string, error) {
	var firm db.Firm
	if err := s.db.First(&firm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrFirmNotFound
		}
		return "", err
	}

	previous := firm.LogoURL
	if err := s.db.Model(&firm).Updates(map[string]interface{}{
		"logo_url":    url,
		"logo_width":  width,
		"logo_height": height,
	}).Error; err != nil {
		return "", err
	}
	return previous, nil
}

// Delete removes the firm together with its offices and lawyers.
func (s *FirmService) Delete(id uint) error {
	var firm db.Firm
	if err := s.db.First(&firm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFirmNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Lead{}).Where("firm_id = ?", id).Update("firm_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.Nomination{}).Where("firm_id = ?", id).Update("firm_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM lawyer_practice_areas WHERE lawyer_id IN (SELECT id FROM lawyers WHERE firm_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("firm_id = ?", id).Delete(&db.Lawyer{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("firm_id = ?", id).Delete(&db.Office{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&firm).Association("PracticeAreas").Clear(); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM firm_visits WHERE firm_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM firm_statistics WHERE firm_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&firm).Error
	})
}

// CountByStatus returns the number of firms per status.
func (s *FirmService) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&db.Firm{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{db.StatusDraft: 0, db.StatusPublished: 0}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (s *FirmService) apply(firm *db.Firm, input FirmInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrFirmNameRequired
	}

	contact := firmContact{
		Website: strings.TrimSpace(input.Website),
		Email:   strings.TrimSpace(input.Email),
		Founded: input.FoundedYear,
	}
	if err := validate.Struct(contact); err != nil {
		return ErrFirmContact
	}

	status, err := normalizePublishStatus(input.Status)
	if err != nil {
		return err
	}

	tier, err := s.resolveTier(firm.Tier, input.Tier)
	if err != nil {
		return err
	}

	slugValue, err := resolveSlug(s.db, &db.Firm{}, input.Slug, name, firm.ID)
	if err != nil {
		return err
	}

	firm.Name = name
	firm.Slug = slugValue
	firm.Summary = strings.TrimSpace(input.Summary)
	firm.Description = strings.TrimSpace(input.Description)
	firm.Website = contact.Website
	firm.Email = contact.Email
	firm.Phone = strings.TrimSpace(input.Phone)
	firm.Tier = tier
	firm.Status = status
	firm.Featured = input.Featured
	firm.FoundedYear = input.FoundedYear
	if firm.Summary == "" {
		firm.Summary = summarizeContent(firm.Description, 160)
	}
	return nil
}

// resolveTier 只校验显式提交的档位；未提交时沿用当前档位，新建则取定价中排序最低的档位。
func (s *FirmService) resolveTier(current, requested string) (string, error) {
	tier := strings.ToLower(strings.TrimSpace(requested))
	switch {
	case tier == "" && current != "":
		return current, nil
	case tier == "":
		return s.defaultTier()
	case tier == current || s.tiers == nil:
		return tier, nil
	}

	ok, err := s.tiers.HasTier(tier)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrTierUnknown
	}
	return tier, nil
}

func (s *FirmService) defaultTier() (string, error) {
	if s.tiers == nil {
		return db.DefaultTier, nil
	}
	tier, err := s.tiers.DefaultTier()
	if err != nil {
		return "", err
	}
	if tier == "" {
		return db.DefaultTier, nil
	}
	return tier, nil
}

// withDB returns a copy of the service bound to tx.
func (s *FirmService) withDB(tx *gorm.DB) *FirmService {
	return &FirmService{db: tx, tiers: s.tiers}
}

func (s *FirmService) saveWithPracticeAreas(firm *db.Firm, practiceAreaIDs []uint) (*db.Firm, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		areas, err := findPracticeAreas(tx, practiceAreaIDs)
		if err != nil {
			return err
		}

		if err := tx.Omit("PracticeAreas", "Offices", "Lawyers").Save(firm).Error; err != nil {
			return translateWriteError(err)
		}

		if err := tx.Model(firm).Association("PracticeAreas").Replace(areas); err != nil {
			return err
		}

		return s.withRelations(tx).First(firm, firm.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return firm, nil
}

func (s *FirmService) withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("PracticeAreas", func(q *gorm.DB) *gorm.DB { return q.Order("sort_order asc, name asc") }).
		Preload("Offices", func(q *gorm.DB) *gorm.DB { return q.Order("headquarters desc, id asc") }).
		Preload("Offices.State").
		Preload("Offices.Metro").
		Preload("Lawyers", func(q *gorm.DB) *gorm.DB { return q.Order("last_name asc, first_name asc") })
}
