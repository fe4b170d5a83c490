package service

import (
	"errors"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrLawyerNotFound     = errors.New("lawyer not found")
	ErrLawyerNameRequired = errors.New("lawyer first and last name are required")
	ErrLawyerEmailInvalid = errors.New("lawyer email is invalid")
)

// LawyerService wraps lawyer related database operations.
type LawyerService struct {
	db *gorm.DB
}

// LawyerFilter describes filters for the admin lawyer listing.
type LawyerFilter struct {
	FirmID  uint
	Search  string
	Page    int
	PerPage int
}

// LawyerListResult aggregates paginated lawyers.
type LawyerListResult struct {
	Lawyers []db.Lawyer `json:"lawyers"`
	Pagination
}

// LawyerInput represents fields accepted when creating or updating a lawyer.
type LawyerInput struct {
	FirmID          uint
	FirstName       string
	LastName        string
	Slug            string
	Title           string
	Email           string
	Phone           string
	Bio             string
	PhotoURL        string
	BarAdmissions   string
	PracticeAreaIDs []uint
}

// NewLawyerService creates a LawyerService.
func NewLawyerService(gdb *gorm.DB) *LawyerService {
	return &LawyerService{db: gdb}
}

// List returns lawyers, optionally scoped to a firm and a name search.
func (s *LawyerService) List(filter LawyerFilter) (*LawyerListResult, error) {
	result := &LawyerListResult{Pagination: newPagination(filter.Page, filter.PerPage, 20, 100)}

	query := s.db.Model(&db.Lawyer{})
	if filter.FirmID > 0 {
		query = query.Where("lawyers.firm_id = ?", filter.FirmID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := likePattern(search)
		query = query.Where("LOWER(lawyers.first_name || ' ' || lawyers.last_name) LIKE ? OR LOWER(lawyers.title) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	result.finish(total)

	if err := query.
		Preload("Firm").
		Preload("PracticeAreas").
		Order("lawyers.last_name asc, lawyers.first_name asc, lawyers.id asc").
		Limit(result.PerPage).
		Offset(result.offset()).
		Find(&result.Lawyers).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Get fetches a lawyer by id.
func (s *LawyerService) Get(id uint) (*db.Lawyer, error) {
	var lawyer db.Lawyer
	if err := s.withRelations(s.db).First(&lawyer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLawyerNotFound
		}
		return nil, err
	}
	return &lawyer, nil
}

// GetBySlug fetches a lawyer by slug; publishedOnly requires the firm to be published.
func (s *LawyerService) GetBySlug(slugValue string, publishedOnly bool) (*db.Lawyer, error) {
	query := s.withRelations(s.db).Where("lawyers.slug = ?", strings.TrimSpace(slugValue))
	if publishedOnly {
		query = query.
			Joins("JOIN firms ON firms.id = lawyers.firm_id AND firms.deleted_at IS NULL").
			Where("firms.status = ?", db.StatusPublished)
	}

	var lawyer db.Lawyer
	if err := query.First(&lawyer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLawyerNotFound
		}
		return nil, err
	}
	return &lawyer, nil
}

// Create persists a lawyer for an existing firm.
func (s *LawyerService) Create(input LawyerInput) (*db.Lawyer, error) {
	lawyer := db.Lawyer{}
	if err := s.apply(&lawyer, input); err != nil {
		return nil, err
	}
	return s.save(&lawyer, input.PracticeAreaIDs)
}

// Update applies updates to an existing lawyer.
func (s *LawyerService) Update(id uint, input LawyerInput) (*db.Lawyer, error) {
	var lawyer db.Lawyer
	if err := s.db.First(&lawyer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLawyerNotFound
		}
		return nil, err
	}

	if err := s.apply(&lawyer, input); err != nil {
		return nil, err
	}
	return s.save(&lawyer, input.PracticeAreaIDs)
}

// Delete removes a lawyer and its practice area links.
func (s *LawyerService) Delete(id uint) error {
	var lawyer db.Lawyer
	if err := s.db.First(&lawyer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLawyerNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&lawyer).Association("PracticeAreas").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&lawyer).Error
	})
}

func (s *LawyerService) apply(lawyer *db.Lawyer, input LawyerInput) error {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" || last == "" {
		return ErrLawyerNameRequired
	}

	email := strings.TrimSpace(input.Email)
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return ErrLawyerEmailInvalid
		}
	}

	if err := ensureFirmExists(s.db, input.FirmID); err != nil {
		return err
	}

	slugValue, err := resolveSlug(s.db, &db.Lawyer{}, input.Slug, first+" "+last, lawyer.ID)
	if err != nil {
		return err
	}

	lawyer.FirmID = input.FirmID
	lawyer.FirstName = first
	lawyer.LastName = last
	lawyer.Slug = slugValue
	lawyer.Title = strings.TrimSpace(input.Title)
	lawyer.Email = email
	lawyer.Phone = strings.TrimSpace(input.Phone)
	lawyer.Bio = strings.TrimSpace(input.Bio)
	lawyer.PhotoURL = strings.TrimSpace(input.PhotoURL)
	lawyer.BarAdmissions = strings.TrimSpace(input.BarAdmissions)
	return nil
}

func (s *LawyerService) save(lawyer *db.Lawyer, practiceAreaIDs []uint) (*db.Lawyer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		areas, err := findPracticeAreas(tx, practiceAreaIDs)
		if err != nil {
			return err
		}

		if err := tx.Omit("PracticeAreas", "Firm").Save(lawyer).Error; err != nil {
			return translateWriteError(err)
		}
		if err := tx.Model(lawyer).Association("PracticeAreas").Replace(areas); err != nil {
			return err
		}
		return s.withRelations(tx).First(lawyer, lawyer.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return lawyer, nil
}

func (s *LawyerService) withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Firm").
		Preload("Firm.Offices.State").
		Preload("PracticeAreas", func(q *gorm.DB) *gorm.DB { return q.Order("sort_order asc, name asc") })
}
