package service

import (
	"errors"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound       = errors.New("page not found")
	ErrPageTitleRequired  = errors.New("page title is required")
	ErrPageContentMissing = errors.New("page content is required")
)

// PageService provides access to static pages such as About or Terms.
type PageService struct {
	db *gorm.DB
}

// PageInput represents fields accepted when creating or updating a page.
type PageInput struct {
	Title     string
	Slug      string
	Summary   string
	Content   string
	Published bool
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// List returns pages ordered by title; publishedOnly hides drafts.
func (s *PageService) List(publishedOnly bool) ([]db.Page, error) {
	query := s.db.Order("title asc, id asc")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var pages []db.Page
	if err := query.Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Get fetches a page by id.
func (s *PageService) Get(id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetBySlug fetches a page for a given slug.
func (s *PageService) GetBySlug(slugValue string, publishedOnly bool) (*db.Page, error) {
	query := s.db.Where("slug = ?", strings.TrimSpace(slugValue))
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var page db.Page
	if err := query.First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// Create inserts a page.
func (s *PageService) Create(input PageInput) (*db.Page, error) {
	page := db.Page{}
	if err := s.apply(&page, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&page).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return &page, nil
}

// Update changes an existing page.
func (s *PageService) Update(id uint, input PageInput) (*db.Page, error) {
	page, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(page, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(page).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return page, nil
}

// Delete removes a page.
func (s *PageService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.Page{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

func (s *PageService) apply(page *db.Page, input PageInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrPageTitleRequired
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return ErrPageContentMissing
	}

	slugValue, err := resolveSlug(s.db, &db.Page{}, input.Slug, title, page.ID)
	if err != nil {
		return err
	}

	summary := strings.TrimSpace(input.Summary)
	if summary == "" {
		summary = summarizeContent(content, 120)
	}

	page.Title = title
	page.Slug = slugValue
	page.Summary = summary
	page.Content = content
	page.Published = input.Published
	return nil
}
