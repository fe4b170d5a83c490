package service

import (
	"errors"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPracticeAreaNameRequired = errors.New("practice area name is required")
	ErrPracticeAreaInUse        = errors.New("practice area is associated with firms")
	ErrPracticeAreaNotFound     = errors.New("practice area not found")
	ErrPracticeAreaOrder        = errors.New("invalid practice area order")
)

// PracticeAreaService wraps practice area related operations.
type PracticeAreaService struct {
	db *gorm.DB
}

// PracticeAreaInput 创建或更新业务领域时的字段
type PracticeAreaInput struct {
	Name        string
	Slug        string
	Description string
}

// NewPracticeAreaService creates a PracticeAreaService instance.
func NewPracticeAreaService(gdb *gorm.DB) *PracticeAreaService {
	return &PracticeAreaService{db: gdb}
}

// List returns practice areas in configured order with the number of published firms in each.
func (s *PracticeAreaService) List() ([]db.PracticeArea, error) {
	var areas []db.PracticeArea
	if err := s.db.
		Model(&db.PracticeArea{}).
		Select("practice_areas.*, COUNT(DISTINCT firms.id) AS firm_count").
		Joins("LEFT JOIN firm_practice_areas ON firm_practice_areas.practice_area_id = practice_areas.id").
		Joins("LEFT JOIN firms ON firms.id = firm_practice_areas.firm_id AND firms.status = ? AND firms.deleted_at IS NULL", db.StatusPublished).
		Group("practice_areas.id").
		Order("practice_areas.sort_order asc").
		Order("practice_areas.name asc").
		Order("practice_areas.id asc").
		Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// Get fetches a practice area by id.
func (s *PracticeAreaService) Get(id uint) (*db.PracticeArea, error) {
	var area db.PracticeArea
	if err := s.db.First(&area, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPracticeAreaNotFound
		}
		return nil, err
	}
	return &area, nil
}

// GetBySlug fetches a practice area by slug.
func (s *PracticeAreaService) GetBySlug(slug string) (*db.PracticeArea, error) {
	var area db.PracticeArea
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPracticeAreaNotFound
		}
		return nil, err
	}
	return &area, nil
}

// Create inserts a new practice area with a unique slug at the end of the order.
func (s *PracticeAreaService) Create(input PracticeAreaInput) (*db.PracticeArea, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPracticeAreaNameRequired
	}

	slugValue, err := resolveSlug(s.db, &db.PracticeArea{}, input.Slug, name, 0)
	if err != nil {
		return nil, err
	}

	sortOrder, err := s.nextSortOrder()
	if err != nil {
		return nil, err
	}

	area := db.PracticeArea{
		Name:        name,
		Slug:        slugValue,
		Description: strings.TrimSpace(input.Description),
		SortOrder:   sortOrder,
	}
	if err := s.db.Create(&area).Error; err != nil {
		return nil, translateWriteError(err)
	}

	return &area, nil
}

// Update changes name, slug and description while keeping the slug unique.
func (s *PracticeAreaService) Update(id uint, input PracticeAreaInput) (*db.PracticeArea, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPracticeAreaNameRequired
	}

	area, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	slugValue, err := resolveSlug(s.db, &db.PracticeArea{}, input.Slug, name, id)
	if err != nil {
		return nil, err
	}

	area.Name = name
	area.Slug = slugValue
	area.Description = strings.TrimSpace(input.Description)
	if err := s.db.Save(area).Error; err != nil {
		return nil, translateWriteError(err)
	}

	count, err := s.firmUsageCount(area.ID)
	if err != nil {
		return nil, err
	}
	area.FirmCount = count

	return area, nil
}

// Delete removes a practice area if no firm lists it.
func (s *PracticeAreaService) Delete(id uint) error {
	area, err := s.Get(id)
	if err != nil {
		return err
	}

	count, err := s.firmUsageCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPracticeAreaInUse
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM lawyer_practice_areas WHERE practice_area_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.BlogPost{}).
			Where("practice_area_id = ?", id).
			Update("practice_area_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(area).Error
	})
}

// Reorder updates sort order based on the provided ids sequence.
func (s *PracticeAreaService) Reorder(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return ErrPracticeAreaOrder
		}
		if _, ok := seen[id]; ok {
			return ErrPracticeAreaOrder
		}
		seen[id] = struct{}{}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for idx, id := range ids {
			result := tx.Model(&db.PracticeArea{}).Where("id = ?", id).Update("sort_order", idx)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrPracticeAreaNotFound
			}
		}
		return nil
	})
}

// FindByIDs loads every id or fails with ErrPracticeAreaNotFound.
func (s *PracticeAreaService) FindByIDs(ids []uint) ([]db.PracticeArea, error) {
	return findPracticeAreas(s.db, ids)
}

func findPracticeAreas(tx *gorm.DB, ids []uint) ([]db.PracticeArea, error) {
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return []db.PracticeArea{}, nil
	}

	var areas []db.PracticeArea
	if err := tx.Where("id IN ?", unique).Find(&areas).Error; err != nil {
		return nil, err
	}
	if len(areas) != len(unique) {
		return nil, ErrPracticeAreaNotFound
	}
	return areas, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *PracticeAreaService) firmUsageCount(id uint) (int64, error) {
	var count int64
	if err := s.db.Table("firm_practice_areas").
		Where("practice_area_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PracticeAreaService) nextSortOrder() (int, error) {
	var maxSort int
	if err := s.db.Model(&db.PracticeArea{}).Select("COALESCE(MAX(sort_order), -1)").Scan(&maxSort).Error; err != nil {
		return 0, err
	}
	return maxSort + 1, nil
}
