package service

import (
	"errors"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrStateNotFound     = errors.New("state not found")
	ErrStateInvalid      = errors.New("state name and two-letter code are required")
	ErrStateCodeTaken    = errors.New("state code already in use")
	ErrMetroNotFound     = errors.New("metro not found")
	ErrMetroNameRequired = errors.New("metro name is required")
	ErrMetroMismatch     = errors.New("metro does not belong to state")
)

// LocationService 管理州与都市区数据。
type LocationService struct {
	db *gorm.DB
}

// NewLocationService creates a LocationService.
func NewLocationService(gdb *gorm.DB) *LocationService {
	return &LocationService{db: gdb}
}

// ListStates returns every state with its metros, alphabetically.
func (s *LocationService) ListStates() ([]db.State, error) {
	var states []db.State
	if err := s.db.
		Preload("Metros", func(tx *gorm.DB) *gorm.DB { return tx.Order("name asc") }).
		Order("name asc").
		Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// GetStateBySlug resolves a state by two-letter code or slug.
func (s *LocationService) GetStateBySlug(codeOrSlug string) (*db.State, error) {
	return findState(s.db, codeOrSlug)
}

func findState(gdb *gorm.DB, codeOrSlug string) (*db.State, error) {
	value := strings.TrimSpace(codeOrSlug)
	if value == "" {
		return nil, ErrStateNotFound
	}

	var state db.State
	err := gdb.
		Preload("Metros", func(tx *gorm.DB) *gorm.DB { return tx.Order("name asc") }).
		Where("code = ? OR slug = ?", strings.ToUpper(value), strings.ToLower(value)).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, err
	}
	return &state, nil
}

// GetState fetches a state by id.
func (s *LocationService) GetState(id uint) (*db.State, error) {
	var state db.State
	if err := s.db.First(&state, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, err
	}
	return &state, nil
}

// GetMetroBySlug resolves a metro by slug, optionally requiring it to sit in stateID.
func (s *LocationService) GetMetroBySlug(stateID uint, metroSlug string) (*db.Metro, error) {
	var metro db.Metro
	query := s.db.Preload("State").Where("slug = ?", strings.ToLower(strings.TrimSpace(metroSlug)))
	if stateID > 0 {
		query = query.Where("state_id = ?", stateID)
	}
	if err := query.First(&metro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMetroNotFound
		}
		return nil, err
	}
	return &metro, nil
}

// CreateState inserts a state; the code is stored upper-case.
func (s *LocationService) CreateState(name, code, slugValue string) (*db.State, error) {
	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" || len(code) != 2 {
		return nil, ErrStateInvalid
	}

	var existing int64
	if err := s.db.Model(&db.State{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrStateCodeTaken
	}

	resolved, err := resolveSlug(s.db, &db.State{}, slugValue, name, 0)
	if err != nil {
		return nil, err
	}

	state := db.State{Name: name, Code: code, Slug: resolved}
	if err := s.db.Create(&state).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return &state, nil
}

// CreateMetro adds a metro to an existing state.
func (s *LocationService) CreateMetro(stateID uint, name, slugValue string) (*db.Metro, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMetroNameRequired
	}

	state, err := s.GetState(stateID)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveSlug(s.db, &db.Metro{}, slugValue, name+" "+state.Code, 0)
	if err != nil {
		return nil, err
	}

	metro := db.Metro{Name: name, Slug: resolved, StateID: state.ID}
	if err := s.db.Create(&metro).Error; err != nil {
		return nil, translateWriteError(err)
	}
	metro.State = state
	return &metro, nil
}

// DeleteMetro removes a metro and detaches offices that pointed at it.
func (s *LocationService) DeleteMetro(id uint) error {
	var metro db.Metro
	if err := s.db.First(&metro, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMetroNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Office{}).Where("metro_id = ?", id).Update("metro_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&metro).Error
	})
}
