package service

import (
	"errors"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrOfficeNotFound     = errors.New("office not found")
	ErrOfficeCityRequired = errors.New("office city is required")
	ErrOfficeStateMissing = errors.New("office state is required")
)

// OfficeService manages the offices of a firm.
type OfficeService struct {
	db *gorm.DB
}

// OfficeInput represents fields accepted when creating or updating an office.
type OfficeInput struct {
	Label        string
	Street       string
	City         string
	Zip          string
	Phone        string
	StateID      uint
	MetroID      *uint
	Headquarters bool
}

// NewOfficeService creates an OfficeService.
func NewOfficeService(gdb *gorm.DB) *OfficeService {
	return &OfficeService{db: gdb}
}

// ListByFirm returns the offices of a firm, headquarters first.
func (s *OfficeService) ListByFirm(firmID uint) ([]db.Office, error) {
	if err := ensureFirmExists(s.db, firmID); err != nil {
		return nil, err
	}

	var offices []db.Office
	if err := s.db.
		Preload("State").
		Preload("Metro").
		Where("firm_id = ?", firmID).
		Order("headquarters desc, id asc").
		Find(&offices).Error; err != nil {
		return nil, err
	}
	return offices, nil
}

// Get fetches an office by id.
func (s *OfficeService) Get(id uint) (*db.Office, error) {
	var office db.Office
	if err := s.db.Preload("State").Preload("Metro").First(&office, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficeNotFound
		}
		return nil, err
	}
	return &office, nil
}

// Create adds an office to a firm.
func (s *OfficeService) Create(firmID uint, input OfficeInput) (*db.Office, error) {
	if err := ensureFirmExists(s.db, firmID); err != nil {
		return nil, err
	}

	office := db.Office{FirmID: firmID}
	if err := s.apply(&office, input); err != nil {
		return nil, err
	}
	return s.save(&office)
}

// Update changes an existing office.
func (s *OfficeService) Update(id uint, input OfficeInput) (*db.Office, error) {
	var office db.Office
	if err := s.db.First(&office, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficeNotFound
		}
		return nil, err
	}

	if err := s.apply(&office, input); err != nil {
		return nil, err
	}
	return s.save(&office)
}

// Delete removes an office.
func (s *OfficeService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.Office{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfficeNotFound
	}
	return nil
}

func (s *OfficeService) apply(office *db.Office, input OfficeInput) error {
	city := strings.TrimSpace(input.City)
	if city == "" {
		return ErrOfficeCityRequired
	}
	if input.StateID == 0 {
		return ErrOfficeStateMissing
	}

	var state db.State
	if err := s.db.First(&state, input.StateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStateNotFound
		}
		return err
	}

	var metroID *uint
	if input.MetroID != nil && *input.MetroID > 0 {
		var metro db.Metro
		if err := s.db.First(&metro, *input.MetroID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMetroNotFound
			}
			return err
		}
		if metro.StateID != state.ID {
			return ErrMetroMismatch
		}
		id := metro.ID
		metroID = &id
	}

	office.Label = strings.TrimSpace(input.Label)
	office.Street = strings.TrimSpace(input.Street)
	office.City = city
	office.Zip = strings.TrimSpace(input.Zip)
	office.Phone = strings.TrimSpace(input.Phone)
	office.StateID = state.ID
	office.MetroID = metroID
	office.Headquarters = input.Headquarters
	return nil
}

func (s *OfficeService) save(office *db.Office) (*db.Office, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if office.Headquarters {
			query := tx.Model(&db.Office{}).Where("firm_id = ? AND headquarters = ?", office.FirmID, true)
			if office.ID > 0 {
				query = query.Where("id <> ?", office.ID)
			}
			if err := query.Update("headquarters", false).Error; err != nil {
				return err
			}
		}

		if err := tx.Omit("State", "Metro").Save(office).Error; err != nil {
			return err
		}
		return tx.Preload("State").Preload("Metro").First(office, office.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return office, nil
}

func ensureFirmExists(gdb *gorm.DB, firmID uint) error {
	if firmID == 0 {
		return ErrFirmNotFound
	}
	var count int64
	if err := gdb.Model(&db.Firm{}).Where("id = ?", firmID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrFirmNotFound
	}
	return nil
}
