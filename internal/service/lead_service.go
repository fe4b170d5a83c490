package service

import (
	"errors"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrLeadStatusInvalid = errors.New("lead status must be new, contacted or closed")
)

// LeadInput 访客联系表单字段。FirmSlug 为空时线索归属站点本身。
type LeadInput struct {
	FirmSlug     string `json:"firmSlug" form:"firmSlug"`
	Name         string `json:"name" form:"name" validate:"required,max=120"`
	Email        string `json:"email" form:"email" validate:"required,email,max=255"`
	Phone        string `json:"phone" form:"phone" validate:"required_without=Message,max=50"`
	PracticeArea string `json:"practiceArea" form:"practiceArea" validate:"max=120"`
	City         string `json:"city" form:"city" validate:"max=120"`
	StateCode    string `json:"stateCode" form:"stateCode" validate:"omitempty,len=2,alpha"`
	Message      string `json:"message" form:"message" validate:"max=5000"`
	Source       string `json:"source" form:"source" validate:"max=120"`
}

func (in *LeadInput) trim() {
	in.FirmSlug = strings.TrimSpace(in.FirmSlug)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.PracticeArea = strings.TrimSpace(in.PracticeArea)
	in.City = strings.TrimSpace(in.City)
	in.StateCode = strings.ToUpper(strings.TrimSpace(in.StateCode))
	in.Message = strings.TrimSpace(in.Message)
	in.Source = strings.TrimSpace(in.Source)
}

// LeadFilter describes filters for the admin lead listing.
type LeadFilter struct {
	Status  string
	FirmID  uint
	Page    int
	PerPage int
}

// LeadListResult aggregates paginated leads.
type LeadListResult struct {
	Leads []db.Lead `json:"leads"`
	Pagination
}

// LeadService 保存与管理访客线索。
type LeadService struct {
	db *gorm.DB
}

// NewLeadService creates a LeadService.
func NewLeadService(gdb *gorm.DB) *LeadService {
	return &LeadService{db: gdb}
}

// Submit validates and stores a new lead. The returned lead has Firm loaded when a firm slug was given.
func (s *LeadService) Submit(input LeadInput) (*db.Lead, error) {
	input.trim()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	lead := db.Lead{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PracticeArea: input.PracticeArea,
		City:         input.City,
		StateCode:    input.StateCode,
		Message:      input.Message,
		Source:       input.Source,
		Status:       db.LeadNew,
	}

	var firm *db.Firm
	if input.FirmSlug != "" {
		var found db.Firm
		if err := s.db.
			Where("slug = ? AND status = ?", input.FirmSlug, db.StatusPublished).
			First(&found).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrFirmNotFound
			}
			return nil, err
		}
		firm = &found
		lead.FirmID = &found.ID
	}

	if err := s.db.Omit("Firm").Create(&lead).Error; err != nil {
		return nil, err
	}
	lead.Firm = firm
	return &lead, nil
}

// List returns leads newest first.
func (s *LeadService) List(filter LeadFilter) (*LeadListResult, error) {
	result := &LeadListResult{Pagination: newPagination(filter.Page, filter.PerPage, 20, 100)}

	query := s.db.Model(&db.Lead{})
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.FirmID > 0 {
		query = query.Where("firm_id = ?", filter.FirmID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	result.finish(total)

	if err := query.
		Preload("Firm").
		Order("created_at desc, id desc").
		Limit(result.PerPage).
		Offset(result.offset()).
		Find(&result.Leads).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus moves a lead through new, contacted and closed.
func (s *LeadService) UpdateStatus(id uint, status string) (*db.Lead, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case db.LeadNew, db.LeadContacted, db.LeadClosed:
	default:
		return nil, ErrLeadStatusInvalid
	}

	result := s.db.Model(&db.Lead{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLeadNotFound
	}

	var lead db.Lead
	if err := s.db.Preload("Firm").First(&lead, id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// Delete removes a lead.
func (s *LeadService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.Lead{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// CountNew returns the number of unhandled leads.
func (s *LeadService) CountNew() (int64, error) {
	var count int64
	err := s.db.Model(&db.Lead{}).Where("status = ?", db.LeadNew).Count(&count).Error
	return count, err
}
