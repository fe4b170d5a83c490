package service

import (
	"errors"
	"strings"
	"time"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
)

var (
	ErrNominationNotFound    = errors.New("nomination not found")
	ErrNominationStatus      = errors.New("review status must be approved or rejected")
	ErrNominationNotApproved = errors.New("only approved nominations can be converted")
	ErrNominationConverted   = errors.New("nomination already converted")
)

// NominationInput 公开提名表单字段。
type NominationInput struct {
	FirmName       string `json:"firmName" form:"firmName" validate:"required,max=200"`
	FirmWebsite    string `json:"firmWebsite" form:"firmWebsite" validate:"omitempty,http_url,max=255"`
	City           string `json:"city" form:"city" validate:"max=120"`
	StateCode      string `json:"stateCode" form:"stateCode" validate:"omitempty,len=2,alpha"`
	PracticeArea   string `json:"practiceArea" form:"practiceArea" validate:"max=120"`
	NominatorName  string `json:"nominatorName" form:"nominatorName" validate:"required,max=120"`
	NominatorEmail string `json:"nominatorEmail" form:"nominatorEmail" validate:"required,email,max=255"`
	NominatorPhone string `json:"nominatorPhone" form:"nominatorPhone" validate:"max=50"`
	Relationship   string `json:"relationship" form:"relationship" validate:"max=120"`
	Reason         string `json:"reason" form:"reason" validate:"required,max=5000"`
}

func (in *NominationInput) trim() {
	in.FirmName = strings.TrimSpace(in.FirmName)
	in.FirmWebsite = strings.TrimSpace(in.FirmWebsite)
	in.City = strings.TrimSpace(in.City)
	in.StateCode = strings.ToUpper(strings.TrimSpace(in.StateCode))
	in.PracticeArea = strings.TrimSpace(in.PracticeArea)
	in.NominatorName = strings.TrimSpace(in.NominatorName)
	in.NominatorEmail = strings.TrimSpace(in.NominatorEmail)
	in.NominatorPhone = strings.TrimSpace(in.NominatorPhone)
	in.Relationship = strings.TrimSpace(in.Relationship)
	in.Reason = strings.TrimSpace(in.Reason)
}

// NominationListResult aggregates paginated nominations.
type NominationListResult struct {
	Nominations []db.Nomination `json:"nominations"`
	Pagination
}

// NominationService 处理提名的提交与审核。
type NominationService struct {
	db    *gorm.DB
	firms *FirmService
	now   func() time.Time
}

// NewNominationService creates a NominationService; firms is used by Convert.
func NewNominationService(gdb *gorm.DB, firms *FirmService) *NominationService {
	return &NominationService{db: gdb, firms: firms, now: time.Now}
}

// Submit validates and stores a pending nomination.
func (s *NominationService) Submit(input NominationInput) (*db.Nomination, error) {
	input.trim()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	nomination := db.Nomination{
		FirmName:       input.FirmName,
		FirmWebsite:    input.FirmWebsite,
		City:           input.City,
		StateCode:      input.StateCode,
		PracticeArea:   input.PracticeArea,
		NominatorName:  input.NominatorName,
		NominatorEmail: input.NominatorEmail,
		NominatorPhone: input.NominatorPhone,
		Relationship:   input.Relationship,
		Reason:         input.Reason,
		Status:         db.NominationPending,
	}
	if err := s.db.Create(&nomination).Error; err != nil {
		return nil, err
	}
	return &nomination, nil
}

// List returns nominations newest first, optionally filtered by status.
func (s *NominationService) List(status string, page, perPage int) (*NominationListResult, error) {
	result := &NominationListResult{Pagination: newPagination(page, perPage, 20, 100)}

	query := s.db.Model(&db.Nomination{})
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	result.finish(total)

	if err := query.
		Order("created_at desc, id desc").
		Limit(result.PerPage).
		Offset(result.offset()).
		Find(&result.Nominations).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Get fetches a nomination by id.
func (s *NominationService) Get(id uint) (*db.Nomination, error) {
	var nomination db.Nomination
	if err := s.db.First(&nomination, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNominationNotFound
		}
		return nil, err
	}
	return &nomination, nil
}

// Review approves or rejects a nomination.
func (s *NominationService) Review(id uint, status, note string) (*db.Nomination, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != db.NominationApproved && status != db.NominationRejected {
		return nil, ErrNominationStatus
	}

	nomination, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	nomination.Status = status
	nomination.ReviewNote = strings.TrimSpace(note)
	nomination.ReviewedAt = &now
	if err := s.db.Save(nomination).Error; err != nil {
		return nil, err
	}
	return nomination, nil
}

// Convert creates a draft firm from an approved nomination and links it in one transaction.
func (s *NominationService) Convert(id uint) (*db.Firm, error) {
	nomination, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if nomination.Status != db.NominationApproved {
		return nil, ErrNominationNotApproved
	}
	if nomination.FirmID != nil {
		return nil, ErrNominationConverted
	}

	var firm *db.Firm
	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.firms.withDB(tx).Create(FirmInput{
			Name:        nomination.FirmName,
			Website:     nomination.FirmWebsite,
			Description: nomination.Reason,
			Status:      db.StatusDraft,
		})
		if err != nil {
			return err
		}
		if err := tx.Model(nomination).Update("firm_id", created.ID).Error; err != nil {
			return err
		}
		firm = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return firm, nil
}

// Delete removes a nomination.
func (s *NominationService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.Nomination{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNominationNotFound
	}
	return nil
}

// CountPending returns the number of nominations awaiting review.
func (s *NominationService) CountPending() (int64, error) {
	var count int64
	err := s.db.Model(&db.Nomination{}).Where("status = ?", db.NominationPending).Count(&count).Error
	return count, err
}
