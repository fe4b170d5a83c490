package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/firmdirectory/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotificationEmailInvalid 通知邮箱格式不正确。
var ErrNotificationEmailInvalid = errors.New("notification email is invalid")

// SystemSettings 描述后台可配置的系统信息。
type SystemSettings struct {
	SiteName          string `json:"siteName"`
	Tagline           string `json:"tagline"`
	NotificationEmail string `json:"notificationEmail"`
}

// SystemSettingsInput 用于更新系统设置。
type SystemSettingsInput struct {
	SiteName          string
	Tagline           string
	NotificationEmail string
}

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db       *gorm.DB
	defaults SystemSettings
}

// NewSystemSettingService 构造 SystemSettingService，defaults 用于未保存的字段。
func NewSystemSettingService(gdb *gorm.DB, defaults SystemSettings) *SystemSettingService {
	if strings.TrimSpace(defaults.SiteName) == "" {
		defaults.SiteName = "Law Firm Directory"
	}
	return &SystemSettingService{db: gdb, defaults: defaults}
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeyTagline,
	db.SettingKeyNotificationEmail,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := s.defaults

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		switch record.Key {
		case db.SettingKeySiteName:
			result.SiteName = value
		case db.SettingKeyTagline:
			result.Tagline = value
		case db.SettingKeyNotificationEmail:
			result.NotificationEmail = value
		}
	}

	return result, nil
}

// AdminAddress returns where admin alerts go; empty disables them.
func (s *SystemSettingService) AdminAddress() string {
	settings, err := s.GetSettings()
	if err != nil {
		return s.defaults.NotificationEmail
	}
	return settings.NotificationEmail
}

// SiteName returns the configured site name.
func (s *SystemSettingService) SiteName() string {
	settings, err := s.GetSettings()
	if err != nil {
		return s.defaults.SiteName
	}
	return settings.SiteName
}

// UpdateSettings 保存系统设置，空值回退到默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	sanitized := SystemSettings{
		SiteName:          strings.TrimSpace(input.SiteName),
		Tagline:           strings.TrimSpace(input.Tagline),
		NotificationEmail: strings.TrimSpace(input.NotificationEmail),
	}
	if sanitized.NotificationEmail != "" {
		if err := validate.Var(sanitized.NotificationEmail, "email"); err != nil {
			return SystemSettings{}, ErrNotificationEmailInvalid
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeySiteName, sanitized.SiteName); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyTagline, sanitized.Tagline); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeyNotificationEmail, sanitized.NotificationEmail)
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return s.GetSettings()
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
