package service

import (
	"errors"
	"testing"
)

func TestSystemSettingServiceDefaultsAndUpdate(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSystemSettingService(gdb, SystemSettings{NotificationEmail: "ops@example.com"})

	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.SiteName != "Law Firm Directory" || settings.NotificationEmail != "ops@example.com" {
		t.Fatalf("unexpected defaults %+v", settings)
	}

	updated, err := svc.UpdateSettings(SystemSettingsInput{SiteName: " Counsel Finder ", Tagline: "Find a lawyer", NotificationEmail: "alerts@example.com"})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.SiteName != "Counsel Finder" || updated.Tagline != "Find a lawyer" || updated.NotificationEmail != "alerts@example.com" {
		t.Fatalf("unexpected settings %+v", updated)
	}
	if svc.AdminAddress() != "alerts@example.com" || svc.SiteName() != "Counsel Finder" {
		t.Fatalf("expected stored notification address")
	}

	// saving again overwrites rather than inserting duplicates
	cleared, err := svc.UpdateSettings(SystemSettingsInput{})
	if err != nil {
		t.Fatalf("clear settings: %v", err)
	}
	if cleared.SiteName != "Law Firm Directory" || cleared.NotificationEmail != "ops@example.com" {
		t.Fatalf("expected defaults after clearing, got %+v", cleared)
	}

	if _, err := svc.UpdateSettings(SystemSettingsInput{NotificationEmail: "nope"}); !errors.Is(err, ErrNotificationEmailInvalid) {
		t.Fatalf("expected ErrNotificationEmailInvalid, got %v", err)
	}
}
