package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open("sqlite", dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

type fixedTiers map[string]bool

func (f fixedTiers) HasTier(id string) (bool, error) {
	return f[id], nil
}

func (f fixedTiers) DefaultTier() (string, error) {
	return db.DefaultTier, nil
}

func seedState(t *testing.T, gdb *gorm.DB, name, code string) db.State {
	t.Helper()
	state := db.State{Name: name, Code: code, Slug: slugFor(name)}
	if err := gdb.Create(&state).Error; err != nil {
		t.Fatalf("seed state: %v", err)
	}
	return state
}

func seedMetro(t *testing.T, gdb *gorm.DB, state db.State, name string) db.Metro {
	t.Helper()
	metro := db.Metro{Name: name, Slug: slugFor(name + " " + state.Code), StateID: state.ID}
	if err := gdb.Create(&metro).Error; err != nil {
		t.Fatalf("seed metro: %v", err)
	}
	return metro
}

func seedPracticeArea(t *testing.T, gdb *gorm.DB, name string) db.PracticeArea {
	t.Helper()
	area, err := NewPracticeAreaService(gdb).Create(PracticeAreaInput{Name: name})
	if err != nil {
		t.Fatalf("seed practice area: %v", err)
	}
	return *area
}

func seedFirm(t *testing.T, gdb *gorm.DB, input FirmInput) db.Firm {
	t.Helper()
	firm, err := NewFirmService(gdb, nil).Create(input)
	if err != nil {
		t.Fatalf("seed firm %q: %v", input.Name, err)
	}
	return *firm
}

func seedOffice(t *testing.T, gdb *gorm.DB, firmID uint, city string, state db.State, metro *db.Metro) db.Office {
	t.Helper()
	input := OfficeInput{City: city, StateID: state.ID}
	if metro != nil {
		id := metro.ID
		input.MetroID = &id
	}
	office, err := NewOfficeService(gdb).Create(firmID, input)
	if err != nil {
		t.Fatalf("seed office: %v", err)
	}
	return *office
}

func slugFor(s string) string {
	return slug.Make(s)
}
