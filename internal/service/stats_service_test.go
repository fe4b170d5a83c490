package service

import (
	"context"
	"testing"

	"github.com/firmdirectory/internal/db"
)

func TestStatsServiceDashboard(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	firm := seedFirm(t, gdb, FirmInput{Name: "Counted", Status: db.StatusPublished})
	seedFirm(t, gdb, FirmInput{Name: "Draft Counted"})
	seedPracticeArea(t, gdb, "Tax")
	if _, err := NewLawyerService(gdb).Create(LawyerInput{FirmID: firm.ID, FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("seed lawyer: %v", err)
	}
	if _, err := NewNominationService(gdb, nil).Submit(validNomination()); err != nil {
		t.Fatalf("seed nomination: %v", err)
	}
	if _, err := NewLeadService(gdb).Submit(LeadInput{Name: "L", Email: "l@example.com", Phone: "1"}); err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	stats, err := NewStatsService(gdb).Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	want := DashboardStats{Firms: 2, PublishedFirms: 1, Lawyers: 1, PracticeAreas: 1, PendingNominations: 1, NewLeads: 1}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}
