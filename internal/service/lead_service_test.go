package service

import (
	"errors"
	"testing"

	"github.com/firmdirectory/internal/db"
)

func TestLeadServiceSubmit(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	published := seedFirm(t, gdb, FirmInput{Name: "Open Doors", Email: "intake@opendoors.example", Status: db.StatusPublished})
	draft := seedFirm(t, gdb, FirmInput{Name: "Closed Doors"})
	svc := NewLeadService(gdb)

	lead, err := svc.Submit(LeadInput{FirmSlug: published.Slug, Name: "Pat", Email: "pat@example.com", Phone: "555-0100", StateCode: "wa"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if lead.Status != db.LeadNew || lead.FirmID == nil || *lead.FirmID != published.ID || lead.StateCode != "WA" {
		t.Fatalf("unexpected lead %+v", lead)
	}
	if lead.Firm == nil || lead.Firm.Email != "intake@opendoors.example" {
		t.Fatalf("expected firm to be attached for notifications")
	}

	if _, err := svc.Submit(LeadInput{FirmSlug: draft.Slug, Name: "Pat", Email: "pat@example.com", Message: "hi"}); !errors.Is(err, ErrFirmNotFound) {
		t.Fatalf("expected ErrFirmNotFound for draft firm, got %v", err)
	}

	general, err := svc.Submit(LeadInput{Name: "Sam", Email: "sam@example.com", Message: "Need advice"})
	if err != nil {
		t.Fatalf("submit general: %v", err)
	}
	if general.FirmID != nil {
		t.Fatalf("expected general lead without firm")
	}

	count, err := svc.CountNew()
	if err != nil || count != 2 {
		t.Fatalf("count new: %v %d", err, count)
	}
}

func TestLeadServiceSubmitRequiresMessageOrPhone(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewLeadService(gdb)
	_, err := svc.Submit(LeadInput{Name: "Pat", Email: "pat@example.com"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields[0].Field != "phone" {
		t.Fatalf("expected phone to be flagged, got %+v", verr.Fields)
	}

	_, err = svc.Submit(LeadInput{Email: "bad", Message: "x"})
	if !errors.As(err, &verr) || len(verr.Fields) != 2 {
		t.Fatalf("expected name and email errors, got %v", err)
	}
}

func TestLeadServiceStatusAndDelete(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewLeadService(gdb)
	lead, err := svc.Submit(LeadInput{Name: "Kim", Email: "kim@example.com", Message: "hello"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.UpdateStatus(lead.ID, "Contacted")
	if err != nil || updated.Status != db.LeadContacted {
		t.Fatalf("update status: %v %+v", err, updated)
	}
	if _, err := svc.UpdateStatus(lead.ID, "lost"); !errors.Is(err, ErrLeadStatusInvalid) {
		t.Fatalf("expected ErrLeadStatusInvalid, got %v", err)
	}
	if _, err := svc.UpdateStatus(9999, db.LeadClosed); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}

	res, err := svc.List(LeadFilter{Status: db.LeadContacted})
	if err != nil || res.Total != 1 {
		t.Fatalf("list: %v %+v", err, res)
	}

	if err := svc.Delete(lead.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(lead.ID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
