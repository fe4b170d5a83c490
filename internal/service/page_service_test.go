package service

import (
	"errors"
	"strings"
	"testing"
)

func TestPageServiceCRUD(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewPageService(gdb)

	if _, err := svc.Create(PageInput{Title: "About", Content: "  "}); !errors.Is(err, ErrPageContentMissing) {
		t.Fatalf("expected ErrPageContentMissing, got %v", err)
	}
	if _, err := svc.Create(PageInput{Content: "x"}); !errors.Is(err, ErrPageTitleRequired) {
		t.Fatalf("expected ErrPageTitleRequired, got %v", err)
	}

	long := strings.Repeat("word ", 60)
	page, err := svc.Create(PageInput{Title: "About Us", Content: "# Hello\n\n" + long})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if page.Slug != "about-us" {
		t.Fatalf("unexpected slug %q", page.Slug)
	}
	if !strings.HasPrefix(page.Summary, "Hello word") || !strings.HasSuffix(page.Summary, "…") {
		t.Fatalf("unexpected summary %q", page.Summary)
	}

	if _, err := svc.Create(PageInput{Title: "About Us", Content: "dup"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	if _, err := svc.GetBySlug("about-us", true); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected unpublished page to be hidden, got %v", err)
	}

	updated, err := svc.Update(page.ID, PageInput{Title: "About Us", Summary: "Custom", Content: "Body", Published: true})
	if err != nil {
		t.Fatalf("update page: %v", err)
	}
	if updated.Summary != "Custom" || !updated.Published {
		t.Fatalf("unexpected page after update %+v", updated)
	}
	if _, err := svc.GetBySlug("about-us", true); err != nil {
		t.Fatalf("published lookup: %v", err)
	}

	published, err := svc.List(true)
	if err != nil || len(published) != 1 {
		t.Fatalf("list published: %v %d", err, len(published))
	}

	if err := svc.Delete(page.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(page.ID); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}
