package handler

import (
	"net/http"
	"testing"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/service"
)

func TestShowFirmProfileRecordsViewAndHidesDrafts(t *testing.T) {
	env := newTestEnv(t)
	published := env.seedFirm(t, service.FirmInput{
		Name:        "Harbor & Vale LLP",
		Status:      db.StatusPublished,
		Description: "## Trial lawyers\nWe **win** cases.",
	})
	draft := env.seedFirm(t, service.FirmInput{Name: "Prairie Commercial Counsel"})

	rr := env.do(t, http.MethodGet, "/firms/"+published.Slug, nil, nil)
	expectStatus(t, rr, http.StatusOK)
	if env.html.last.name != "firm_detail.html" {
		t.Fatalf("expected firm_detail.html, got %s", env.html.last.name)
	}
	if len(env.stats.views) != 1 || env.stats.views[0] != published.ID {
		t.Fatalf("expected one recorded view, got %v", env.stats.views)
	}
	if views, _ := env.html.value(t, "pageViews").(uint64); views != 1 {
		t.Fatalf("expected pageViews 1, got %v", env.html.value(t, "pageViews"))
	}

	var visitorSet bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == visitorCookieName && c.Value != "" {
			visitorSet = true
		}
	}
	if !visitorSet {
		t.Fatal("expected visitor cookie to be issued")
	}

	expectStatus(t, env.do(t, http.MethodGet, "/firms/"+draft.Slug, nil, nil), http.StatusNotFound)
	if env.html.last.name != "not_found.html" {
		t.Fatalf("expected not_found.html, got %s", env.html.last.name)
	}
	expectStatus(t, env.do(t, http.MethodGet, "/api/firms/"+draft.Slug, nil, nil), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodGet, "/api/firms/"+published.Slug, nil, nil), http.StatusOK)
}

func TestSearchFirmsJSON(t *testing.T) {
	env := newTestEnv(t)
	env.seedFirm(t, service.FirmInput{Name: "Okafor Defense Group", Status: db.StatusPublished, Summary: "Criminal defense in Houston"})
	env.seedFirm(t, service.FirmInput{Name: "Okafor Estate Planning", Status: db.StatusPublished, Tier: "premium"})
	env.seedFirm(t, service.FirmInput{Name: "Okafor Drafts", Summary: "unpublished"})

	rr := env.do(t, http.MethodGet, "/api/search?q=okafor&perPage=1", nil, nil)
	expectStatus(t, rr, http.StatusOK)

	var result struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
		PerPage    int   `json:"perPage"`
	}
	decodeJSON(t, rr, &result)
	if result.Total != 2 || result.TotalPages != 2 || result.PerPage != 1 {
		t.Fatalf("unexpected pagination: %+v", result)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Okafor Estate Planning" {
		t.Fatalf("expected premium firm first, got %+v", result.Items)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/firms?q=okafor", nil, nil), http.StatusOK)
	if env.html.last.name != "firms.html" {
		t.Fatalf("expected firms.html, got %s", env.html.last.name)
	}
}

func TestShowMetroLocationUnknownMetro(t *testing.T) {
	env := newTestEnv(t)
	state, err := env.api.locations.CreateState("Texas", "TX", "")
	if err != nil {
		t.Fatalf("failed to create state: %v", err)
	}
	if _, err := env.api.locations.CreateMetro(state.ID, "Austin", ""); err != nil {
		t.Fatalf("failed to create metro: %v", err)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/locations/tx/austin-tx", nil, nil), http.StatusOK)
	if env.html.last.name != "location_detail.html" {
		t.Fatalf("expected location_detail.html, got %s", env.html.last.name)
	}
	expectStatus(t, env.do(t, http.MethodGet, "/locations/texas/dallas-tx", nil, nil), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodGet, "/locations/zz/austin-tx", nil, nil), http.StatusNotFound)
}

func TestShowPageHidesUnpublished(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.api.pages.Create(service.PageInput{Title: "About", Content: "Who we are", Published: true}); err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	if _, err := env.api.pages.Create(service.PageInput{Title: "Draft terms", Content: "TBD"}); err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/pages/about", nil, nil), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/pages/draft-terms", nil, nil), http.StatusNotFound)
}
