package service

import (
	"testing"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/pricing"
	"gorm.io/gorm"
)

type staticPricing pricing.Config

func (p staticPricing) Load() (pricing.Config, error) {
	return pricing.Config(p), nil
}

type searchFixture struct {
	tx, ca           db.State
	austin, sf       db.Metro
	tax, immigration db.PracticeArea
}

func seedSearchFixture(t *testing.T, gdb *gorm.DB) searchFixture {
	t.Helper()
	var f searchFixture
	f.tx = seedState(t, gdb, "Texas", "TX")
	f.ca = seedState(t, gdb, "California", "CA")
	f.austin = seedMetro(t, gdb, f.tx, "Austin")
	f.sf = seedMetro(t, gdb, f.ca, "San Francisco")
	f.tax = seedPracticeArea(t, gdb, "Tax")
	f.immigration = seedPracticeArea(t, gdb, "Immigration")

	firms := []struct {
		input FirmInput
		city  string
		state db.State
		metro *db.Metro
	}{
		{FirmInput{Name: "Austin Tax Group", Tier: "basic", PracticeAreaIDs: []uint{f.tax.ID}}, "Austin", f.tx, &f.austin},
		{FirmInput{Name: "Bay Immigration", Tier: "premium", PracticeAreaIDs: []uint{f.immigration.ID}}, "San Francisco", f.ca, &f.sf},
		{FirmInput{Name: "Capital Tax Advisors", Tier: "premium", PracticeAreaIDs: []uint{f.tax.ID}, Description: "Offices across Texas and California."}, "Austin", f.tx, &f.austin},
		{FirmInput{Name: "Delta Featured", Tier: "basic", Featured: true, PracticeAreaIDs: []uint{f.tax.ID, f.immigration.ID}}, "Los Angeles", f.ca, nil},
	}
	for _, item := range firms {
		item.input.Status = db.StatusPublished
		firm := seedFirm(t, gdb, item.input)
		seedOffice(t, gdb, firm.ID, item.city, item.state, item.metro)
		if item.input.Name == "Capital Tax Advisors" {
			seedOffice(t, gdb, firm.ID, "San Francisco", f.ca, &f.sf)
		}
	}

	draft := seedFirm(t, gdb, FirmInput{Name: "Hidden Tax Draft", Tier: "premium", PracticeAreaIDs: []uint{f.tax.ID}})
	seedOffice(t, gdb, draft.ID, "Austin", f.tx, &f.austin)
	return f
}

func searchNames(res *SearchResult) []string {
	names := make([]string, 0, len(res.Items))
	for _, firm := range res.Items {
		names = append(names, firm.Name)
	}
	return names
}

func TestSearchServiceOrderingAndFilters(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	seedSearchFixture(t, gdb)
	svc := NewSearchService(gdb, staticPricing(pricing.Defaults()))

	cases := []struct {
		name  string
		query SearchQuery
		want  []string
	}{
		{
			name:  "no filters: featured, then tier rank, then name",
			query: SearchQuery{},
			want:  []string{"Delta Featured", "Bay Immigration", "Capital Tax Advisors", "Austin Tax Group"},
		},
		{
			name:  "practice area",
			query: SearchQuery{PracticeArea: "tax"},
			want:  []string{"Delta Featured", "Capital Tax Advisors", "Austin Tax Group"},
		},
		{
			name:  "state code",
			query: SearchQuery{State: "ca"},
			want:  []string{"Delta Featured", "Bay Immigration", "Capital Tax Advisors"},
		},
		{
			name:  "state slug and metro",
			query: SearchQuery{State: "california", Metro: "san-francisco-ca"},
			want:  []string{"Bay Immigration", "Capital Tax Advisors"},
		},
		{
			name:  "combined filters are ANDed",
			query: SearchQuery{PracticeArea: "tax", Metro: "san-francisco-ca"},
			want:  []string{"Capital Tax Advisors"},
		},
		{
			name:  "free text matches description",
			query: SearchQuery{Text: "CALIFORNIA"},
			want:  []string{"Capital Tax Advisors"},
		},
		{
			name:  "tier",
			query: SearchQuery{Tier: "basic"},
			want:  []string{"Delta Featured", "Austin Tax Group"},
		},
		{
			name:  "no match",
			query: SearchQuery{Text: "nothing like this"},
			want:  []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Search(tc.query)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			got := searchNames(res)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
			if res.Total != int64(len(tc.want)) {
				t.Fatalf("expected total %d, got %d", len(tc.want), res.Total)
			}
		})
	}
}

func TestSearchServicePagination(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	seedSearchFixture(t, gdb)
	svc := NewSearchService(gdb, staticPricing(pricing.Defaults()))

	res, err := svc.Search(SearchQuery{Page: 2, PerPage: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 4 || res.TotalPages != 2 || res.Page != 2 || res.PerPage != 3 {
		t.Fatalf("unexpected pagination %+v", res.Pagination)
	}
	if len(res.Items) != 1 || res.Items[0].Name != "Austin Tax Group" {
		t.Fatalf("unexpected second page %v", searchNames(res))
	}

	res, err = svc.Search(SearchQuery{Page: -3, PerPage: 500})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Page != 1 || res.PerPage != maxSearchPerPage {
		t.Fatalf("expected clamped pagination, got %+v", res.Pagination)
	}

	res, err = svc.Search(SearchQuery{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.PerPage != defaultSearchPerPage {
		t.Fatalf("expected default per page, got %d", res.PerPage)
	}
}

func TestSearchServiceMultipleOfficesCountOnce(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	f := seedSearchFixture(t, gdb)
	svc := NewSearchService(gdb, nil)

	res, err := svc.Search(SearchQuery{State: f.ca.Code, PracticeArea: "tax"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 2 || len(res.Items) != 2 {
		t.Fatalf("expected distinct firms, got total=%d items=%v", res.Total, searchNames(res))
	}
	for _, firm := range res.Items {
		if len(firm.Offices) == 0 {
			t.Fatalf("expected offices to be preloaded for %s", firm.Name)
		}
	}
}
