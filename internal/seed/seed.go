// Package seed 从 YAML 夹具导入州、都市区、业务领域与示例律所。
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/firmdirectory/internal/service"
	"github.com/firmdirectory/internal/slug"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is the YAML document layout.
type Fixture struct {
	States        []StateFixture        `yaml:"states"`
	PracticeAreas []PracticeAreaFixture `yaml:"practice_areas"`
	Firms         []FirmFixture         `yaml:"firms"`
	Pages         []PageFixture         `yaml:"pages"`
}

type StateFixture struct {
	Name   string   `yaml:"name"`
	Code   string   `yaml:"code"`
	Metros []string `yaml:"metros"`
}

type PracticeAreaFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type OfficeFixture struct {
	Label        string `yaml:"label"`
	Street       string `yaml:"street"`
	City         string `yaml:"city"`
	Zip          string `yaml:"zip"`
	Phone        string `yaml:"phone"`
	State        string `yaml:"state"`
	Metro        string `yaml:"metro"`
	Headquarters bool   `yaml:"headquarters"`
}

type LawyerFixture struct {
	FirstName     string   `yaml:"first_name"`
	LastName      string   `yaml:"last_name"`
	Title         string   `yaml:"title"`
	Email         string   `yaml:"email"`
	Bio           string   `yaml:"bio"`
	BarAdmissions string   `yaml:"bar_admissions"`
	PracticeAreas []string `yaml:"practice_areas"`
}

type FirmFixture struct {
	Name          string          `yaml:"name"`
	Summary       string          `yaml:"summary"`
	Description   string          `yaml:"description"`
	Website       string          `yaml:"website"`
	Email         string          `yaml:"email"`
	Phone         string          `yaml:"phone"`
	Tier          string          `yaml:"tier"`
	Featured      bool            `yaml:"featured"`
	Status        string          `yaml:"status"`
	FoundedYear   int             `yaml:"founded_year"`
	PracticeAreas []string        `yaml:"practice_areas"`
	Offices       []OfficeFixture `yaml:"offices"`
	Lawyers       []LawyerFixture `yaml:"lawyers"`
}

type PageFixture struct {
	Title     string `yaml:"title"`
	Content   string `yaml:"content"`
	Published bool   `yaml:"published"`
}

// Summary counts the records created by Apply.
type Summary struct {
	States        int
	Metros        int
	PracticeAreas int
	Firms         int
	Lawyers       int
	Pages         int
}

// Default returns the embedded fixture.
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// LoadFile reads a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture document.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &fx, nil
}

// Apply inserts every record that does not exist yet. Running it twice is a no-op.
func Apply(gdb *gorm.DB, fx *Fixture) (Summary, error) {
	var sum Summary
	locations := service.NewLocationService(gdb)
	areas := service.NewPracticeAreaService(gdb)
	firms := service.NewFirmService(gdb, nil)
	offices := service.NewOfficeService(gdb)
	lawyers := service.NewLawyerService(gdb)
	pages := service.NewPageService(gdb)

	for _, st := range fx.States {
		state, err := locations.GetStateBySlug(st.Code)
		if errors.Is(err, service.ErrStateNotFound) {
			state, err = locations.CreateState(st.Name, st.Code, "")
			sum.States++
		}
		if err != nil {
			return sum, fmt.Errorf("state %s: %w", st.Code, err)
		}
		for _, name := range st.Metros {
			if _, err := locations.GetMetroBySlug(state.ID, metroSlug(name, state.Code)); err == nil {
				continue
			}
			if _, err := locations.CreateMetro(state.ID, name, ""); err != nil {
				return sum, fmt.Errorf("metro %s: %w", name, err)
			}
			sum.Metros++
		}
	}

	areaIDs := map[string]uint{}
	for _, pa := range fx.PracticeAreas {
		area, err := areas.GetBySlug(slug.Make(pa.Name))
		if errors.Is(err, service.ErrPracticeAreaNotFound) {
			area, err = areas.Create(service.PracticeAreaInput{Name: pa.Name, Description: pa.Description})
			sum.PracticeAreas++
		}
		if err != nil {
			return sum, fmt.Errorf("practice area %s: %w", pa.Name, err)
		}
		areaIDs[area.Slug] = area.ID
	}

	for _, ff := range fx.Firms {
		if _, err := firms.GetBySlug(slug.Make(ff.Name), false); err == nil {
			continue
		}

		ids, err := lookupAreas(areaIDs, ff.PracticeAreas)
		if err != nil {
			return sum, fmt.Errorf("firm %s: %w", ff.Name, err)
		}
		firm, err := firms.Create(service.FirmInput{
			Name:            ff.Name,
			Summary:         ff.Summary,
			Description:     ff.Description,
			Website:         ff.Website,
			Email:           ff.Email,
			Phone:           ff.Phone,
			Tier:            ff.Tier,
			Status:          ff.Status,
			Featured:        ff.Featured,
			FoundedYear:     ff.FoundedYear,
			PracticeAreaIDs: ids,
		})
		if err != nil {
			return sum, fmt.Errorf("firm %s: %w", ff.Name, err)
		}
		sum.Firms++

		for _, of := range ff.Offices {
			input, err := officeInput(locations, of)
			if err != nil {
				return sum, fmt.Errorf("firm %s office %s: %w", ff.Name, of.City, err)
			}
			if _, err := offices.Create(firm.ID, input); err != nil {
				return sum, fmt.Errorf("firm %s office %s: %w", ff.Name, of.City, err)
			}
		}

		for _, lf := range ff.Lawyers {
			ids, err := lookupAreas(areaIDs, lf.PracticeAreas)
			if err != nil {
				return sum, fmt.Errorf("lawyer %s %s: %w", lf.FirstName, lf.LastName, err)
			}
			if _, err := lawyers.Create(service.LawyerInput{
				FirmID:          firm.ID,
				FirstName:       lf.FirstName,
				LastName:        lf.LastName,
				Title:           lf.Title,
				Email:           lf.Email,
				Bio:             lf.Bio,
				BarAdmissions:   lf.BarAdmissions,
				PracticeAreaIDs: ids,
			}); err != nil {
				return sum, fmt.Errorf("lawyer %s %s: %w", lf.FirstName, lf.LastName, err)
			}
			sum.Lawyers++
		}
	}

	for _, pf := range fx.Pages {
		if _, err := pages.GetBySlug(slug.Make(pf.Title), false); err == nil {
			continue
		}
		if _, err := pages.Create(service.PageInput{Title: pf.Title, Content: pf.Content, Published: pf.Published}); err != nil {
			return sum, fmt.Errorf("page %s: %w", pf.Title, err)
		}
		sum.Pages++
	}

	return sum, nil
}

func officeInput(locations *service.LocationService, of OfficeFixture) (service.OfficeInput, error) {
	state, err := locations.GetStateBySlug(of.State)
	if err != nil {
		return service.OfficeInput{}, err
	}
	input := service.OfficeInput{
		Label:        of.Label,
		Street:       of.Street,
		City:         of.City,
		Zip:          of.Zip,
		Phone:        of.Phone,
		StateID:      state.ID,
		Headquarters: of.Headquarters,
	}
	if strings.TrimSpace(of.Metro) != "" {
		metro, err := locations.GetMetroBySlug(state.ID, metroSlug(of.Metro, state.Code))
		if err != nil {
			return service.OfficeInput{}, err
		}
		input.MetroID = &metro.ID
	}
	return input, nil
}

func lookupAreas(known map[string]uint, slugs []string) ([]uint, error) {
	ids := make([]uint, 0, len(slugs))
	for _, s := range slugs {
		id, ok := known[slug.Make(s)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", service.ErrPracticeAreaNotFound, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func metroSlug(name, stateCode string) string {
	return slug.Make(name + " " + stateCode)
}
