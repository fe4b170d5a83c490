// Package pricing 读写定价档位配置文件。
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoTiers        = errors.New("at least one pricing tier is required")
	ErrTierIDRequired = errors.New("pricing tier id is required")
	ErrTierDuplicate  = errors.New("pricing tier ids must be unique")
	ErrNegativePrice  = errors.New("pricing tier prices must not be negative")
)

// Tier 描述一个定价档位。
type Tier struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MonthlyPrice float64  `json:"monthlyPrice"`
	AnnualPrice  float64  `json:"annualPrice"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	Highlighted  bool     `json:"highlighted"`
	SortOrder    int      `json:"sortOrder"`
}

// Config is the whole pricing file.
type Config struct {
	Tiers     []Tier     `json:"tiers"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Tier returns the tier with id, if present.
func (c Config) Tier(id string) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// Lowest returns the tier with the smallest sort order; ties keep file order.
func (c Config) Lowest() (Tier, bool) {
	if len(c.Tiers) == 0 {
		return Tier{}, false
	}
	lowest := c.Tiers[0]
	for _, t := range c.Tiers[1:] {
		if t.SortOrder < lowest.SortOrder {
			lowest = t
		}
	}
	return lowest, true
}

// Ranks maps tier id to its sort order; higher ranks are listed first in search.
func (c Config) Ranks() map[string]int {
	ranks := make(map[string]int, len(c.Tiers))
	for _, t := range c.Tiers {
		ranks[t.ID] = t.SortOrder
	}
	return ranks
}

// Defaults 是配置文件缺失时使用的内置档位。
func Defaults() Config {
	return Config{Tiers: []Tier{
		{
			ID:          "basic",
			Name:        "Basic",
			Description: "A free listing with contact details and one office.",
			Features:    []string{"Firm profile", "One office", "Practice area tags"},
			SortOrder:   0,
		},
		{
			ID:           "professional",
			Name:         "Professional",
			MonthlyPrice: 99,
			AnnualPrice:  990,
			Description:  "Logo, lawyer profiles and lead forms.",
			Features:     []string{"Everything in Basic", "Firm logo", "Lawyer profiles", "Lead notifications"},
			Highlighted:  true,
			SortOrder:    1,
		},
		{
			ID:           "premium",
			Name:         "Premium",
			MonthlyPrice: 249,
			AnnualPrice:  2490,
			Description:  "Top placement in search results and featured slots.",
			Features:     []string{"Everything in Professional", "Priority search placement", "Home page feature"},
			SortOrder:    2,
		},
	}}
}

// Store reads and writes the pricing file. The file is re-read on every Load.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewStore creates a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the pricing file; a missing file yields Defaults.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Config{}, fmt.Errorf("read pricing: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode pricing: %w", err)
	}
	sortTiers(cfg.Tiers)
	return cfg, nil
}

// Save validates cfg and replaces the file atomically.
func (s *Store) Save(cfg Config) (Config, error) {
	cleaned, err := Normalize(cfg)
	if err != nil {
		return Config{}, err
	}
	now := s.now().UTC()
	cleaned.UpdatedAt = &now

	data, err := json.MarshalIndent(cleaned, "", "  ")
	if err != nil {
		return Config{}, fmt.Errorf("encode pricing: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Config{}, fmt.Errorf("create pricing dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".pricing-*.json")
	if err != nil {
		return Config{}, fmt.Errorf("create temp pricing: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return Config{}, fmt.Errorf("write pricing: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Config{}, fmt.Errorf("close pricing: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return Config{}, fmt.Errorf("replace pricing: %w", err)
	}
	return cleaned, nil
}

// HasTier reports whether id is a configured tier.
func (s *Store) HasTier(id string) (bool, error) {
	cfg, err := s.Load()
	if err != nil {
		return false, err
	}
	_, ok := cfg.Tier(strings.TrimSpace(id))
	return ok, nil
}

// DefaultTier returns the id new firms are placed on: the lowest configured tier.
func (s *Store) DefaultTier() (string, error) {
	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	tier, ok := cfg.Lowest()
	if !ok {
		return "", nil
	}
	return tier.ID, nil
}

// Normalize trims fields and checks the tier list.
func Normalize(cfg Config) (Config, error) {
	if len(cfg.Tiers) == 0 {
		return Config{}, ErrNoTiers
	}

	seen := make(map[string]struct{}, len(cfg.Tiers))
	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		t.ID = strings.ToLower(strings.TrimSpace(t.ID))
		t.Name = strings.TrimSpace(t.Name)
		t.Description = strings.TrimSpace(t.Description)
		if t.ID == "" {
			return Config{}, ErrTierIDRequired
		}
		if _, ok := seen[t.ID]; ok {
			return Config{}, fmt.Errorf("%w: %s", ErrTierDuplicate, t.ID)
		}
		seen[t.ID] = struct{}{}
		if t.MonthlyPrice < 0 || t.AnnualPrice < 0 {
			return Config{}, fmt.Errorf("%w: %s", ErrNegativePrice, t.ID)
		}
		if t.Name == "" {
			t.Name = t.ID
		}

		features := make([]string, 0, len(t.Features))
		for _, f := range t.Features {
			if f = strings.TrimSpace(f); f != "" {
				features = append(features, f)
			}
		}
		t.Features = features
		tiers = append(tiers, t)
	}

	sortTiers(tiers)
	return Config{Tiers: tiers, UpdatedAt: cfg.UpdatedAt}, nil
}

func sortTiers(tiers []Tier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].SortOrder < tiers[j].SortOrder
	})
}
