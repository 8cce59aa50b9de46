package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/herbwise/basil/internal/common"
)

//go:embed seeds.yaml
var defaultSeeds []byte

// CategoryKeywords is one row of the category keyword table. Rows are
// evaluated in declaration order; the first category whose keyword set
// matches an item name wins.
type CategoryKeywords struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// UnitDef maps a set of unit spellings to one canonical form.
type UnitDef struct {
	Canonical string   `yaml:"canonical"`
	Kind      string   `yaml:"kind"`
	Aliases   []string `yaml:"aliases"`
}

// Seeds is the full seed data set, loaded once at process start and treated
// as immutable afterwards.
type Seeds struct {
	Categories []CategoryKeywords `yaml:"categories"`
	Units      []UnitDef          `yaml:"units"`
	DenyList   []string           `yaml:"deny_list"`
}

// LoadSeeds returns the seed data. When path is empty, the embedded
// defaults are used; otherwise the file at path replaces them entirely.
func LoadSeeds(path string) (*Seeds, error) {
	data := defaultSeeds
	if path != "" {
		b, err := os.ReadFile(path) // #nosec G304 -- user-supplied config path
		if err != nil {
			return nil, fmt.Errorf("failed to read seeds file: %w", err)
		}
		data = b
	}

	var seeds Seeds
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}

	if err := seeds.Validate(); err != nil {
		return nil, err
	}
	return &seeds, nil
}

// Validate checks structural invariants of the seed data.
func (s *Seeds) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("%w: no categories defined", common.ErrInvalidConfig)
	}
	if len(s.Units) == 0 {
		return fmt.Errorf("%w: no units defined", common.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category with empty name", common.ErrInvalidConfig)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate category %q", common.ErrInvalidConfig, c.Name)
		}
		seen[c.Name] = true
	}

	for _, u := range s.Units {
		if u.Canonical == "" || len(u.Aliases) == 0 {
			return fmt.Errorf("%w: unit %q needs a canonical form and aliases",
				common.ErrInvalidConfig, u.Canonical)
		}
		switch u.Kind {
		case "mass", "volume", "count":
		default:
			return fmt.Errorf("%w: unit %q has unknown kind %q",
				common.ErrInvalidConfig, u.Canonical, u.Kind)
		}
	}

	return nil
}

// CategoryNames returns the category names in table order.
func (s *Seeds) CategoryNames() []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.Name
	}
	return names
}
