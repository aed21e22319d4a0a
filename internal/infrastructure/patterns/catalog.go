package patterns

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/medilens/backend/internal/domain"
)

// Catalog is an immutable table of medicine patterns, keyed by canonical name.
// Entry order is preserved and drives candidate discovery order.
type Catalog struct {
	entries []domain.MedicinePattern
	index   map[string][]string
}

// patternFile is the on-disk YAML layout of a pattern catalog
type patternFile struct {
	Patterns []domain.MedicinePattern `yaml:"patterns"`
}

// New builds a catalog from entries. Names and variations are lowercased and
// trimmed, empty or duplicate variations dropped, and entries sharing a
// canonical name merged into the first one.
func New(entries []domain.MedicinePattern) *Catalog {
	c := &Catalog{
		index: make(map[string][]string, len(entries)),
	}

	for _, entry := range entries {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if name == "" {
			continue
		}

		existing, known := c.index[name]
		seen := make(map[string]bool, len(existing)+len(entry.Variations))
		for _, v := range existing {
			seen[v] = true
		}

		variations := existing
		for _, v := range entry.Variations {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			variations = append(variations, v)
		}

		c.index[name] = variations
		if !known {
			c.entries = append(c.entries, domain.MedicinePattern{Name: name})
		}
	}

	for i := range c.entries {
		c.entries[i].Variations = c.index[c.entries[i].Name]
	}

	return c
}

// Default returns the built-in pattern catalog
func Default() *Catalog {
	return New(defaultPatterns)
}

// LoadFile reads a YAML pattern catalog from path
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pattern file %s: %w", path, err)
	}
	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("pattern file %s has no patterns", path)
	}

	return New(file.Patterns), nil
}

// VariationsOf returns the surface forms of a canonical name.
// Unknown names yield an empty slice.
func (c *Catalog) VariationsOf(name string) []string {
	variations := c.index[strings.ToLower(strings.TrimSpace(name))]
	return append([]string{}, variations...)
}

// Entries returns a copy of all patterns in catalog order
func (c *Catalog) Entries() []domain.MedicinePattern {
	entries := make([]domain.MedicinePattern, len(c.entries))
	for i, entry := range c.entries {
		entries[i] = domain.MedicinePattern{
			Name:       entry.Name,
			Variations: append([]string{}, entry.Variations...),
		}
	}
	return entries
}

// Len returns the number of canonical names in the catalog
func (c *Catalog) Len() int {
	return len(c.entries)
}
