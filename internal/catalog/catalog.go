// Package catalog holds the fixed category taxonomy and the keyword map the
// import pipeline classifies against. The taxonomy is data, not code: it is
// loaded from YAML (an embedded default, overridable by file) so new
// categories and merchant keywords need no code change.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel is the category identifier used whenever no better classification
// is available.
const Sentinel = "other-expense"

//go:embed categories.yaml
var defaultCatalogYAML []byte

// Category is one entry of the taxonomy. ID is the stable key stored on
// transactions; Name is the display name AI batch previews may return.
type Category struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Keywords []string `yaml:"keywords"`
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// keywordEntry preserves catalog order so the first matching keyword wins
// deterministically.
type keywordEntry struct {
	keyword    string
	categoryID string
}

// Catalog is the read-only category taxonomy plus derived lookup tables.
type Catalog struct {
	categories []Category
	byID       map[string]Category
	keywords   []keywordEntry
}

// Default returns the catalog built from the embedded taxonomy.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		// The embedded catalog is validated by tests; failing here means a
		// broken build, not a runtime condition.
		panic(fmt.Sprintf("catalog: embedded taxonomy invalid: %v", err))
	}
	return c
}

// LoadFile reads a taxonomy override from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parsing yaml: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("catalog: no categories defined")
	}

	c := &Catalog{
		categories: file.Categories,
		byID:       make(map[string]Category, len(file.Categories)),
	}
	for _, cat := range file.Categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("catalog: category %q has no id", cat.Name)
		}
		if _, dup := c.byID[cat.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate category id %q", cat.ID)
		}
		c.byID[cat.ID] = cat
		for _, kw := range cat.Keywords {
			key := normalizeKeyword(kw)
			if key == "" {
				continue
			}
			c.keywords = append(c.keywords, keywordEntry{keyword: key, categoryID: cat.ID})
		}
	}
	if _, ok := c.byID[Sentinel]; !ok {
		return nil, fmt.Errorf("catalog: sentinel category %q missing", Sentinel)
	}
	return c, nil
}

// Categories returns the taxonomy in catalog order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// IDs returns every category identifier in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		ids = append(ids, cat.ID)
	}
	return ids
}

// Has reports whether id is a known category identifier.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDFromName maps a display name ("Other Expenses") to its identifier,
// case-insensitively. Unknown names map to the sentinel.
func (c *Catalog) IDFromName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return Sentinel
	}
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Name, name) {
			return cat.ID
		}
	}
	// Callers sometimes hand us an identifier already.
	if c.Has(strings.ToLower(name)) {
		return strings.ToLower(name)
	}
	return Sentinel
}

// MatchKeyword scans the description against every keyword in catalog order
// and returns the first matching category identifier. Matching is a
// case-insensitive substring test.
func (c *Catalog) MatchKeyword(description string) (string, bool) {
	desc := normalizeKeyword(description)
	if desc == "" {
		return "", false
	}
	for _, entry := range c.keywords {
		if strings.Contains(desc, entry.keyword) {
			return entry.categoryID, true
		}
	}
	return "", false
}

// normalizeKeyword lowercases and folds dashes/underscores to spaces, so
// "Other-Expenses" and "other_expenses" both match "other expenses".
func normalizeKeyword(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return s
}
