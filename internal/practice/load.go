package practice

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"starreview/internal/services"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Practices []catalogEntry `yaml:"practices"`
}

type catalogEntry struct {
	Category     string `yaml:"category"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Criteria     string `yaml:"criteria"`
	Polarity     string `yaml:"polarity"`
	IsPositive   *bool  `yaml:"is_positive"`
	DisplayOrder int    `yaml:"display_order"`
}

// Decode reads a YAML catalog. Entries may state polarity either as
// "polarity: positive|negative" or as "is_positive: true|false".
func Decode(r io.Reader) (Catalog, error) {
	var doc catalogFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Catalog{}, nil
		}
		return nil, services.Wrap(services.ErrValidation, "practice", "decode catalog", "invalid yaml", err)
	}
	catalog := make(Catalog, 0, len(doc.Practices))
	for i, entry := range doc.Practices {
		category, err := ParseCategory(entry.Category)
		if err != nil {
			return nil, err
		}
		polarity, err := entry.polarity()
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "practice", "decode catalog",
				fmt.Sprintf("entry %d (%s)", i+1, entry.Title), err)
		}
		order := entry.DisplayOrder
		if order == 0 {
			order = i + 1
		}
		catalog = append(catalog, Criterion{
			Category:     category,
			Title:        strings.TrimSpace(entry.Title),
			Description:  strings.TrimSpace(entry.Description),
			Criteria:     strings.TrimSpace(entry.Criteria),
			Polarity:     polarity,
			DisplayOrder: order,
		})
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (e catalogEntry) polarity() (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(e.Polarity)) {
	case string(Positive):
		return Positive, nil
	case string(Negative):
		return Negative, nil
	case "":
		if e.IsPositive == nil {
			return Positive, nil
		}
		return PolarityOf(*e.IsPositive), nil
	default:
		return "", fmt.Errorf("unknown polarity %q", e.Polarity)
	}
}

// LoadFile decodes the catalog stored at path.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Default returns the bundled catalog covering the three teaching categories.
func Default() Catalog {
	catalog, err := Decode(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("practice: bundled catalog invalid: %v", err))
	}
	return catalog
}
