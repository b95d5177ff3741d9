package analysis

import (
	"fmt"
	"strings"

	"starreview/internal/practice"
)

// VisualKeywords mark criteria whose descriptions can be judged from still
// frames.
var VisualKeywords = []string{
	"positioning", "materials", "eye level", "facing", "visual", "body language",
	"gesture", "physical", "ready", "organized", "environment", "setup",
}

// FilterCatalog narrows the catalog to category, keeping the full catalog
// when no category applies.
func FilterCatalog(catalog practice.Catalog, category practice.Category) practice.Catalog {
	return catalog.ForCategory(category)
}

// VisualCatalog keeps criteria whose description mentions a visual keyword,
// capped at limit entries (limit <= 0 means no cap).
func VisualCatalog(catalog practice.Catalog, limit int) practice.Catalog {
	out := make(practice.Catalog, 0, len(catalog))
	for _, item := range catalog {
		if !mentionsVisual(item.Description) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func mentionsVisual(description string) bool {
	lower := strings.ToLower(description)
	for _, keyword := range VisualKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func practiceLines(catalog practice.Catalog) string {
	var b strings.Builder
	for _, item := range catalog {
		fmt.Fprintf(&b, "- %s: %s\n", item.Title, item.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func categoryLabel(category practice.Category) string {
	if category == "" || category == practice.CategoryNone {
		return "general"
	}
	return string(category)
}
