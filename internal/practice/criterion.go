package practice

import (
	"fmt"
	"sort"
	"strings"

	"starreview/internal/services"
	"starreview/internal/textutil"
)

// Category groups practices by teaching method.
type Category string

const (
	CategoryDiscreteTrial      Category = "discrete_trial"
	CategoryPivotalResponse    Category = "pivotal_response"
	CategoryFunctionalRoutines Category = "functional_routines"
	CategoryNone               Category = "none"
)

// Categories lists the concrete teaching categories in display order.
func Categories() []Category {
	return []Category{CategoryDiscreteTrial, CategoryPivotalResponse, CategoryFunctionalRoutines}
}

// ParseCategory normalizes a category name. Blank input and "general" map
// to CategoryNone.
func ParseCategory(value string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch Category(normalized) {
	case CategoryDiscreteTrial, CategoryPivotalResponse, CategoryFunctionalRoutines, CategoryNone:
		return Category(normalized), nil
	case "", "general":
		return CategoryNone, nil
	default:
		return "", services.Wrap(services.ErrValidation, "practice", "parse category",
			fmt.Sprintf("unknown category %q", value), nil)
	}
}

// Polarity marks a practice as a strength or an area for improvement.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

// IsPositive reports whether p is Positive.
func (p Polarity) IsPositive() bool { return p == Positive }

// PolarityOf converts a boolean flag to a Polarity.
func PolarityOf(positive bool) Polarity {
	if positive {
		return Positive
	}
	return Negative
}

// Criterion is one rubric item.
type Criterion struct {
	ID           int64    `json:"id"`
	Category     Category `json:"category"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Criteria     string   `json:"criteria,omitempty"`
	Polarity     Polarity `json:"polarity"`
	DisplayOrder int      `json:"display_order"`
}

// Catalog is an immutable list of criteria supplied per run.
type Catalog []Criterion

// Validate checks required fields and per-category title uniqueness.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, item := range c {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			return services.Wrap(services.ErrValidation, "practice", "validate", fmt.Sprintf("entry %d: title required", i+1), nil)
		}
		if strings.TrimSpace(item.Description) == "" {
			return services.Wrap(services.ErrValidation, "practice", "validate", fmt.Sprintf("%q: description required", title), nil)
		}
		switch item.Category {
		case CategoryDiscreteTrial, CategoryPivotalResponse, CategoryFunctionalRoutines:
		default:
			return services.Wrap(services.ErrValidation, "practice", "validate", fmt.Sprintf("%q: invalid category %q", title, item.Category), nil)
		}
		if item.Polarity != Positive && item.Polarity != Negative {
			return services.Wrap(services.ErrValidation, "practice", "validate", fmt.Sprintf("%q: invalid polarity %q", title, item.Polarity), nil)
		}
		key := string(item.Category) + "\x00" + strings.ToLower(title)
		if _, dup := seen[key]; dup {
			return services.Wrap(services.ErrValidation, "practice", "validate", fmt.Sprintf("duplicate title %q in %s", title, item.Category), nil)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ForCategory returns the criteria in category, or the full catalog when
// category is CategoryNone or blank.
func (c Catalog) ForCategory(category Category) Catalog {
	if category == "" || category == CategoryNone {
		return c
	}
	out := make(Catalog, 0, len(c))
	for _, item := range c {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// FindTitle returns the criterion whose title matches, ignoring case and
// surrounding whitespace.
func (c Catalog) FindTitle(title string) (Criterion, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Criterion{}, false
	}
	for _, item := range c {
		if strings.EqualFold(strings.TrimSpace(item.Title), title) {
			return item, true
		}
	}
	return Criterion{}, false
}

// Sorted returns a copy ordered by category then display order.
func (c Catalog) Sorted() Catalog {
	out := append(Catalog(nil), c...)
	rank := make(map[Category]int)
	for i, cat := range Categories() {
		rank[cat] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return rank[out[i].Category] < rank[out[j].Category]
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// titleMatchThreshold is the minimum weighted cosine score for ClosestTitle.
const titleMatchThreshold = 0.5

// ClosestTitle finds the criterion of the given polarity whose title best
// matches title by token overlap. It is the fallback when FindTitle misses
// because a model paraphrased the catalog wording. Polarity is required so
// "Following Child Lead" never resolves to "Not Following Child Lead".
func (c Catalog) ClosestTitle(title string, polarity Polarity) (Criterion, bool) {
	candidates := make(Catalog, 0, len(c))
	titles := make([]string, 0, len(c))
	for _, item := range c {
		if item.Polarity == polarity {
			candidates = append(candidates, item)
			titles = append(titles, item.Title)
		}
	}
	idx, _ := textutil.BestMatch(title, titles, titleMatchThreshold)
	if idx < 0 {
		return Criterion{}, false
	}
	return candidates[idx], true
}
