// Package practice models the rubric of teaching practices that analysis
// results are scored against.
//
// A Catalog is loaded from YAML (see default_catalog.yaml for the bundled
// one), validated, and filtered per video category before it reaches the
// analysis services. Titles are unique within a category; the same title may
// appear in more than one category.
package practice
