package store

import (
	"context"
	"database/sql"
	"fmt"

	"starreview/internal/practice"
)

// UpsertPractices inserts or updates every criterion keyed by (category,
// title) and returns the number written. The catalog is validated first.
func (s *Store) UpsertPractices(ctx context.Context, catalog practice.Catalog) (int, error) {
	if err := catalog.Validate(); err != nil {
		return 0, err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO practices (category, title, description, criteria, polarity, display_order)
             VALUES (?, ?, ?, ?, ?, ?)
             ON CONFLICT(category, title) DO UPDATE SET
                 title = excluded.title,
                 description = excluded.description,
                 criteria = excluded.criteria,
                 polarity = excluded.polarity,
                 display_order = excluded.display_order`)
		if err != nil {
			return fmt.Errorf("prepare practice upsert: %w", err)
		}
		defer stmt.Close()
		for _, item := range catalog {
			if _, err := stmt.ExecContext(ctx,
				string(item.Category), item.Title, item.Description,
				nullableString(item.Criteria), string(item.Polarity), item.DisplayOrder,
			); err != nil {
				return fmt.Errorf("upsert practice %q: %w", item.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(catalog), nil
}

// ListPractices returns the stored catalog ordered for display. A blank or
// none category returns every practice.
func (s *Store) ListPractices(ctx context.Context, category practice.Category) (practice.Catalog, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, category, title, description, criteria, polarity, display_order FROM practices`
	var args []any
	if category != "" && category != practice.CategoryNone {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY category, display_order, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list practices: %w", err)
	}
	defer rows.Close()

	var catalog practice.Catalog
	for rows.Next() {
		var (
			item     practice.Criterion
			cat      string
			criteria sql.NullString
			polarity string
		)
		if err := rows.Scan(&item.ID, &cat, &item.Title, &item.Description, &criteria, &polarity, &item.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan practice: %w", err)
		}
		item.Category = practice.Category(cat)
		item.Criteria = criteria.String
		item.Polarity = practice.Polarity(polarity)
		catalog = append(catalog, item)
	}
	return catalog, rows.Err()
}
