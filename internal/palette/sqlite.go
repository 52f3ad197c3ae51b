package palette

import (
	"context"
	"database/sql"
	"fmt"

	"arbor/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS templates (
	category TEXT NOT NULL,
	category_label TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL,
	type TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	icon TEXT NOT NULL DEFAULT ''
);`

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	// modernc.org/sqlite registers itself as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, p := range []string{"PRAGMA busy_timeout=5000;", schema} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// LoadSQLite reads a catalog from the templates table. Categories keep the
// order in which they first appear; templates are ordered by position.
func LoadSQLite(ctx context.Context, path string) (*Catalog, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT category, category_label, type, label, content, icon
		FROM templates ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	c := &Catalog{}
	labels := map[string]string{}
	for rows.Next() {
		var t model.Template
		var catLabel string
		if err := rows.Scan(&t.Category, &catLabel, &t.TypeTag, &t.Label, &t.Content, &t.Icon); err != nil {
			return nil, err
		}
		c.Add(t)
		if catLabel != "" {
			labels[t.Category] = catLabel
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range c.Categories {
		c.Categories[i].Label = labels[c.Categories[i].Name]
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// WriteSQLite replaces the templates table at path with c.
func WriteSQLite(ctx context.Context, path string, c *Catalog) error {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return err
	}
	pos := 0
	for _, cat := range c.Categories {
		for _, t := range cat.Templates {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO templates(category, category_label, position, type, label, content, icon) VALUES(?, ?, ?, ?, ?, ?, ?)`,
				cat.Name, cat.Label, pos, t.TypeTag, t.Label, t.Content, t.Icon); err != nil {
				return err
			}
			pos++
		}
	}
	return tx.Commit()
}
