package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists products through database/sql so storage backends stay swappable.
type Repository struct {
	db *sql.DB
}

// NewRepository wires the database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = "id, name, description, price, image_url, category, featured, spice_level, in_stock"

// Save inserts a product or replaces the stored fields of an existing id.
// New products are appended after the current ones; replaced products keep their position.
func (r *Repository) Save(ctx context.Context, item Item) (Item, error) {
	query := `INSERT INTO products (` + selectColumns + `, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM products))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			image_url = excluded.image_url,
			category = excluded.category,
			featured = excluded.featured,
			spice_level = excluded.spice_level,
			in_stock = excluded.in_stock`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.Price.String(), item.ImageURL,
		string(item.Category), item.Featured, string(item.SpiceLevel), item.InStock)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// Update replaces an existing product and reports ErrNotFound for unknown ids.
func (r *Repository) Update(ctx context.Context, item Item) error {
	query := `UPDATE products SET name = ?, description = ?, price = ?, image_url = ?, category = ?,
		featured = ?, spice_level = ?, in_stock = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		item.Name, item.Description, item.Price.String(), item.ImageURL, string(item.Category),
		item.Featured, string(item.SpiceLevel), item.InStock, item.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Get fetches one product by id.
func (r *Repository) Get(ctx context.Context, id string) (Item, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM products WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return item, err
}

// List returns every product in catalog order.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM products ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a product from the shelves.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Count reports how many products are stored.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var (
		item     Item
		category string
		spice    string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.ImageURL,
		&category, &item.Featured, &spice, &item.InStock); err != nil {
		return Item{}, err
	}
	item.Category = Category(category)
	item.SpiceLevel = SpiceLevel(spice)
	return item, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
