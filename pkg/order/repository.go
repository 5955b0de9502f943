package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Repository persists orders through database/sql. Lines are stored as JSON.
type Repository struct {
	db *sql.DB
}

// NewRepository wires the database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// timeLayout has a fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `id, lines, subtotal, shipping, tax, total, status,
	ship_name, ship_email, ship_address, ship_city, ship_postal_code, created_at`

// Save inserts a new order.
func (r *Repository) Save(ctx context.Context, order Order) (Order, error) {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return Order{}, fmt.Errorf("encode order lines: %w", err)
	}

	addr := order.ShippingAddress
	query := "INSERT INTO orders (" + selectColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err = r.db.ExecContext(ctx, query,
		order.ID, string(lines),
		order.Subtotal.String(), order.Shipping.String(), order.Tax.String(), order.Total.String(),
		string(order.Status),
		addr.Name, addr.Email, addr.Address, addr.City, addr.PostalCode,
		order.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// Get fetches one order by id.
func (r *Repository) Get(ctx context.Context, id string) (Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM orders WHERE id = ?", id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return order, err
}

// List returns every order, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM orders ORDER BY created_at DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (Order, error) {
	var (
		order     Order
		linesData string
		status    string
		createdAt string
		amounts   [4]decimal.Decimal
	)
	addr := &order.ShippingAddress
	if err := row.Scan(&order.ID, &linesData,
		&amounts[0], &amounts[1], &amounts[2], &amounts[3], &status,
		&addr.Name, &addr.Email, &addr.Address, &addr.City, &addr.PostalCode,
		&createdAt); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal([]byte(linesData), &order.Lines); err != nil {
		return Order{}, fmt.Errorf("decode lines of order %s: %w", order.ID, err)
	}
	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Order{}, fmt.Errorf("decode created_at of order %s: %w", order.ID, err)
	}
	order.Subtotal, order.Shipping, order.Tax, order.Total = amounts[0], amounts[1], amounts[2], amounts[3]
	order.Status = Status(status)
	order.CreatedAt = created
	return order, nil
}
