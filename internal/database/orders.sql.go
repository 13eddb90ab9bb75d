package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, session_id, merchant_id, customer_name, customer_phone, notes, total_amount, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.SessionID,
		&i.MerchantID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.Notes,
		&i.TotalAmount,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectOrders(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
}) ([]Order, error) {
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createOrders = `-- name: CreateOrders :exec
INSERT INTO orders (id, session_id, merchant_id, customer_name, customer_phone, notes, total_amount, status)
SELECT o.id, $4::uuid, o.merchant_id, $5, $6, $7, o.total_amount, 'pending'
FROM unnest($1::text[], $2::text[], $3::numeric[]) AS o(id, merchant_id, total_amount)
`

// CreateOrdersParams inserts one order per element of IDs; IDs, MerchantIDs
// and TotalAmounts are parallel arrays.
type CreateOrdersParams struct {
	IDs           []string         `json:"ids"`
	MerchantIDs   []string         `json:"merchant_ids"`
	TotalAmounts  []pgtype.Numeric `json:"total_amounts"`
	SessionID     uuid.UUID        `json:"session_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Notes         pgtype.Text      `json:"notes"`
}

func (arg CreateOrdersParams) args() []any {
	return []any{
		arg.IDs,
		arg.MerchantIDs,
		arg.TotalAmounts,
		arg.SessionID,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.Notes,
	}
}

const createOrderItems = `-- name: CreateOrderItems :exec
INSERT INTO order_items (id, order_id, menu_id, menu_name, menu_image_url, quantity, unit_price, subtotal)
SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::int4[], $7::numeric[], $8::numeric[])
`

// CreateOrderItemsParams holds parallel arrays, one element per order item.
type CreateOrderItemsParams struct {
	IDs           []string         `json:"ids"`
	OrderIDs      []string         `json:"order_ids"`
	MenuIDs       []string         `json:"menu_ids"`
	MenuNames     []string         `json:"menu_names"`
	MenuImageUrls []pgtype.Text    `json:"menu_image_urls"`
	Quantities    []int32          `json:"quantities"`
	UnitPrices    []pgtype.Numeric `json:"unit_prices"`
	Subtotals     []pgtype.Numeric `json:"subtotals"`
}

func (arg CreateOrderItemsParams) args() []any {
	return []any{
		arg.IDs,
		arg.OrderIDs,
		arg.MenuIDs,
		arg.MenuNames,
		arg.MenuImageUrls,
		arg.Quantities,
		arg.UnitPrices,
		arg.Subtotals,
	}
}

const getMerchantOrder = `-- name: GetMerchantOrder :one
SELECT ` + orderColumns + ` FROM orders
WHERE id = $1 AND merchant_id = $2
`

type GetMerchantOrderParams struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
}

func (q *Queries) GetMerchantOrder(ctx context.Context, arg GetMerchantOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getMerchantOrder, arg.ID, arg.MerchantID))
}

const listOrdersByIDs = `-- name: ListOrdersByIDs :many
SELECT ` + orderColumns + ` FROM orders
WHERE id = ANY($1::text[])
ORDER BY id
`

func (q *Queries) ListOrdersByIDs(ctx context.Context, ids []string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByIDs, ids)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

const listOrdersBySession = `-- name: ListOrdersBySession :many
SELECT ` + orderColumns + ` FROM orders
WHERE session_id = $1
ORDER BY id DESC
`

func (q *Queries) ListOrdersBySession(ctx context.Context, sessionID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersBySession, sessionID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR merchant_id = $1)
  AND ($2::order_status IS NULL OR status = $2)
ORDER BY id DESC
LIMIT $3 OFFSET $4
`

type ListOrdersParams struct {
	MerchantID pgtype.Text     `json:"merchant_id"`
	Status     NullOrderStatus `json:"status"`
	Limit      int32           `json:"limit"`
	Offset     int32           `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.MerchantID,
		arg.Status,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

const listOrderItemsByOrderIDs = `-- name: ListOrderItemsByOrderIDs :many
SELECT id, order_id, menu_id, menu_name, menu_image_url, quantity, unit_price, subtotal, created_at FROM order_items
WHERE order_id = ANY($1::text[])
ORDER BY order_id, id
`

func (q *Queries) ListOrderItemsByOrderIDs(ctx context.Context, orderIDs []string) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrderIDs, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuID,
			&i.MenuName,
			&i.MenuImageUrl,
			&i.Quantity,
			&i.UnitPrice,
			&i.Subtotal,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND merchant_id = $2 AND status = $4
RETURNING ` + orderColumns

// UpdateOrderStatusParams is compare-and-set: the row only changes while its
// status still equals From.
type UpdateOrderStatusParams struct {
	ID         string      `json:"id"`
	MerchantID string      `json:"merchant_id"`
	Status     OrderStatus `json:"status"`
	From       OrderStatus `json:"from"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus,
		arg.ID,
		arg.MerchantID,
		arg.Status,
		arg.From,
	)
	return scanOrder(row)
}
