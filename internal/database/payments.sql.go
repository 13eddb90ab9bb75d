package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const paymentColumns = `id, order_id, amount, method, status, reference, paid_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (Payment, error) {
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Amount,
		&i.Method,
		&i.Status,
		&i.Reference,
		&i.PaidAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (id, order_id, amount, method, status)
VALUES ($1, $2, $3, $4, 'pending')
RETURNING ` + paymentColumns

type CreatePaymentParams struct {
	ID      string         `json:"id"`
	OrderID string         `json:"order_id"`
	Amount  pgtype.Numeric `json:"amount"`
	Method  PaymentMethod  `json:"method"`
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.ID,
		arg.OrderID,
		arg.Amount,
		arg.Method,
	)
	return scanPayment(row)
}

const getLivePaymentByOrder = `-- name: GetLivePaymentByOrder :one
SELECT ` + paymentColumns + ` FROM payments
WHERE order_id = $1 AND status <> 'failed'
`

// GetLivePaymentByOrder returns the pending or paid intent of an order.
func (q *Queries) GetLivePaymentByOrder(ctx context.Context, orderID string) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getLivePaymentByOrder, orderID))
}

const getPayment = `-- name: GetPayment :one
SELECT ` + paymentColumns + ` FROM payments
WHERE id = $1
`

func (q *Queries) GetPayment(ctx context.Context, id string) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPayment, id))
}

const listPaymentsByOrderIDs = `-- name: ListPaymentsByOrderIDs :many
SELECT ` + paymentColumns + ` FROM payments
WHERE order_id = ANY($1::text[])
ORDER BY order_id, id
`

func (q *Queries) ListPaymentsByOrderIDs(ctx context.Context, orderIDs []string) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPaymentsByOrderIDs, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		i, err := scanPayment(rows)
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

const settlePayment = `-- name: SettlePayment :one
UPDATE payments
SET status = $2,
    reference = COALESCE($3, reference),
    paid_at = CASE WHEN $2 = 'paid'::payment_status THEN now() ELSE paid_at END,
    updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING ` + paymentColumns

// SettlePaymentParams moves a pending intent to paid or failed.
type SettlePaymentParams struct {
	ID        string        `json:"id"`
	Status    PaymentStatus `json:"status"`
	Reference pgtype.Text   `json:"reference"`
}

func (q *Queries) SettlePayment(ctx context.Context, arg SettlePaymentParams) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, settlePayment, arg.ID, arg.Status, arg.Reference))
}
