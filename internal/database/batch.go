package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateOrdersWithItems inserts a checkout's orders and order items as two
// multi-row statements pipelined in a single round trip. The statements run
// in queue order, so parent orders exist before their items are inserted.
// Callers must run this inside a transaction for the pair to be atomic.
func (q *Queries) CreateOrdersWithItems(ctx context.Context, orders CreateOrdersParams, items CreateOrderItemsParams) error {
	b := &pgx.Batch{}
	b.Queue(createOrders, orders.args()...)
	b.Queue(createOrderItems, items.args()...)

	br := q.db.SendBatch(ctx, b)

	tag, err := br.Exec()
	if err != nil {
		br.Close()
		return fmt.Errorf("insert orders: %w", err)
	}
	if tag.RowsAffected() != int64(len(orders.IDs)) {
		br.Close()
		return fmt.Errorf("insert orders: inserted %d of %d rows", tag.RowsAffected(), len(orders.IDs))
	}

	tag, err = br.Exec()
	if err != nil {
		br.Close()
		return fmt.Errorf("insert order items: %w", err)
	}
	if tag.RowsAffected() != int64(len(items.IDs)) {
		br.Close()
		return fmt.Errorf("insert order items: inserted %d of %d rows", tag.RowsAffected(), len(items.IDs))
	}

	return br.Close()
}
