package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const countMerchants = `-- name: CountMerchants :one
SELECT count(*) AS total, count(*) FILTER (WHERE is_available) AS available
FROM merchants
WHERE deleted_at IS NULL
`

type CountMerchantsRow struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
}

func (q *Queries) CountMerchants(ctx context.Context) (CountMerchantsRow, error) {
	row := q.db.QueryRow(ctx, countMerchants)
	var i CountMerchantsRow
	err := row.Scan(&i.Total, &i.Available)
	return i, err
}

const countOrdersByStatusSince = `-- name: CountOrdersByStatusSince :many
SELECT status, count(*) AS total
FROM orders
WHERE created_at >= $1
GROUP BY status
`

type CountOrdersByStatusSinceRow struct {
	Status OrderStatus `json:"status"`
	Total  int64       `json:"total"`
}

func (q *Queries) CountOrdersByStatusSince(ctx context.Context, since time.Time) ([]CountOrdersByStatusSinceRow, error) {
	rows, err := q.db.Query(ctx, countOrdersByStatusSince, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountOrdersByStatusSinceRow
	for rows.Next() {
		var i CountOrdersByStatusSinceRow
		if err := rows.Scan(&i.Status, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumCompletedRevenueSince = `-- name: SumCompletedRevenueSince :one
SELECT COALESCE(sum(total_amount), 0)::numeric AS revenue
FROM orders
WHERE status = 'completed' AND created_at >= $1
`

func (q *Queries) SumCompletedRevenueSince(ctx context.Context, since time.Time) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumCompletedRevenueSince, since)
	var revenue pgtype.Numeric
	err := row.Scan(&revenue)
	return revenue, err
}
