package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createSession = `-- name: CreateSession :one
INSERT INTO buyer_sessions (id, table_number, expires_at)
VALUES ($1, $2, $3)
RETURNING id, table_number, expires_at, created_at
`

type CreateSessionParams struct {
	ID          uuid.UUID   `json:"id"`
	TableNumber pgtype.Text `json:"table_number"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (BuyerSession, error) {
	row := q.db.QueryRow(ctx, createSession, arg.ID, arg.TableNumber, arg.ExpiresAt)
	var i BuyerSession
	err := row.Scan(
		&i.ID,
		&i.TableNumber,
		&i.ExpiresAt,
		&i.CreatedAt,
	)
	return i, err
}

const getSession = `-- name: GetSession :one
SELECT id, table_number, expires_at, created_at FROM buyer_sessions
WHERE id = $1
`

func (q *Queries) GetSession(ctx context.Context, id uuid.UUID) (BuyerSession, error) {
	row := q.db.QueryRow(ctx, getSession, id)
	var i BuyerSession
	err := row.Scan(
		&i.ID,
		&i.TableNumber,
		&i.ExpiresAt,
		&i.CreatedAt,
	)
	return i, err
}
