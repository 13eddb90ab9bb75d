package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const merchantColumns = `id, name, phone, password_hash, description, image_url, is_available, deleted_at, created_at, updated_at`

func scanMerchant(row interface{ Scan(...any) error }) (Merchant, error) {
	var i Merchant
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Phone,
		&i.PasswordHash,
		&i.Description,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.DeletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createMerchant = `-- name: CreateMerchant :one
INSERT INTO merchants (id, name, phone, password_hash, description, image_url, is_available)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + merchantColumns

type CreateMerchantParams struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	PasswordHash string      `json:"password_hash"`
	Description  pgtype.Text `json:"description"`
	ImageUrl     pgtype.Text `json:"image_url"`
	IsAvailable  bool        `json:"is_available"`
}

func (q *Queries) CreateMerchant(ctx context.Context, arg CreateMerchantParams) (Merchant, error) {
	row := q.db.QueryRow(ctx, createMerchant,
		arg.ID,
		arg.Name,
		arg.Phone,
		arg.PasswordHash,
		arg.Description,
		arg.ImageUrl,
		arg.IsAvailable,
	)
	return scanMerchant(row)
}

const getMerchant = `-- name: GetMerchant :one
SELECT ` + merchantColumns + ` FROM merchants
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) GetMerchant(ctx context.Context, id string) (Merchant, error) {
	return scanMerchant(q.db.QueryRow(ctx, getMerchant, id))
}

const getMerchantByPhone = `-- name: GetMerchantByPhone :one
SELECT ` + merchantColumns + ` FROM merchants
WHERE phone = $1 AND deleted_at IS NULL
`

func (q *Queries) GetMerchantByPhone(ctx context.Context, phone string) (Merchant, error) {
	return scanMerchant(q.db.QueryRow(ctx, getMerchantByPhone, phone))
}

const listMerchants = `-- name: ListMerchants :many
SELECT ` + merchantColumns + ` FROM merchants
WHERE deleted_at IS NULL
  AND ($1::boolean IS FALSE OR is_available)
ORDER BY name
`

// ListMerchants returns undeleted merchants; onlyAvailable narrows to open ones.
func (q *Queries) ListMerchants(ctx context.Context, onlyAvailable bool) ([]Merchant, error) {
	rows, err := q.db.Query(ctx, listMerchants, onlyAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Merchant
	for rows.Next() {
		i, err := scanMerchant(rows)
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

const listMerchantsByIDs = `-- name: ListMerchantsByIDs :many
SELECT ` + merchantColumns + ` FROM merchants
WHERE id = ANY($1::text[]) AND deleted_at IS NULL
FOR SHARE
`

func (q *Queries) ListMerchantsByIDs(ctx context.Context, ids []string) ([]Merchant, error) {
	rows, err := q.db.Query(ctx, listMerchantsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Merchant
	for rows.Next() {
		i, err := scanMerchant(rows)
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

const updateMerchant = `-- name: UpdateMerchant :one
UPDATE merchants
SET name = $2, phone = $3, description = $4, image_url = $5, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + merchantColumns

type UpdateMerchantParams struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Description pgtype.Text `json:"description"`
	ImageUrl    pgtype.Text `json:"image_url"`
}

func (q *Queries) UpdateMerchant(ctx context.Context, arg UpdateMerchantParams) (Merchant, error) {
	row := q.db.QueryRow(ctx, updateMerchant,
		arg.ID,
		arg.Name,
		arg.Phone,
		arg.Description,
		arg.ImageUrl,
	)
	return scanMerchant(row)
}

const setMerchantAvailability = `-- name: SetMerchantAvailability :one
UPDATE merchants
SET is_available = $2, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + merchantColumns

type SetMerchantAvailabilityParams struct {
	ID          string `json:"id"`
	IsAvailable bool   `json:"is_available"`
}

func (q *Queries) SetMerchantAvailability(ctx context.Context, arg SetMerchantAvailabilityParams) (Merchant, error) {
	return scanMerchant(q.db.QueryRow(ctx, setMerchantAvailability, arg.ID, arg.IsAvailable))
}

const updateMerchantPassword = `-- name: UpdateMerchantPassword :exec
UPDATE merchants
SET password_hash = $2, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
`

type UpdateMerchantPasswordParams struct {
	ID           string `json:"id"`
	PasswordHash string `json:"password_hash"`
}

func (q *Queries) UpdateMerchantPassword(ctx context.Context, arg UpdateMerchantPasswordParams) error {
	_, err := q.db.Exec(ctx, updateMerchantPassword, arg.ID, arg.PasswordHash)
	return err
}

const softDeleteMerchant = `-- name: SoftDeleteMerchant :one
UPDATE merchants
SET deleted_at = now(), is_available = FALSE, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id
`

func (q *Queries) SoftDeleteMerchant(ctx context.Context, id string) (string, error) {
	row := q.db.QueryRow(ctx, softDeleteMerchant, id)
	var deleted string
	err := row.Scan(&deleted)
	return deleted, err
}
