package database

import (
	"context"
)

const categoryColumns = `id, merchant_id, name, sort_order, deleted_at, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (MenuCategory, error) {
	var i MenuCategory
	err := row.Scan(
		&i.ID,
		&i.MerchantID,
		&i.Name,
		&i.SortOrder,
		&i.DeletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listCategoriesByMerchant = `-- name: ListCategoriesByMerchant :many
SELECT ` + categoryColumns + ` FROM menu_categories
WHERE merchant_id = $1 AND deleted_at IS NULL
ORDER BY sort_order, name
`

func (q *Queries) ListCategoriesByMerchant(ctx context.Context, merchantID string) ([]MenuCategory, error) {
	rows, err := q.db.Query(ctx, listCategoriesByMerchant, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuCategory
	for rows.Next() {
		i, err := scanCategory(rows)
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

const getCategory = `-- name: GetCategory :one
SELECT ` + categoryColumns + ` FROM menu_categories
WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL
`

type GetCategoryParams struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
}

func (q *Queries) GetCategory(ctx context.Context, arg GetCategoryParams) (MenuCategory, error) {
	return scanCategory(q.db.QueryRow(ctx, getCategory, arg.ID, arg.MerchantID))
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO menu_categories (id, merchant_id, name, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name"`
	SortOrder  int32  `json:"sort_order"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, createCategory,
		arg.ID,
		arg.MerchantID,
		arg.Name,
		arg.SortOrder,
	)
	return scanCategory(row)
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE menu_categories
SET name = $3, sort_order = $4, updated_at = now()
WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name"`
	SortOrder  int32  `json:"sort_order"`
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, updateCategory,
		arg.ID,
		arg.MerchantID,
		arg.Name,
		arg.SortOrder,
	)
	return scanCategory(row)
}

const softDeleteCategory = `-- name: SoftDeleteCategory :one
WITH detached AS (
    UPDATE menus SET category_id = NULL, updated_at = now()
    WHERE category_id = $1 AND merchant_id = $2
)
UPDATE menu_categories
SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL
RETURNING id
`

type SoftDeleteCategoryParams struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
}

func (q *Queries) SoftDeleteCategory(ctx context.Context, arg SoftDeleteCategoryParams) (string, error) {
	row := q.db.QueryRow(ctx, softDeleteCategory, arg.ID, arg.MerchantID)
	var id string
	err := row.Scan(&id)
	return id, err
}
