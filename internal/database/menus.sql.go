package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const menuColumns = `id, merchant_id, category_id, name, description, price, image_url, is_available, deleted_at, created_at, updated_at`

func scanMenu(row interface{ Scan(...any) error }) (Menu, error) {
	var i Menu
	err := row.Scan(
		&i.ID,
		&i.MerchantID,
		&i.CategoryID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.IsAvailable,
		&i.DeletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectMenus(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
}) ([]Menu, error) {
	defer rows.Close()
	var items []Menu
	for rows.Next() {
		i, err := scanMenu(rows)
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

const listMenusByMerchant = `-- name: ListMenusByMerchant :many
SELECT ` + menuColumns + ` FROM menus
WHERE merchant_id = $1
  AND deleted_at IS NULL
  AND ($2::text IS NULL OR category_id = $2)
ORDER BY name
`

type ListMenusByMerchantParams struct {
	MerchantID string      `json:"merchant_id"`
	CategoryID pgtype.Text `json:"category_id"`
}

func (q *Queries) ListMenusByMerchant(ctx context.Context, arg ListMenusByMerchantParams) ([]Menu, error) {
	rows, err := q.db.Query(ctx, listMenusByMerchant, arg.MerchantID, arg.CategoryID)
	if err != nil {
		return nil, err
	}
	return collectMenus(rows)
}

const listMenusByIDs = `-- name: ListMenusByIDs :many
SELECT ` + menuColumns + ` FROM menus
WHERE id = ANY($1::text[]) AND deleted_at IS NULL
FOR SHARE
`

func (q *Queries) ListMenusByIDs(ctx context.Context, ids []string) ([]Menu, error) {
	rows, err := q.db.Query(ctx, listMenusByIDs, ids)
	if err != nil {
		return nil, err
	}
	return collectMenus(rows)
}

const getMenu = `-- name: GetMenu :one
SELECT ` + menuColumns + ` FROM menus
WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL
`

type GetMenuParams struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
}

func (q *Queries) GetMenu(ctx context.Context, arg GetMenuParams) (Menu, error) {
	return scanMenu(q.db.QueryRow(ctx, getMenu, arg.ID, arg.MerchantID))
}

const createMenu = `-- name: CreateMenu :one
INSERT INTO menus (id, merchant_id, category_id, name, description, price, image_url, is_available)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + menuColumns

type CreateMenuParams struct {
	ID          string         `json:"id"`
	MerchantID  string         `json:"merchant_id"`
	CategoryID  pgtype.Text    `json:"category_id"`
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Price       pgtype.Numeric `json:"price"`
	ImageUrl    pgtype.Text    `json:"image_url"`
	IsAvailable bool           `json:"is_available"`
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	row := q.db.QueryRow(ctx, createMenu,
		arg.ID,
		arg.MerchantID,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.IsAvailable,
	)
	return scanMenu(row)
}

const updateMenu = `-- name: UpdateMenu :one
UPDATE menus
SET category_id = $3, name = $4, description = $5, price = $6, image_url = $7, updated_at = now()
WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL
RETURNING ` + menuColumns

type UpdateMenuParams struct {
	ID          string         `json:"id"`
	MerchantID  string         `json:"merchant_id"`
	CategoryID  pgtype.Text    `json:"category_id"`
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Price       pgtype.Numeric `json:"price"`
	ImageUrl    pgtype.Text    `json:"image_url"`
}

func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (Menu, error) {
	row := q.db.QueryRow(ctx, updateMenu,
		arg.ID,
		arg.MerchantID,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
	)
	return scanMenu(row)
}

const setMenuAvailability = `-- name: SetMenuAvailability :one
UPDATE menus
SET is_available = $3, updated_at = now()
WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL
RETURNING ` + menuColumns

type SetMenuAvailabilityParams struct {
	ID          string `json:"id"`
	MerchantID  string `json:"merchant_id"`
	IsAvailable bool   `json:"is_available"`
}

func (q *Queries) SetMenuAvailability(ctx context.Context, arg SetMenuAvailabilityParams) (Menu, error) {
	return scanMenu(q.db.QueryRow(ctx, setMenuAvailability, arg.ID, arg.MerchantID, arg.IsAvailable))
}

const softDeleteMenu = `-- name: SoftDeleteMenu :one
UPDATE menus
SET deleted_at = now(), is_available = FALSE, updated_at = now()
WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL
RETURNING id
`

type SoftDeleteMenuParams struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
}

func (q *Queries) SoftDeleteMenu(ctx context.Context, arg SoftDeleteMenuParams) (string, error) {
	row := q.db.QueryRow(ctx, softDeleteMenu, arg.ID, arg.MerchantID)
	var id string
	err := row.Scan(&id)
	return id, err
}
