package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

type NullOrderStatus struct {
	OrderStatus OrderStatus
	Valid       bool // Valid is true if OrderStatus is not NULL
}

func (ns *NullOrderStatus) Scan(value interface{}) error {
	if value == nil {
		ns.OrderStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderStatus.Scan(value)
}

func (ns NullOrderStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderStatus), nil
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (e *PaymentStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentStatus(s)
	case string:
		*e = PaymentStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentStatus: %T", src)
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodQris PaymentMethod = "qris"
)

func (e *PaymentMethod) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentMethod(s)
	case string:
		*e = PaymentMethod(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentMethod: %T", src)
	}
	return nil
}

type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type Merchant struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Phone        string             `json:"phone"`
	PasswordHash string             `json:"password_hash"`
	Description  pgtype.Text        `json:"description"`
	ImageUrl     pgtype.Text        `json:"image_url"`
	IsAvailable  bool               `json:"is_available"`
	DeletedAt    pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type MenuCategory struct {
	ID         string             `json:"id"`
	MerchantID string             `json:"merchant_id"`
	Name       string             `json:"name"`
	SortOrder  int32              `json:"sort_order"`
	DeletedAt  pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type Menu struct {
	ID          string             `json:"id"`
	MerchantID  string             `json:"merchant_id"`
	CategoryID  pgtype.Text        `json:"category_id"`
	Name        string             `json:"name"`
	Description pgtype.Text        `json:"description"`
	Price       pgtype.Numeric     `json:"price"`
	ImageUrl    pgtype.Text        `json:"image_url"`
	IsAvailable bool               `json:"is_available"`
	DeletedAt   pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type BuyerSession struct {
	ID          uuid.UUID   `json:"id"`
	TableNumber pgtype.Text `json:"table_number"`
	ExpiresAt   time.Time   `json:"expires_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

type Order struct {
	ID            string         `json:"id"`
	SessionID     uuid.UUID      `json:"session_id"`
	MerchantID    string         `json:"merchant_id"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	Notes         pgtype.Text    `json:"notes"`
	TotalAmount   pgtype.Numeric `json:"total_amount"`
	Status        OrderStatus    `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID           string         `json:"id"`
	OrderID      string         `json:"order_id"`
	MenuID       string         `json:"menu_id"`
	MenuName     string         `json:"menu_name"`
	MenuImageUrl pgtype.Text    `json:"menu_image_url"`
	Quantity     int32          `json:"quantity"`
	UnitPrice    pgtype.Numeric `json:"unit_price"`
	Subtotal     pgtype.Numeric `json:"subtotal"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Payment struct {
	ID        string             `json:"id"`
	OrderID   string             `json:"order_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Method    PaymentMethod      `json:"method"`
	Status    PaymentStatus      `json:"status"`
	Reference pgtype.Text        `json:"reference"`
	PaidAt    pgtype.Timestamptz `json:"paid_at"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
