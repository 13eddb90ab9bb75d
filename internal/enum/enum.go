package enum

// ── Roles (JWT claim) ──

const (
	RoleAdmin    = "ADMIN"
	RoleMerchant = "MERCHANT"
)

// ── Checkout limits ──

const (
	MaxItemQuantity = 100
	MaxCustomerName = 100
	MaxNotesLength  = 500
)

// PlaceholderMerchantIDs are values frontends send when a cart entry has no
// resolved merchant. They never reach the database.
var PlaceholderMerchantIDs = map[string]bool{
	"":          true,
	"undefined": true,
	"null":      true,
	"0":         true,
}

// ── Real-time / broker event types ──

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentUpdated     = "payment.updated"
)
