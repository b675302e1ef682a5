package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the current progress of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusDisputed  OrderStatus = "disputed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transition is defined from s.
// Administrative override is the only way out of a terminal status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusReceived, OrderStatusDisputed, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentMethod of an order.
type PaymentMethod string

const (
	PaymentMethodOnline     PaymentMethod = "online"
	PaymentMethodOnDelivery PaymentMethod = "on_delivery"
)

// PaymentStatus of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order is a shopping order placed by a customer. Money fields are decimals;
// Total must equal Subtotal + ShippingCost at creation and stay that way until
// a transition explicitly modifies the financial fields.
type Order struct {
	ID            int64           `db:"id" json:"id"`
	OrderNumber   string          `db:"order_number" json:"order_number"`
	UserID        int64           `db:"user_id" json:"user_id"`
	Status        OrderStatus     `db:"status" json:"status"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`

	ShippingAddress    string `db:"shipping_address" json:"shipping_address"`
	ShippingCity       string `db:"shipping_city" json:"shipping_city"`
	ShippingPostalCode string `db:"shipping_postal_code" json:"shipping_postal_code"`
	ShippingCountry    string `db:"shipping_country" json:"shipping_country"`

	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
	ShippingCost decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	Total        decimal.Decimal `db:"total" json:"total"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line item snapshot taken at order time. It does not reference
// the live catalog, so later catalog changes cannot distort historical invoices.
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	StoreName   string          `db:"store_name" json:"store_name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
}
