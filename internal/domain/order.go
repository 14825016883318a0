package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

// orderTransitions lists the allowed predecessor states per target state.
// Writing the same status an order already has is a no-op, not an error.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderConfirmed:  {OrderPending},
	OrderProcessing: {OrderPending, OrderConfirmed},
	OrderShipped:    {OrderConfirmed, OrderProcessing},
	OrderDelivered:  {OrderShipped},
	OrderCancelled:  {OrderPending, OrderConfirmed, OrderProcessing},
	OrderRefunded:   {OrderDelivered, OrderCancelled},
}

// CanTransitionOrder reports whether an order may move from one status to
// another under the transition table.
func CanTransitionOrder(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range orderTransitions[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// OrderLine is an immutable snapshot of a purchased line item: the unit
// price is the price at time of purchase, not a live join.
type OrderLine struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
}

// OrderAddress is a point-in-time copy of a shipping or billing address.
type OrderAddress struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Lines           []OrderLine     `json:"items"`
	ShippingAddress OrderAddress    `json:"shippingAddress"`
	BillingAddress  OrderAddress    `json:"billingAddress"`
	ShippingMethod  ShippingMethod  `json:"shippingMethod"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"taxAmount"`
	Shipping        decimal.Decimal `json:"shippingCost"`
	Discount        decimal.Decimal `json:"discountAmount"`
	Total           decimal.Decimal `json:"totalAmount"`
	TrackingNumber  *string         `json:"trackingNumber,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
}

// OrderStats aggregates order counts and revenue for the admin dashboard.
type OrderStats struct {
	TotalOrders       int             `json:"totalOrders"`
	PendingOrders     int             `json:"pendingOrders"`
	ProcessingOrders  int             `json:"processingOrders"`
	ShippedOrders     int             `json:"shippedOrders"`
	DeliveredOrders   int             `json:"deliveredOrders"`
	CancelledOrders   int             `json:"cancelledOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}
