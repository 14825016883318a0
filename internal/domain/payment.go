package domain

import "time"

type PaymentMethodType string

const (
	PaymentTypeCreditCard   PaymentMethodType = "credit_card"
	PaymentTypeDebitCard    PaymentMethodType = "debit_card"
	PaymentTypePayPal       PaymentMethodType = "paypal"
	PaymentTypeApplePay     PaymentMethodType = "apple_pay"
	PaymentTypeGooglePay    PaymentMethodType = "google_pay"
	PaymentTypeBankTransfer PaymentMethodType = "bank_transfer"
)

// PaymentMethodStatus is the lifecycle of a stored payment method, distinct
// from an order's PaymentStatus. Removal is a soft delete: removed rows stay
// for audit but never appear in listings.
type PaymentMethodStatus string

const (
	PaymentMethodActive  PaymentMethodStatus = "active"
	PaymentMethodExpired PaymentMethodStatus = "expired"
	PaymentMethodBlocked PaymentMethodStatus = "blocked"
	PaymentMethodRemoved PaymentMethodStatus = "removed"
)

// CardDetails holds the displayable remainder of a tokenized card. Only the
// last four digits are ever stored.
type CardDetails struct {
	Brand          string `json:"brand"`
	LastFour       string `json:"lastFour"`
	ExpiryMonth    int    `json:"expiryMonth"`
	ExpiryYear     int    `json:"expiryYear"`
	CardholderName string `json:"cardholderName"`
}

type PayPalDetails struct {
	Email string `json:"email"`
}

type BankDetails struct {
	AccountHolder string `json:"accountHolder"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	RoutingNumber string `json:"routingNumber,omitempty"`
}

// PaymentMethod is a stored way to pay. Exactly one of Card, PayPal, or
// Bank is set, matching Type. At most one active method per user carries
// IsDefault.
type PaymentMethod struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	Type       PaymentMethodType   `json:"type"`
	Nickname   string              `json:"nickname,omitempty"`
	Status     PaymentMethodStatus `json:"status"`
	IsDefault  bool                `json:"isDefault"`
	Card       *CardDetails        `json:"card,omitempty"`
	PayPal     *PayPalDetails      `json:"paypal,omitempty"`
	Bank       *BankDetails        `json:"bank,omitempty"`
	LastUsedAt *time.Time          `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}
