package models

import "time"

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
)

// Service is one optional add-on from the service catalog. Price is in cents.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// SaveOrderRequest is an idempotent upsert keyed by TxRef.
type SaveOrderRequest struct {
	TxRef          string       `json:"tx_ref"`
	Status         OrderStatus  `json:"status"`
	Snapshot       IntakeRecord `json:"snapshot"`
	AmountCents    int64        `json:"amount_cents"`
	SuppressEmails bool         `json:"suppress_emails"`
	TransactionID  string       `json:"transaction_id,omitempty"`
}

type SavedOrder struct {
	ID             int64        `json:"id"`
	TxRef          string       `json:"tx_ref"`
	Status         OrderStatus  `json:"status"`
	AmountCents    int64        `json:"amount_cents"`
	CustomerEmail  string       `json:"customer_email"`
	SuppressEmails bool         `json:"suppress_emails"`
	TransactionID  string       `json:"transaction_id,omitempty"`
	Snapshot       IntakeRecord `json:"snapshot"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type PaymentRequest struct {
	Amount      string `json:"amount"` // decimal major units, e.g. "94.00"
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
}

type PaymentSession struct {
	CheckoutURL string `json:"checkout_url"`
}
