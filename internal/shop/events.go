package shop

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventPaymentUploaded  = "PaymentProofUploaded"
	EventPaymentConfirmed = "PaymentConfirmed"
	EventPaymentRejected  = "PaymentRejected"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID        string        `json:"order_id"`
	CustomerName   string        `json:"customer_name"`
	CustomerEmail  string        `json:"customer_email"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	TotalAmount    int64         `json:"total_amount"`
	PaymentDueDate *time.Time    `json:"payment_due_date,omitempty"`
}

type PaymentUploadedPayload struct {
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`
	ProofURL      string `json:"proof_url"`
}

type PaymentReviewedPayload struct {
	OrderID       string        `json:"order_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Notes         string        `json:"notes,omitempty"`
	ConfirmedBy   string        `json:"confirmed_by"`
}
