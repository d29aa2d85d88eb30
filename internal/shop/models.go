package shop

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Order struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`

	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TotalAmount   int64         `json:"totalAmount"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`

	// Snapshot instruksi pembayaran saat order dibuat (lihat payment.go).
	PaymentProof        string     `json:"paymentProof,omitempty"`
	PaymentNotes        string     `json:"paymentNotes,omitempty"`
	PaymentInstructions string     `json:"paymentInstructions,omitempty"`
	BankName            string     `json:"bankName,omitempty"`
	AccountNumber       string     `json:"accountNumber,omitempty"`
	AccountName         string     `json:"accountName,omitempty"`
	PaymentDueDate      *time.Time `json:"paymentDueDate,omitempty"`
	ConfirmedBy         string     `json:"confirmedBy,omitempty"`
	PaidAt              *time.Time `json:"paidAt,omitempty"`

	Items []OrderItem `json:"orderItems"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// Price adalah snapshot harga produk saat order dibuat, tidak pernah
	// dihitung ulang dari harga produk terkini.
	Price   int64    `json:"price"`
	Product *Product `json:"product,omitempty"`
}

type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
