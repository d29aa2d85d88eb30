package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paskalshop/paskal-shop/internal/blob"
	"github.com/sirupsen/logrus"
)

// Batas upload bukti pembayaran / foto produk.
const MaxUploadSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

const PlaceholderImage = "/placeholder.svg?height=400&width=400"

type OrderStore interface {
	// CreateOrder menyimpan order + items + decrement stok dalam satu
	// transaksi; gagal di salah satu langkah berarti tidak ada yang tersimpan.
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListByEmail(ctx context.Context, email string) ([]Order, error)
	ListByPaymentStatus(ctx context.Context, status PaymentStatus, page, limit int) ([]Order, int, error)
	SetPaymentProof(ctx context.Context, id, proofURL, notes string) (*Order, error)
	SetPaymentReview(ctx context.Context, id string, review PaymentReview) (*Order, error)
	Stats(ctx context.Context) (OrderStats, error)
}

type PaymentReview struct {
	PaymentStatus PaymentStatus
	Notes         string
	ConfirmedBy   string
	PaidAt        *time.Time
	OrderStatus   *OrderStatus
}

type OrderStats struct {
	Orders         int   `json:"orders"`
	AwaitingReview int   `json:"awaitingReview"`
	Revenue        int64 `json:"revenue"`
}

type SearchParams struct {
	Query      string
	Categories []string
	MinPrice   *int64
	MaxPrice   *int64
	Stock      string // "", "in_stock", "out_of_stock"
	Sort       string
	Page       int
	Limit      int
}

type FilterMeta struct {
	Categories []string   `json:"categories"`
	PriceRange PriceRange `json:"priceRange"`
}

type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type ProductStore interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, search string, page, limit int) ([]Product, int, error)
	Search(ctx context.Context, params SearchParams) ([]Product, int, error)
	Suggestions(ctx context.Context, query string, limit int) ([]Product, error)
	FilterMeta(ctx context.Context) (FilterMeta, error)
	Count(ctx context.Context) (int, error)
}

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByID(ctx context.Context, id string) (*Admin, error)
}

// EventPublisher di-backing kafka producer di cmd/api; fire-and-forget,
// kegagalan publish tidak pernah menggagalkan request.
type EventPublisher interface {
	Publish(topic, eventType string, key, value []byte)
}

type Service struct {
	log      *logrus.Logger
	orders   OrderStore
	products ProductStore
	blobs    blob.Store
	events   EventPublisher
	producer string
}

func NewService(log *logrus.Logger, orders OrderStore, products ProductStore, blobs blob.Store, events EventPublisher, producer string) *Service {
	return &Service{
		log:      log,
		orders:   orders,
		products: products,
		blobs:    blobs,
		events:   events,
		producer: producer,
	}
}

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type CreateOrderInput struct {
	CustomerName  string           `json:"customerName"`
	CustomerEmail string           `json:"customerEmail"`
	CustomerPhone string           `json:"customerPhone"`
	Address       string           `json:"address"`
	City          string           `json:"city"`
	PostalCode    string           `json:"postalCode"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	TotalAmount   int64            `json:"totalAmount"`
	Items         []OrderItemInput `json:"items"`
}

func (in CreateOrderInput) validate() error {
	switch {
	case in.CustomerName == "":
		return Validationf("customerName is required")
	case in.CustomerEmail == "":
		return Validationf("customerEmail is required")
	case in.Address == "":
		return Validationf("address is required")
	case in.City == "":
		return Validationf("city is required")
	case in.PostalCode == "":
		return Validationf("postalCode is required")
	case !ValidMethod(in.PaymentMethod):
		return Validationf("unknown payment method %q", in.PaymentMethod)
	case len(in.Items) == 0:
		return Validationf("items must not be empty")
	}
	var sum int64
	for _, it := range in.Items {
		if it.ProductID == "" {
			return Validationf("item productId is required")
		}
		if it.Quantity <= 0 {
			return Validationf("invalid quantity for product %s", it.ProductID)
		}
		if it.Price < 0 {
			return Validationf("invalid price for product %s", it.ProductID)
		}
		sum += it.Price * int64(it.Quantity)
	}
	if in.TotalAmount != sum {
		return Validationf("totalAmount %d does not match item total %d", in.TotalAmount, sum)
	}
	return nil
}

// CreateOrder membuat order WAITING_PAYMENT dengan snapshot harga dan
// instruksi pembayaran, lalu mengurangi stok tiap produk dalam transaksi
// yang sama.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	info := PaymentInfoFor(in.PaymentMethod, now)

	o := &Order{
		ID:            uuid.NewString(),
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		Address:       in.Address,
		City:          in.City,
		PostalCode:    in.PostalCode,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   in.TotalAmount,
		Status:        OrderPending,
		PaymentStatus: PaymentWaiting,

		PaymentInstructions: info.Instructions,
		BankName:            info.BankName,
		AccountNumber:       info.AccountNumber,
		AccountName:         info.AccountName,
		PaymentDueDate:      info.DueDate,

		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, it := range in.Items {
		o.Items = append(o.Items, OrderItem{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	created, err := s.orders.GetOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	s.publish(TopicOrderCreated, EventOrderCreated, created.ID, OrderCreatedPayload{
		OrderID:        created.ID,
		CustomerName:   created.CustomerName,
		CustomerEmail:  created.CustomerEmail,
		PaymentMethod:  created.PaymentMethod,
		TotalAmount:    created.TotalAmount,
		PaymentDueDate: created.PaymentDueDate,
	})

	s.log.WithFields(logrus.Fields{
		"order_id": created.ID,
		"method":   created.PaymentMethod,
		"total":    created.TotalAmount,
	}).Info("order created")

	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetOrder(ctx, id)
}

func (s *Service) ListOrdersByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.orders.ListByEmail(ctx, email)
}

// Invoice hanya tersedia setelah pembayaran dikonfirmasi.
func (s *Service) Invoice(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus != PaymentConfirmed {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func validateImage(f FileUpload) error {
	if f.Reader == nil || f.Size == 0 {
		return InvalidFilef("no file uploaded")
	}
	if !allowedImageTypes[strings.ToLower(f.ContentType)] {
		return InvalidFilef("unsupported type %s, upload JPG, PNG, or GIF", f.ContentType)
	}
	if f.Size > MaxUploadSize {
		return InvalidFilef("file too large, maximum size is 5MB")
	}
	return nil
}

func uploadExt(name, contentType string) string {
	if ext := path.Ext(name); ext != "" {
		return strings.ToLower(ext)
	}
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	}
	return ".jpg"
}

// SubmitPaymentProof meng-upload bukti bayar lalu memindahkan order ke
// PAYMENT_UPLOADED. Boleh diulang: bukti lama tertimpa, termasuk setelah
// ditolak admin.
func (s *Service) SubmitPaymentProof(ctx context.Context, orderID string, file FileUpload, notes string) (*Order, error) {
	if err := validateImage(file); err != nil {
		return nil, err
	}

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanSubmitProof(o.PaymentStatus) {
		return nil, Validationf("payment already %s", o.PaymentStatus)
	}

	key := fmt.Sprintf("payment-proofs/%s_%d%s", orderID, time.Now().UnixMilli(), uploadExt(file.Name, file.ContentType))
	url, err := s.blobs.Put(ctx, key, file.Reader, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	updated, err := s.orders.SetPaymentProof(ctx, orderID, url, notes)
	if err != nil {
		return nil, err
	}

	s.publish(TopicPaymentUploaded, EventPaymentUploaded, orderID, PaymentUploadedPayload{
		OrderID:       orderID,
		CustomerEmail: updated.CustomerEmail,
		ProofURL:      url,
	})

	s.log.WithField("order_id", orderID).Info("payment proof uploaded")
	return updated, nil
}

// UploadProductImage dipakai admin utk foto produk; validasi sama dengan
// bukti pembayaran.
func (s *Service) UploadProductImage(ctx context.Context, file FileUpload) (string, error) {
	if err := validateImage(file); err != nil {
		return "", err
	}
	key := fmt.Sprintf("products/%d_%s", time.Now().UnixMilli(), sanitizeFilename(file.Name))
	url, err := s.blobs.Put(ctx, key, file.Reader, file.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return url, nil
}

func sanitizeFilename(name string) string {
	if name == "" {
		return "image"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ReviewPayment: transisi admin PAYMENT_UPLOADED -> CONFIRMED | REJECTED.
// Konfirmasi ikut mendorong order ke PROCESSING dan mengisi paidAt.
func (s *Service) ReviewPayment(ctx context.Context, admin Admin, orderID string, target PaymentStatus, notes string) (*Order, error) {
	if orderID == "" || target == "" {
		return nil, Validationf("orderId and paymentStatus are required")
	}
	if !ValidPaymentStatus(target) {
		return nil, Validationf("unknown payment status %q", target)
	}

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.PaymentStatus, target) {
		return nil, Validationf("cannot move payment from %s to %s", o.PaymentStatus, target)
	}

	review := PaymentReview{
		PaymentStatus: target,
		Notes:         notes,
		ConfirmedBy:   admin.Username,
	}
	if target == PaymentConfirmed {
		now := time.Now().UTC()
		processing := OrderProcessing
		review.PaidAt = &now
		review.OrderStatus = &processing
	}

	updated, err := s.orders.SetPaymentReview(ctx, orderID, review)
	if err != nil {
		return nil, err
	}

	topic, event := TopicPaymentConfirmed, EventPaymentConfirmed
	if target == PaymentRejected {
		topic, event = TopicPaymentRejected, EventPaymentRejected
	}
	s.publish(topic, event, orderID, PaymentReviewedPayload{
		OrderID:       orderID,
		CustomerName:  updated.CustomerName,
		CustomerEmail: updated.CustomerEmail,
		PaymentStatus: target,
		Notes:         notes,
		ConfirmedBy:   admin.Username,
	})

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   target,
		"admin":    admin.Username,
	}).Info("payment reviewed")

	return updated, nil
}

func (s *Service) ListPayments(ctx context.Context, status PaymentStatus, page, limit int) ([]Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.orders.ListByPaymentStatus(ctx, status, page, limit)
}

type DashboardStats struct {
	Products int `json:"products"`
	OrderStats
}

func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	products, err := s.products.Count(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	orderStats, err := s.orders.Stats(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{Products: products, OrderStats: orderStats}, nil
}

type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

func (in ProductInput) validate() error {
	switch {
	case in.Name == "":
		return Validationf("name is required")
	case in.Price < 0:
		return Validationf("price must not be negative")
	case in.Stock < 0:
		return Validationf("stock must not be negative")
	case in.Category == "":
		return Validationf("category is required")
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Image == "" {
		p.Image = PlaceholderImage
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.Category = in.Category
	p.Image = in.Image
	if p.Image == "" {
		p.Image = PlaceholderImage
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.products.Get(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.products.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, search string, page, limit int) ([]Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.products.List(ctx, search, page, limit)
}

func (s *Service) SearchProducts(ctx context.Context, params SearchParams) ([]Product, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 12
	}
	return s.products.Search(ctx, params)
}

// Suggestions: minimal 2 karakter, maksimal 5 hasil.
func (s *Service) Suggestions(ctx context.Context, query string) ([]Product, error) {
	if len(query) < 2 {
		return []Product{}, nil
	}
	return s.products.Suggestions(ctx, query, 5)
}

func (s *Service) FilterMeta(ctx context.Context) (FilterMeta, error) {
	return s.products.FilterMeta(ctx)
}

func (s *Service) publish(topic, eventType, orderID string, payload any) {
	if s.events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.producer,
		CorrelationID: orderID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).Warn("marshal event payload")
		return
	}
	ev.Payload = body
	value, err := json.Marshal(ev)
	if err != nil {
		s.log.WithError(err).Warn("marshal event envelope")
		return
	}
	s.events.Publish(topic, eventType, PartitionKey(orderID), value)
}
