package shop

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Mock in-memory utk test service tanpa Postgres/Redis/Kafka.

type memProductStore struct {
	mu       sync.Mutex
	byID     map[string]*Product
	askCount int // berapa kali Suggestions dipanggil
}

func newMemProductStore() *memProductStore {
	return &memProductStore{byID: map[string]*Product{}}
}

func (m *memProductStore) Create(ctx context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProductStore) Update(ctx context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return ErrProductNotFound
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProductStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memProductStore) Get(ctx context.Context, id string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductStore) all() []Product {
	out := make([]Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *memProductStore) List(ctx context.Context, search string, page, limit int) ([]Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	for _, p := range m.all() {
		if search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *memProductStore) Search(ctx context.Context, params SearchParams) ([]Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	for _, p := range m.all() {
		if params.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Query)) {
			continue
		}
		if params.MinPrice != nil && p.Price < *params.MinPrice {
			continue
		}
		if params.MaxPrice != nil && p.Price > *params.MaxPrice {
			continue
		}
		if params.Stock == "in_stock" && p.Stock <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memProductStore) Suggestions(ctx context.Context, query string, limit int) ([]Product, error) {
	m.mu.Lock()
	m.askCount++
	m.mu.Unlock()
	out, _, _ := m.Search(ctx, SearchParams{Query: query})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memProductStore) FilterMeta(ctx context.Context) (FilterMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := FilterMeta{Categories: []string{}}
	seen := map[string]bool{}
	first := true
	for _, p := range m.all() {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			meta.Categories = append(meta.Categories, p.Category)
		}
		if first || p.Price < meta.PriceRange.Min {
			meta.PriceRange.Min = p.Price
		}
		if first || p.Price > meta.PriceRange.Max {
			meta.PriceRange.Max = p.Price
		}
		first = false
	}
	return meta, nil
}

func (m *memProductStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}

type memOrderStore struct {
	mu       sync.Mutex
	orders   map[string]*Order
	products *memProductStore
}

func newMemOrderStore(products *memProductStore) *memOrderStore {
	return &memOrderStore{orders: map[string]*Order{}, products: products}
}

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	for i := range cp.Items {
		if cp.Items[i].Product != nil {
			p := *cp.Items[i].Product
			cp.Items[i].Product = &p
		}
	}
	return &cp
}

// CreateOrder meniru kontrak transaksi repo: validasi semua item dulu,
// baru decrement, gagal satu berarti tidak ada efek.
func (m *memOrderStore) CreateOrder(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products.mu.Lock()
	defer m.products.mu.Unlock()

	for _, it := range o.Items {
		p, ok := m.products.byID[it.ProductID]
		if !ok {
			return Validationf("product not found: %s", it.ProductID)
		}
		if p.Stock < it.Quantity {
			return fmt.Errorf("%w: product %s has %d left, need %d", ErrInsufficientStock, it.ProductID, p.Stock, it.Quantity)
		}
	}

	cp := cloneOrder(o)
	for i, it := range cp.Items {
		p := m.products.byID[it.ProductID]
		p.Stock -= it.Quantity
		snapshot := *p
		cp.Items[i].Product = &snapshot
	}
	m.orders[cp.ID] = cp
	return nil
}

func (m *memOrderStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (m *memOrderStore) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.orders {
		if o.CustomerEmail == email {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrderStore) ListByPaymentStatus(ctx context.Context, status PaymentStatus, page, limit int) ([]Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []Order
	for _, o := range m.orders {
		if status == "" || o.PaymentStatus == status {
			all = append(all, *cloneOrder(o))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memOrderStore) SetPaymentProof(ctx context.Context, id, proofURL, notes string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.PaymentProof = proofURL
	o.PaymentStatus = PaymentUploaded
	o.PaymentNotes = notes
	return cloneOrder(o), nil
}

func (m *memOrderStore) SetPaymentReview(ctx context.Context, id string, review PaymentReview) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.PaymentStatus = review.PaymentStatus
	o.ConfirmedBy = review.ConfirmedBy
	if review.Notes != "" {
		o.PaymentNotes = review.Notes
	}
	if review.PaidAt != nil {
		o.PaidAt = review.PaidAt
	}
	if review.OrderStatus != nil {
		o.Status = *review.OrderStatus
	}
	return cloneOrder(o), nil
}

func (m *memOrderStore) Stats(ctx context.Context) (OrderStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s OrderStats
	for _, o := range m.orders {
		s.Orders++
		if o.PaymentStatus == PaymentUploaded {
			s.AwaitingReview++
		}
		if o.PaymentStatus == PaymentConfirmed {
			s.Revenue += o.TotalAmount
		}
	}
	return s, nil
}

type memBlob struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  bool
}

func newMemBlob() *memBlob { return &memBlob{files: map[string][]byte{}} }

func (b *memBlob) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if b.fail {
		return "", fmt.Errorf("blob store down")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[key] = data
	return "https://cdn.test/" + key, nil
}

type recordedEvent struct {
	Topic     string
	EventType string
	Key       []byte
	Value     []byte
}

type recPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recPublisher) Publish(topic, eventType string, key, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, EventType: eventType, Key: key, Value: value})
}

func (p *recPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *recPublisher) All() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

func newTestService() (*Service, *memOrderStore, *memProductStore, *memBlob, *recPublisher) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	products := newMemProductStore()
	orders := newMemOrderStore(products)
	blobs := newMemBlob()
	events := &recPublisher{}
	svc := NewService(log, orders, products, blobs, events, "shop-api-test")
	return svc, orders, products, blobs, events
}
