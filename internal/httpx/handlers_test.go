package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paskalshop/paskal-shop/internal/auth"
	"github.com/paskalshop/paskal-shop/internal/shop"
)

// Mock store minimal; cukup utk alur handler, tanpa Postgres.

type fakeProducts struct {
	mu   sync.Mutex
	byID map[string]*shop.Product
}

func (f *fakeProducts) Create(ctx context.Context, p *shop.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, p *shop.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return shop.ErrProductNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return shop.ErrProductNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProducts) Get(ctx context.Context, id string) (*shop.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, shop.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) all() []shop.Product {
	out := make([]shop.Product, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeProducts) List(ctx context.Context, search string, page, limit int) ([]shop.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.all()
	return out, len(out), nil
}

func (f *fakeProducts) Search(ctx context.Context, params shop.SearchParams) ([]shop.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shop.Product
	for _, p := range f.all() {
		if params.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Query)) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProducts) Suggestions(ctx context.Context, query string, limit int) ([]shop.Product, error) {
	out, _, _ := f.Search(ctx, shop.SearchParams{Query: query})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProducts) FilterMeta(ctx context.Context) (shop.FilterMeta, error) {
	return shop.FilterMeta{Categories: []string{"Electronics"}}, nil
}

func (f *fakeProducts) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID), nil
}

type fakeOrders struct {
	mu       sync.Mutex
	orders   map[string]*shop.Order
	products *fakeProducts
}

func (f *fakeOrders) CreateOrder(ctx context.Context, o *shop.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products.mu.Lock()
	defer f.products.mu.Unlock()

	for _, it := range o.Items {
		p, ok := f.products.byID[it.ProductID]
		if !ok {
			return shop.Validationf("product not found: %s", it.ProductID)
		}
		if p.Stock < it.Quantity {
			return fmt.Errorf("%w: product %s", shop.ErrInsufficientStock, it.ProductID)
		}
	}
	cp := *o
	cp.Items = append([]shop.OrderItem(nil), o.Items...)
	for i, it := range cp.Items {
		p := f.products.byID[it.ProductID]
		p.Stock -= it.Quantity
		snapshot := *p
		cp.Items[i].Product = &snapshot
	}
	f.orders[cp.ID] = &cp
	return nil
}

func (f *fakeOrders) GetOrder(ctx context.Context, id string) (*shop.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByEmail(ctx context.Context, email string) ([]shop.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []shop.Order{}
	for _, o := range f.orders {
		if o.CustomerEmail == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByPaymentStatus(ctx context.Context, status shop.PaymentStatus, page, limit int) ([]shop.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []shop.Order{}
	for _, o := range f.orders {
		if status == "" || o.PaymentStatus == status {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (f *fakeOrders) SetPaymentProof(ctx context.Context, id, proofURL, notes string) (*shop.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	o.PaymentProof = proofURL
	o.PaymentStatus = shop.PaymentUploaded
	o.PaymentNotes = notes
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) SetPaymentReview(ctx context.Context, id string, review shop.PaymentReview) (*shop.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	o.PaymentStatus = review.PaymentStatus
	o.ConfirmedBy = review.ConfirmedBy
	if review.PaidAt != nil {
		o.PaidAt = review.PaidAt
	}
	if review.OrderStatus != nil {
		o.Status = *review.OrderStatus
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) Stats(ctx context.Context) (shop.OrderStats, error) {
	return shop.OrderStats{}, nil
}

type fakeBlob struct{}

func (fakeBlob) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return "https://cdn.test/" + key, nil
}

type fakeAdmins struct{}

func (fakeAdmins) GetByUsername(ctx context.Context, username string) (*shop.Admin, error) {
	return nil, shop.ErrAdminNotFound
}

func (fakeAdmins) GetByID(ctx context.Context, id string) (*shop.Admin, error) {
	return nil, shop.ErrAdminNotFound
}

func newTestServer(t *testing.T) (*chi.Mux, *fakeOrders, *fakeProducts) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	products := &fakeProducts{byID: map[string]*shop.Product{}}
	orders := &fakeOrders{orders: map[string]*shop.Order{}, products: products}
	svc := shop.NewService(log, orders, products, fakeBlob{}, nil, "test")
	authSvc := auth.NewService(log, fakeAdmins{}, nil)
	limiter := &Limiter{Log: log} // tanpa redis -> fail open

	r := chi.NewRouter()
	(&OrdersHandler{Svc: svc, Limiter: limiter, Log: log}).Register(r)
	(&ProductsHandler{Svc: svc, Log: log}).Register(r)
	(&AdminHandler{Svc: svc, Auth: authSvc, Limiter: limiter, Log: log}).Register(r)
	return r, orders, products
}

func seedProduct(t *testing.T, products *fakeProducts, price int64, stock int) *shop.Product {
	t.Helper()
	p := &shop.Product{
		ID:        uuid.NewString(),
		Name:      "Produk Uji",
		Price:     price,
		Stock:     stock,
		Category:  "Electronics",
		Image:     shop.PlaceholderImage,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, products.Create(context.Background(), p))
	return p
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func orderBody(p *shop.Product, qty int) map[string]any {
	return map[string]any{
		"customerName":  "Budi Santoso",
		"customerEmail": "budi@example.com",
		"address":       "Jl. Pasir Kaliki 25",
		"city":          "Bandung",
		"postalCode":    "40171",
		"paymentMethod": "transfer",
		"totalAmount":   p.Price * int64(qty),
		"items": []map[string]any{
			{"productId": p.ID, "quantity": qty, "price": p.Price},
		},
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	r, _, products := newTestServer(t)
	p := seedProduct(t, products, 10000, 5)

	w := doJSON(t, r, http.MethodPost, "/orders", orderBody(p, 2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got shop.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(20000), got.TotalAmount)
	assert.Equal(t, shop.PaymentWaiting, got.PaymentStatus)
	assert.NotNil(t, got.PaymentDueDate)
	require.Len(t, got.Items, 1)

	stock, err := products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stock.Stock)
}

func TestCreateOrderEndpointErrors(t *testing.T) {
	r, _, products := newTestServer(t)
	p := seedProduct(t, products, 10000, 1)

	// json rusak
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// field kurang
	body := orderBody(p, 1)
	delete(body, "customerEmail")
	w = doJSON(t, r, http.MethodPost, "/orders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// stok kurang
	w = doJSON(t, r, http.MethodPost, "/orders", orderBody(p, 2))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListOrdersRequiresEmail(t *testing.T) {
	r, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	r, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartProof(t *testing.T, field, filename, contentType string, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("paymentNotes", "sudah transfer"))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPaymentProofEndpoint(t *testing.T) {
	r, orders, products := newTestServer(t)
	p := seedProduct(t, products, 10000, 5)

	w := doJSON(t, r, http.MethodPost, "/orders", orderBody(p, 1))
	require.Equal(t, http.StatusOK, w.Code)
	var order shop.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	body, ctype := multipartProof(t, "paymentProof", "bukti.jpg", "image/jpeg", 2*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/orders/"+order.ID+"/payment-proof", body)
	req.Header.Set("Content-Type", ctype)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.PaymentUploaded, got.PaymentStatus)
	assert.Contains(t, got.PaymentProof, order.ID)
	assert.Equal(t, "sudah transfer", got.PaymentNotes)
}

func TestPaymentProofTooLarge(t *testing.T) {
	r, orders, products := newTestServer(t)
	p := seedProduct(t, products, 10000, 5)

	w := doJSON(t, r, http.MethodPost, "/orders", orderBody(p, 1))
	require.Equal(t, http.StatusOK, w.Code)
	var order shop.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	body, ctype := multipartProof(t, "paymentProof", "bukti.jpg", "image/jpeg", 6*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/orders/"+order.ID+"/payment-proof", body)
	req.Header.Set("Content-Type", ctype)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.PaymentWaiting, got.PaymentStatus, "oversize upload must not change state")
}

func TestPaymentProofUnknownOrder(t *testing.T) {
	r, _, _ := newTestServer(t)
	body, ctype := multipartProof(t, "paymentProof", "bukti.jpg", "image/jpeg", 1024)
	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/payment-proof", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceGatedOnConfirmation(t *testing.T) {
	r, orders, products := newTestServer(t)
	p := seedProduct(t, products, 10000, 5)

	w := doJSON(t, r, http.MethodPost, "/orders", orderBody(p, 1))
	require.Equal(t, http.StatusOK, w.Code)
	var order shop.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	req := httptest.NewRequest(http.MethodGet, "/orders/"+order.ID+"/invoice", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "invoice unavailable before confirmation")

	// konfirmasi langsung lewat store
	now := time.Now().UTC()
	processing := shop.OrderProcessing
	_, err := orders.SetPaymentReview(context.Background(), order.ID, shop.PaymentReview{
		PaymentStatus: shop.PaymentConfirmed,
		ConfirmedBy:   "admin",
		PaidAt:        &now,
		OrderStatus:   &processing,
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/orders/"+order.ID+"/invoice", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var inv shop.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, shop.OrderProcessing, inv.Status)
}

func TestAdminEndpointsRequireSession(t *testing.T) {
	r, orders, products := newTestServer(t)
	p := seedProduct(t, products, 10000, 5)

	w := doJSON(t, r, http.MethodPost, "/orders", orderBody(p, 1))
	require.Equal(t, http.StatusOK, w.Code)
	var order shop.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	// transisi tanpa sesi -> 401, state tidak berubah
	w = doJSON(t, r, http.MethodPatch, "/admin/payments", map[string]any{
		"orderId":       order.ID,
		"paymentStatus": "PAYMENT_CONFIRMED",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.PaymentWaiting, got.PaymentStatus)

	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/admin/payments"},
		{http.MethodGet, "/admin/products"},
		{http.MethodPost, "/admin/products"},
		{http.MethodDelete, "/admin/products/" + p.ID},
		{http.MethodGet, "/admin/dashboard"},
	} {
		req := httptest.NewRequest(c.method, c.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", c.method, c.path)
	}
}

func TestSearchEndpoint(t *testing.T) {
	r, _, products := newTestServer(t)
	seedProduct(t, products, 10000, 5)

	req := httptest.NewRequest(http.MethodGet, "/products/search?q=uji&page=1&limit=12", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products   []shop.Product `json:"products"`
		Pagination struct {
			TotalCount int  `json:"totalCount"`
			HasNext    bool `json:"hasNext"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 1)
	assert.Equal(t, 1, resp.Pagination.TotalCount)
	assert.False(t, resp.Pagination.HasNext)
}

func TestSuggestionsEndpoint(t *testing.T) {
	r, _, products := newTestServer(t)
	seedProduct(t, products, 10000, 5)

	// query terlalu pendek -> kosong
	req := httptest.NewRequest(http.MethodGet, "/products/suggestions?q=u", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Suggestions []shop.Product `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Suggestions)
}
