package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/paskalshop/paskal-shop/internal/redisx"
	"github.com/paskalshop/paskal-shop/internal/shop"
)

type OrdersHandler struct {
	Svc     *shop.Service
	Redis   *redis.Client
	Limiter *Limiter
	Log     *logrus.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Get("/orders/{id}/invoice", h.getInvoice)
	r.With(h.Limiter.Middleware("payment-proof", 5, time.Minute)).
		Post("/orders/{id}/payment-proof", h.uploadPaymentProof)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in shop.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Svc.CreateOrder(ctx, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	h.cacheStatus(ctx, order)
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.Svc.ListOrdersByEmail(ctx, email)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Svc.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	h.cacheStatus(ctx, order)
	writeJSON(w, http.StatusOK, order)
}

// getOrderStatus: endpoint polling ringan halaman pembayaran; baca cache
// dulu, fallback DB.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, id)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	h.cacheStatus(ctx, order)
	writeJSON(w, http.StatusOK, statusBody(order))
}

func (h *OrdersHandler) getInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Svc.Invoice(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) uploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(shop.MaxUploadSize + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("paymentProof")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	upload := shop.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	order, err := h.Svc.SubmitPaymentProof(ctx, chi.URLParam(r, "id"), upload, r.FormValue("paymentNotes"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	h.cacheStatus(ctx, order)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment proof uploaded successfully",
		"order":   order,
	})
}

func statusBody(o *shop.Order) map[string]any {
	return map[string]any{
		"status":        o.Status,
		"paymentStatus": o.PaymentStatus,
		"updatedAt":     o.UpdatedAt,
	}
}

// cacheStatus best-effort; gagal cache tidak menggagalkan request.
func (h *OrdersHandler) cacheStatus(ctx context.Context, o *shop.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(statusBody(o))
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	if err := h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err(); err != nil {
		h.Log.WithError(err).Debug("cache order status")
	}
}
