package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/paskalshop/paskal-shop/internal/auth"
	"github.com/paskalshop/paskal-shop/internal/shop"
)

type AdminHandler struct {
	Svc     *shop.Service
	Auth    *auth.Service
	Limiter *Limiter
	Log     *logrus.Logger

	// SecureCookie menyalakan flag Secure di cookie sesi (produksi/HTTPS).
	SecureCookie bool
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.With(h.Limiter.Middleware("admin-login", 5, time.Minute)).
		Post("/admin/login", h.login)
	r.Post("/admin/logout", h.logout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminOnly(h.Auth))

		r.Get("/dashboard", h.dashboard)

		r.Get("/payments", h.listPayments)
		r.Patch("/payments", h.reviewPayment)

		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Post("/products/upload-image", h.uploadProductImage)
		r.Get("/products/{id}", h.getProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	admin, token, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if err == shop.ErrUnauthorized {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, h.Log, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "admin": admin})
}

func (h *AdminHandler) logout(w http.ResponseWriter, r *http.Request) {
	_ = h.Auth.Logout(r.Context(), sessionToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Svc.Dashboard(ctx)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "all" {
		status = ""
	}
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, total, err := h.Svc.ListPayments(ctx, shop.PaymentStatus(status), page, limit)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders":     orders,
		"pagination": adminPagination(page, limit, total),
	})
}

type reviewReq struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentNotes  string `json:"paymentNotes"`
}

func (h *AdminHandler) reviewPayment(w http.ResponseWriter, r *http.Request) {
	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.OrderID == "" || req.PaymentStatus == "" {
		writeError(w, http.StatusBadRequest, "Order ID and payment status are required")
		return
	}

	admin := AdminFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Svc.ReviewPayment(ctx, *admin, req.OrderID, shop.PaymentStatus(req.PaymentStatus), req.PaymentNotes)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment status updated successfully",
		"order":   order,
	})
}

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, total, err := h.Svc.ListProducts(ctx, r.URL.Query().Get("search"), page, limit)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":   products,
		"pagination": adminPagination(page, limit, total),
	})
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in shop.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product created successfully",
		"product": p,
	})
}

func (h *AdminHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in shop.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Svc.UpdateProduct(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": p,
	})
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Product deleted successfully"})
}

func (h *AdminHandler) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(shop.MaxUploadSize + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	url, err := h.Svc.UploadProductImage(ctx, shop.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Image uploaded successfully",
		"imagePath": url,
	})
}

func adminPagination(page, limit, total int) map[string]any {
	return map[string]any{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": (total + limit - 1) / limit,
	}
}
