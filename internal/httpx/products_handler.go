package httpx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/paskalshop/paskal-shop/internal/shop"
)

// ProductsHandler melayani katalog publik (read only).
type ProductsHandler struct {
	Svc *shop.Service
	Log *logrus.Logger
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/search", h.search)
	r.Get("/products/suggestions", h.suggestions)
	r.Get("/products/filters", h.filters)
	r.Get("/products/{id}", h.get)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	params := shop.SearchParams{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 12),
		Sort:  "newest",
	}
	products, total, err := h.Svc.SearchProducts(ctx, params)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(products, total, params.Page, params.Limit))
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := shop.SearchParams{
		Query: q.Get("q"),
		Stock: q.Get("stock"),
		Sort:  q.Get("sort"),
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 12),
	}
	for _, c := range strings.Split(q.Get("categories"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			params.Categories = append(params.Categories, c)
		}
	}
	if v := q.Get("minPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.MinPrice = &n
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.MaxPrice = &n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	products, total, err := h.Svc.SearchProducts(ctx, params)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(products, total, params.Page, params.Limit))
}

func (h *ProductsHandler) suggestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	suggestions, err := h.Svc.Suggestions(ctx, r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *ProductsHandler) filters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	meta, err := h.Svc.FilterMeta(ctx)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func searchResponse(products []shop.Product, total, page, limit int) map[string]any {
	totalPages := (total + limit - 1) / limit
	return map[string]any{
		"products": products,
		"pagination": map[string]any{
			"page":       page,
			"limit":      limit,
			"totalCount": total,
			"totalPages": totalPages,
			"hasNext":    page < totalPages,
			"hasPrev":    page > 1,
		},
	}
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
