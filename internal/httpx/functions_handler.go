package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/products"
	"github.com/go-chi/chi/v5"
)

// Catalog is satisfied by *products.Repo.
type Catalog interface {
	List(ctx context.Context) ([]products.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]products.Product, error)
	Delete(ctx context.Context, id string) ([]products.Product, error)
}

// FunctionsHandler serves the product listing and the privileged
// /functions/v1 endpoints called from the seller dashboard.
type FunctionsHandler struct {
	Products Catalog
	Logger   *slog.Logger
}

type deleteProductReq struct {
	ID string `json:"id"`
}

func (h *FunctionsHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)

	r.Route("/functions/v1", func(r chi.Router) {
		r.Use(cors)
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		r.Post("/delete_product", h.deleteProduct)
		r.Post("/send_contact", h.sendContact)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		w.Header().Set("Access-Control-Max-Age", "86400")
		next.ServeHTTP(w, r)
	})
}

func (h *FunctionsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		ps  []products.Product
		err error
	)
	if seller := r.URL.Query().Get("sellerId"); seller != "" {
		ps, err = h.Products.ListBySeller(ctx, seller)
	} else {
		ps, err = h.Products.List(ctx)
	}
	if err != nil {
		h.Logger.Error("list products", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *FunctionsHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	var req deleteProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Products.Delete(ctx, req.ID)
	if err != nil {
		h.Logger.Warn("delete product", slog.String("product_id", req.ID), slog.Any("err", err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.Logger.Info("product deleted", slog.String("product_id", req.ID), slog.Int("rows", len(deleted)))
	writeJSON(w, http.StatusOK, map[string]any{"data": deleted, "success": true})
}

func (h *FunctionsHandler) sendContact(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusGone, map[string]string{
		"error":   "send_contact function removed",
		"message": "This endpoint has been retired. Please contact via WhatsApp: 0203252249",
	})
}
