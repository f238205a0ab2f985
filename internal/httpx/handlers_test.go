package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-storefront.git/internal/logx"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/products"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products []products.Product
	deleted  []string
	err      error
}

func (f *fakeCatalog) List(context.Context) ([]products.Product, error) { return f.products, f.err }

func (f *fakeCatalog) ListBySeller(_ context.Context, sellerID string) ([]products.Product, error) {
	out := []products.Product{}
	for _, p := range f.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeCatalog) Delete(_ context.Context, id string) ([]products.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, id)
	return []products.Product{{ID: id}}, nil
}

type response struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Notices []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notices"`
}

func newTestRouter(t *testing.T, catalog Catalog) *chi.Mux {
	t.Helper()
	logger := logx.Discard()
	r := NewRouter(logger)
	(&SessionHandler{
		Sessions: session.NewManager(storage.NewMemory(), session.Config{Logger: logger, SellerID: "seller_default", Policy: orders.PolicyStrict}),
		Logger:   logger,
	}).Register(r)
	(&FunctionsHandler{Products: catalog, Logger: logger}).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(SessionHeader, "s1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

const addressJSON = `{"name":"Asha Rao","phone":"9876543210","email":"asha@example.com","address":"12 MG Road","city":"Pune","state":"MH","pincode":"411001"}`

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, &fakeCatalog{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSessionHeaderRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, &fakeCatalog{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing X-Session-Id")
}

func TestCartFlow(t *testing.T) {
	h := newTestRouter(t, &fakeCatalog{})

	rec, _ := do(t, h, http.MethodPost, "/cart/items", `{"id":"mcb","name":"MCB 32A","price":300,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, resp := do(t, h, http.MethodPost, "/cart/items", `{"id":"mcb","name":"MCB 32A","price":300}`)

	var cart cartViewJSON
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, int64(900), cart.TotalPrice)

	rec, resp = do(t, h, http.MethodPatch, "/cart/items/mcb", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	assert.Zero(t, cart.TotalItems)

	rec, _ = do(t, h, http.MethodPatch, "/cart/items/mcb", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/cart/items", `{"price":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type cartViewJSON struct {
	TotalItems int   `json:"totalItems"`
	TotalPrice int64 `json:"totalPrice"`
}

func TestWishlistNotices(t *testing.T) {
	h := newTestRouter(t, &fakeCatalog{})

	rec, resp := do(t, h, http.MethodPost, "/wishlist/items", `{"id":"rccb","name":"RCCB 40A","price":400}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "Added RCCB 40A to wishlist", resp.Notices[0].Message)

	rec, resp = do(t, h, http.MethodPost, "/wishlist/items", `{"id":"rccb","name":"RCCB 40A","price":400}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "Already in wishlist", resp.Notices[0].Message)

	_, resp = do(t, h, http.MethodGet, "/wishlist/items/rccb", "")
	assert.JSONEq(t, `{"inWishlist":true}`, string(resp.Data))

	_, resp = do(t, h, http.MethodDelete, "/wishlist/items/rccb", "")
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "Removed RCCB 40A from wishlist", resp.Notices[0].Message)
}

func TestCheckoutAndOrderLifecycle(t *testing.T) {
	h := newTestRouter(t, &fakeCatalog{})

	rec, resp := do(t, h, http.MethodPost, "/checkout", `{"userId":"customer_1","shippingAddress":`+addressJSON+`}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Your cart is empty", resp.Notices[0].Message)

	do(t, h, http.MethodPost, "/cart/items", `{"id":"mcb","name":"MCB 32A","price":1000,"quantity":1}`)

	_, resp = do(t, h, http.MethodGet, "/checkout/quote", "")
	assert.JSONEq(t, `{"subtotal":1000,"tax":180,"total":1180}`, string(resp.Data))

	rec, resp = do(t, h, http.MethodPost, "/checkout", `{"userId":"customer_1","shippingAddress":`+addressJSON+`}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var o orders.Order
	require.NoError(t, json.Unmarshal(resp.Data, &o))
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, "seller_default", o.SellerID)
	assert.Len(t, o.TrackingEvents, 1)

	rec, _ = do(t, h, http.MethodGet, "/track/"+strings.ToLower(o.OrderNumber), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, "/orders/"+o.ID+"/status", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, "/orders/"+o.ID+"/status", `{"status":"teleported"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = do(t, h, http.MethodPatch, "/orders/"+o.ID+"/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order status updated to confirmed", resp.Notices[0].Message)

	rec, _ = do(t, h, http.MethodPost, "/orders/"+o.ID+"/tracking", `{"status":"Shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/orders/"+o.ID+"/tracking", `{"status":"Shipped","location":"Pune Hub"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	_, resp = do(t, h, http.MethodGet, "/alerts", "")
	assert.Contains(t, string(resp.Data), "Shipped at Pune Hub")

	_, resp = do(t, h, http.MethodGet, "/sellers/seller_default/stats", "")
	assert.JSONEq(t, `{"pending":0,"confirmed":1,"shipped":0,"delivered":0,"cancelled":0}`, string(resp.Data))

	_, resp = do(t, h, http.MethodGet, "/orders?userId=customer_1", "")
	var list []orders.Order
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 1)

	rec, _ = do(t, h, http.MethodGet, "/orders/order_missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProductFunction(t *testing.T) {
	catalog := &fakeCatalog{}
	h := newTestRouter(t, catalog)

	rec, _ := do(t, h, http.MethodPost, "/functions/v1/delete_product", `{"id":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[{"id":"p1","seller_id":"","name":"","brand":"","category":"","price":0,"image":"","stock":0,"created_at":"0001-01-01T00:00:00Z","updated_at":"0001-01-01T00:00:00Z"}],"success":true}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, []string{"p1"}, catalog.deleted)

	rec, resp := do(t, h, http.MethodPost, "/functions/v1/delete_product", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing id", resp.Error)

	rec, _ = do(t, h, http.MethodPost, "/functions/v1/delete_product", `nope`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	catalog.err = errors.New("permission denied")
	rec, resp = do(t, h, http.MethodPost, "/functions/v1/delete_product", `{"id":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "permission denied", resp.Error)

	rec, _ = do(t, h, http.MethodOptions, "/functions/v1/delete_product", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec, _ = do(t, h, http.MethodPost, "/functions/v1/send_contact", `{}`)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestListProducts(t *testing.T) {
	h := newTestRouter(t, &fakeCatalog{products: []products.Product{
		{ID: "p1", SellerID: "s1", Name: "MCB"},
		{ID: "p2", SellerID: "s2", Name: "RCCB"},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?sellerId=s2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []products.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}
