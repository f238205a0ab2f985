package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/checkout"
	"github.com/ariefcatur/go-storefront.git/internal/notifier"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/products"
	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const SessionHeader = "X-Session-Id"

type SessionHandler struct {
	Sessions *session.Manager
	Logger   *slog.Logger
	validate *validator.Validate
}

type addCartItemReq struct {
	products.Ref
	Quantity int `json:"quantity"`
}

type updateQuantityReq struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type updateStatusReq struct {
	Status orders.Status `json:"status" validate:"required"`
}

type sessionKey struct{}

// action runs with the session held; code is the success status.
type action func(ctx context.Context, r *http.Request, s *session.Session) (code int, data any, err error)

func (h *SessionHandler) Register(r chi.Router) {
	h.validate = validator.New()

	r.Group(func(r chi.Router) {
		r.Use(h.withSession)

		r.Get("/cart", h.handle(h.getCart))
		r.Post("/cart/items", h.handle(h.addCartItem))
		r.Patch("/cart/items/{id}", h.handle(h.updateCartItem))
		r.Delete("/cart/items/{id}", h.handle(h.removeCartItem))
		r.Delete("/cart", h.handle(h.clearCart))

		r.Get("/wishlist", h.handle(h.getWishlist))
		r.Post("/wishlist/items", h.handle(h.addWishlistItem))
		r.Get("/wishlist/items/{id}", h.handle(h.inWishlist))
		r.Delete("/wishlist/items/{id}", h.handle(h.removeWishlistItem))

		r.Get("/checkout/quote", h.handle(h.quote))
		r.Post("/checkout", h.handle(h.placeOrder))

		r.Get("/orders", h.handle(h.listOrders))
		r.Get("/orders/{id}", h.handle(h.getOrder))
		r.Get("/track/{ref}", h.handle(h.trackOrder))
		r.Patch("/orders/{id}/status", h.handle(h.updateStatus))
		r.Post("/orders/{id}/tracking", h.handle(h.addTracking))
		r.Get("/sellers/{id}/stats", h.handle(h.sellerStats))

		r.Get("/alerts", h.handle(h.listAlerts))
		r.Delete("/alerts/{id}", h.handle(h.dismissAlert))
	})
}

func (h *SessionHandler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			writeResult(w, h.Logger, 0, nil, nil, badRequest("missing "+SessionHeader))
			return
		}
		s, err := h.Sessions.Get(r.Context(), id)
		if err != nil {
			writeResult(w, h.Logger, 0, nil, nil, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

func (h *SessionHandler) handle(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := r.Context().Value(sessionKey{}).(*session.Session)
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		ctx = notifier.WithTraceID(ctx, middleware.GetReqID(ctx))

		var (
			code int
			data any
			err  error
		)
		notices := s.Run(func() { code, data, err = fn(ctx, r, s) })
		writeResult(w, h.Logger, code, data, notices, err)
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid json")
	}
	return nil
}

func (h *SessionHandler) check(v any) error {
	if err := h.validate.Struct(v); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

type cartView struct {
	Items      any   `json:"items"`
	TotalItems int   `json:"totalItems"`
	TotalPrice int64 `json:"totalPrice"`
}

func viewCart(s *session.Session) cartView {
	return cartView{Items: s.Cart.Items(), TotalItems: s.Cart.TotalItems(), TotalPrice: s.Cart.TotalPrice()}
}

func (h *SessionHandler) getCart(_ context.Context, _ *http.Request, s *session.Session) (int, any, error) {
	return http.StatusOK, viewCart(s), nil
}

func (h *SessionHandler) addCartItem(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	var req addCartItemReq
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	if req.ID == "" || req.Name == "" {
		return 0, nil, badRequest("product id and name are required")
	}
	if err := s.Cart.Add(ctx, req.Ref, req.Quantity); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, viewCart(s), nil
}

func (h *SessionHandler) updateCartItem(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	var req updateQuantityReq
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	if err := h.check(req); err != nil {
		return 0, nil, err
	}
	if err := s.Cart.UpdateQuantity(ctx, chi.URLParam(r, "id"), *req.Quantity); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, viewCart(s), nil
}

func (h *SessionHandler) removeCartItem(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	if err := s.Cart.Remove(ctx, chi.URLParam(r, "id")); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, viewCart(s), nil
}

func (h *SessionHandler) clearCart(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	if err := s.Cart.Clear(ctx); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, viewCart(s), nil
}

type wishlistView struct {
	Items      any `json:"items"`
	TotalItems int `json:"totalItems"`
}

func viewWishlist(s *session.Session) wishlistView {
	return wishlistView{Items: s.Wishlist.Items(), TotalItems: s.Wishlist.TotalItems()}
}

func (h *SessionHandler) getWishlist(_ context.Context, _ *http.Request, s *session.Session) (int, any, error) {
	return http.StatusOK, viewWishlist(s), nil
}

func (h *SessionHandler) addWishlistItem(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	var req products.Ref
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	if req.ID == "" || req.Name == "" {
		return 0, nil, badRequest("product id and name are required")
	}
	added, err := s.Wishlist.Add(ctx, req)
	if err != nil {
		return 0, nil, err
	}
	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	return code, viewWishlist(s), nil
}

func (h *SessionHandler) inWishlist(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	return http.StatusOK, map[string]bool{"inWishlist": s.Wishlist.Contains(chi.URLParam(r, "id"))}, nil
}

func (h *SessionHandler) removeWishlistItem(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	if _, err := s.Wishlist.Remove(ctx, chi.URLParam(r, "id")); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, viewWishlist(s), nil
}

func (h *SessionHandler) quote(_ context.Context, _ *http.Request, s *session.Session) (int, any, error) {
	return http.StatusOK, s.Checkout.Quote(), nil
}

func (h *SessionHandler) placeOrder(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	var req checkout.Request
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	o, err := s.Checkout.PlaceOrder(ctx, req)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, o, nil
}

func (h *SessionHandler) listOrders(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	q := r.URL.Query()
	switch {
	case q.Get("userId") != "":
		return http.StatusOK, s.Orders.UserOrders(q.Get("userId")), nil
	case q.Get("sellerId") != "":
		return http.StatusOK, s.Orders.SellerOrders(q.Get("sellerId")), nil
	default:
		return http.StatusOK, s.Orders.All(), nil
	}
}

func (h *SessionHandler) getOrder(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	o, ok := s.Orders.Get(chi.URLParam(r, "id"))
	if !ok {
		return 0, nil, orders.ErrOrderNotFound
	}
	return http.StatusOK, o, nil
}

func (h *SessionHandler) trackOrder(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	o, ok := s.Orders.FindByReference(chi.URLParam(r, "ref"))
	if !ok {
		return 0, nil, orders.ErrOrderNotFound
	}
	return http.StatusOK, o, nil
}

func (h *SessionHandler) updateStatus(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	var req updateStatusReq
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	if err := h.check(req); err != nil {
		return 0, nil, err
	}
	o, err := s.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, o, nil
}

func (h *SessionHandler) addTracking(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	var req orders.NewTrackingEvent
	if err := decode(r, &req); err != nil {
		return 0, nil, err
	}
	if err := h.check(req); err != nil {
		return 0, nil, err
	}
	ev, err := s.Orders.AddTrackingEvent(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, ev, nil
}

func (h *SessionHandler) sellerStats(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	return http.StatusOK, s.Orders.StatusCounts(chi.URLParam(r, "id")), nil
}

func (h *SessionHandler) listAlerts(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	return http.StatusOK, s.Alerts.Active(ctx), nil
}

func (h *SessionHandler) dismissAlert(ctx context.Context, r *http.Request, s *session.Session) (int, any, error) {
	if err := s.Alerts.Dismiss(ctx, chi.URLParam(r, "id")); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, s.Alerts.Active(ctx), nil
}
