package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/notice"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidAddress = errors.New("invalid shipping address")
)

// TaxPercent is the GST rate applied on top of the cart subtotal.
const TaxPercent = 18

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

func QuoteFor(subtotal int64) Quote {
	tax := (subtotal*TaxPercent + 50) / 100
	return Quote{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

type Request struct {
	UserID  string                 `json:"userId"`
	Address orders.ShippingAddress `json:"shippingAddress"`
}

type Config struct {
	SellerID  string
	Notices   notice.Sink
	Logger    *slog.Logger
	Now       func() time.Time
	NewNumber func() string
}

type Service struct {
	cart     *cart.Store
	orders   *orders.Store
	cfg      Config
	validate *validator.Validate
}

func NewService(c *cart.Store, o *orders.Store, cfg Config) *Service {
	if cfg.Notices == nil {
		cfg.Notices = notice.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewNumber == nil {
		cfg.NewNumber = NewOrderNumber
	}
	return &Service{cart: c, orders: o, cfg: cfg, validate: validator.New()}
}

func (s *Service) Quote() Quote {
	return QuoteFor(s.cart.TotalPrice())
}

// PlaceOrder turns the current cart into a pending order and empties the cart.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (orders.Order, error) {
	if err := s.validate.Struct(req.Address); err != nil {
		s.fail(addressMessage(err))
		return orders.Order{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}

	items := s.cart.Items()
	if len(items) == 0 {
		s.fail("Your cart is empty")
		return orders.Order{}, errors.WithStack(ErrEmptyCart)
	}

	lines := make([]orders.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, orders.LineItem{ID: it.ID, Name: it.Name, Price: it.Price, Quantity: it.Quantity, Image: it.Image})
	}

	userID := req.UserID
	if userID == "" {
		userID = fmt.Sprintf("customer_%d", s.cfg.Now().UnixMilli())
	}

	o, err := s.orders.Create(ctx, orders.NewOrder{
		OrderNumber:     s.cfg.NewNumber(),
		UserID:          userID,
		SellerID:        s.cfg.SellerID,
		Items:           lines,
		TotalPrice:      s.cart.TotalPrice(),
		Status:          orders.StatusPending,
		ShippingAddress: req.Address,
	})
	if err != nil {
		s.fail("Failed to place order. Please try again.")
		return orders.Order{}, err
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.cfg.Logger.Warn("clear cart after checkout", slog.String("order_id", o.ID), slog.Any("err", err))
	}
	s.cfg.Notices.Notify(notice.Notice{Level: notice.Success, Message: fmt.Sprintf("Order placed successfully! Order #%s", o.OrderNumber)})
	return o, nil
}

func (s *Service) fail(msg string) {
	s.cfg.Notices.Notify(notice.Notice{Level: notice.Error, Message: msg})
}

// NewOrderNumber returns "AG" followed by nine random base-36 characters.
func NewOrderNumber() string {
	buf := make([]byte, 9)
	base := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			panic(err)
		}
		buf[i] = orderNumberAlphabet[n.Int64()]
	}
	return "AG" + string(buf)
}

func addressMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please fill in all required fields"
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Pincode":
		return "Valid 6-digit pincode is required"
	case fe.Tag() == "email":
		return "Valid email is required"
	default:
		return fe.Field() + " is required"
	}
}
