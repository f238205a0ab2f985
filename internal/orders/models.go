package orders

import "time"

type LineItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image"`
}

type ShippingAddress struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
}

type TrackingEvent struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	UserID            string          `json:"userId"`
	SellerID          string          `json:"sellerId"`
	Items             []LineItem      `json:"items"`
	TotalPrice        int64           `json:"totalPrice"`
	Status            Status          `json:"status"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	TrackingEvents    []TrackingEvent `json:"trackingEvents"`
	CreatedAt         time.Time       `json:"createdAt"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
}

// NewOrder is an order as submitted at checkout, before the store assigns
// the id and the tracking log.
type NewOrder struct {
	OrderNumber       string
	UserID            string
	SellerID          string
	Items             []LineItem
	TotalPrice        int64
	Status            Status
	ShippingAddress   ShippingAddress
	TrackingNumber    string
	CreatedAt         time.Time
	EstimatedDelivery *time.Time
}

// NewTrackingEvent is a tracking entry without its id. A zero Timestamp means now.
type NewTrackingEvent struct {
	Status    string    `json:"status" validate:"required"`
	Location  string    `json:"location" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

func (o Order) clone() Order {
	o.Items = append([]LineItem{}, o.Items...)
	o.TrackingEvents = append([]TrackingEvent{}, o.TrackingEvents...)
	if o.EstimatedDelivery != nil {
		d := *o.EstimatedDelivery
		o.EstimatedDelivery = &d
	}
	return o
}
