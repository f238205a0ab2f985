package products

import "time"

type Product struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"original_price,omitempty"`
	Image         string    `json:"image"`
	Stock         int       `json:"stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Ref is the product snapshot carried by cart and wishlist entries.
type Ref struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Brand         string `json:"brand"`
	Price         int64  `json:"price"`
	OriginalPrice *int64 `json:"originalPrice,omitempty"`
	Image         string `json:"image"`
}

func (p Product) Ref() Ref {
	return Ref{ID: p.ID, Name: p.Name, Brand: p.Brand, Price: p.Price, OriginalPrice: p.OriginalPrice, Image: p.Image}.Clone()
}

// Clone returns r with its own copy of OriginalPrice.
func (r Ref) Clone() Ref {
	if r.OriginalPrice != nil {
		op := *r.OriginalPrice
		r.OriginalPrice = &op
	}
	return r
}
