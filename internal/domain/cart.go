package domain

import "time"

// Cart is the single active pre-checkout accumulator per user.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"totalCents"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID              string `json:"id"`
	CartID          string `json:"cartId"`
	ProductID       string `json:"productId"`
	VariantSKU      string `json:"variantSku"`
	Quantity        int    `json:"quantity"`
	PriceAtAddCents int64  `json:"priceAtAddCents"`
}

// RecomputeTotal sets TotalCents to the sum of quantity x priceAtAdd.
// Invariant: runs before every cart save.
func (c *Cart) RecomputeTotal() {
	var total int64
	for _, it := range c.Items {
		total += int64(it.Quantity) * it.PriceAtAddCents
	}
	c.TotalCents = total
}
