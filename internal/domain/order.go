package domain

import "time"

// Order statuses.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
	PaymentFailed = "failed"
)

var orderStatuses = map[string]bool{
	OrderPending:    true,
	OrderProcessing: true,
	OrderShipped:    true,
	OrderDelivered:  true,
	OrderCancelled:  true,
}

var paymentStatuses = map[string]bool{
	PaymentUnpaid: true,
	PaymentPaid:   true,
	PaymentFailed: true,
}

var paymentMethods = map[string]bool{
	"credit_card":   true,
	"paypal":        true,
	"cod":           true,
	"bank_transfer": true,
}

func ValidOrderStatus(s string) bool   { return orderStatuses[s] }
func ValidPaymentStatus(s string) bool { return paymentStatuses[s] }
func ValidPaymentMethod(s string) bool { return paymentMethods[s] }

// GuestInfo identifies a shopper without an account.
type GuestInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

type ShippingAddress struct {
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	Country       string `json:"country"`
	Phone         string `json:"phone,omitempty"`
	RecipientName string `json:"recipientName"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          *string         `json:"userId,omitempty"`
	IsGuest         bool            `json:"isGuest"`
	GuestInfo       *GuestInfo      `json:"guestInfo,omitempty"`
	Items           []OrderItem     `json:"items"`
	TotalCents      int64           `json:"totalCents"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes,omitempty"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem snapshots name and price at transaction time.
type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"orderId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	VariantSKU  string `json:"variantSku"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"priceCents"`
}

// RecomputeTotal sets TotalCents to the sum of quantity x price.
func (o *Order) RecomputeTotal() {
	var total int64
	for _, it := range o.Items {
		total += int64(it.Quantity) * it.PriceCents
	}
	o.TotalCents = total
}

// ValidateParty enforces that exactly one of UserID / GuestInfo is set.
func (o *Order) ValidateParty() error {
	if o.IsGuest {
		if o.UserID != nil {
			return Invalid("guest order must not carry a user id")
		}
		if o.GuestInfo == nil {
			return Invalid("guest info required for guest order")
		}
		return nil
	}
	if o.UserID == nil {
		return Invalid("user id required for registered order")
	}
	if o.GuestInfo != nil {
		return Invalid("registered order must not carry guest info")
	}
	return nil
}
