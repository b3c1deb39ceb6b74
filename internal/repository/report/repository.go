package report

import (
	"context"
	"time"
)

// Window bounds an aggregation to [From, To]; nil means unbounded.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Totals summarizes paid orders in a window.
type Totals struct {
	RevenueCents int64   `json:"totalRevenueCents"`
	Orders       int     `json:"totalOrders"`
	AverageCents float64 `json:"averageOrderValueCents"`
}

// Bucket is one time slice of revenue, keyed by its truncated start.
type Bucket struct {
	Start        time.Time `json:"start"`
	RevenueCents int64     `json:"revenueCents"`
	Orders       int       `json:"orders"`
	AverageCents float64   `json:"averageOrderValueCents"`
}

type TopProduct struct {
	ProductID     string `json:"productId"`
	ProductName   string `json:"productName"`
	TotalQuantity int    `json:"totalQuantity"`
	RevenueCents  int64  `json:"totalRevenueCents"`
	OrderCount    int    `json:"orderCount"`
}

type StatusStat struct {
	Status     string `json:"status"`
	Count      int    `json:"count"`
	ValueCents int64  `json:"totalValueCents"`
}

type PaymentMethodStat struct {
	PaymentMethod string `json:"paymentMethod"`
	Count         int    `json:"count"`
	ValueCents    int64  `json:"totalValueCents"`
}

type CustomerStats struct {
	GuestOrders      int `json:"guestOrders"`
	RegisteredOrders int `json:"registeredOrders"`
	RepeatCustomers  int `json:"repeatCustomers"`
	TotalCustomers   int `json:"totalCustomers"`
}

type ConversionCounts struct {
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type ValueStats struct {
	MinCents     int64   `json:"minValueCents"`
	AverageCents float64 `json:"averageValueCents"`
	MaxCents     int64   `json:"maxValueCents"`
}

type LocationStat struct {
	Country      string `json:"country"`
	City         string `json:"city"`
	OrderCount   int    `json:"orderCount"`
	RevenueCents int64  `json:"totalRevenueCents"`
}

type Repository interface {
	Totals(ctx context.Context, w Window) (*Totals, error)
	RevenueBuckets(ctx context.Context, period string, w Window) ([]Bucket, error)
	TopProducts(ctx context.Context, limit int, w Window) ([]TopProduct, error)
	StatusCounts(ctx context.Context, w Window) ([]StatusStat, error)
	PaymentMethodCounts(ctx context.Context, w Window) ([]PaymentMethodStat, error)
	CustomerStats(ctx context.Context, w Window) (*CustomerStats, error)
	ConversionCounts(ctx context.Context, w Window) (*ConversionCounts, error)
	ValueStats(ctx context.Context, w Window) (*ValueStats, error)
	SalesByLocation(ctx context.Context, w Window) ([]LocationStat, error)
}
