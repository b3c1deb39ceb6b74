package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product types carried by the catalog.
const (
	ProductTypeComponent = "component"
	ProductTypeLaptop    = "laptop"
	ProductTypePrebuilt  = "prebuilt"
	ProductTypeAccessory = "accessory"
)

var productTypes = map[string]bool{
	ProductTypeComponent: true,
	ProductTypeLaptop:    true,
	ProductTypePrebuilt:  true,
	ProductTypeAccessory: true,
}

// ValidProductType reports whether t is one of the allowed product types.
func ValidProductType(t string) bool { return productTypes[t] }

type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	BrandID           string    `json:"brandId"`
	CategoryID        string    `json:"categoryId"`
	ProductType       string    `json:"productType"`
	Description       string    `json:"description,omitempty"`
	AllowedAttributes []string  `json:"allowedAttributes"`
	Images            []string  `json:"images"`
	DiscountPercent   int       `json:"discount"`
	IsActive          bool      `json:"isActive"`
	Variants          []Variant `json:"variants"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Variant is a concrete purchasable configuration of a product.
type Variant struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"productId"`
	SKU        string            `json:"sku"`
	Slug       string            `json:"slug"`
	PriceCents int64             `json:"priceCents"`
	Stock      int               `json:"stock"`
	Attributes map[string]string `json:"attributes"`
	Images     []string          `json:"images"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// FindVariant returns the variant with the given SKU, or nil.
func (p *Product) FindVariant(sku string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}

// ValidateAttributes checks that every variant attribute key is whitelisted
// by the product's allowedAttributes.
func (p *Product) ValidateAttributes() error {
	allowed := make(map[string]bool, len(p.AllowedAttributes))
	for _, k := range p.AllowedAttributes {
		allowed[k] = true
	}
	for _, v := range p.Variants {
		for k := range v.Attributes {
			if !allowed[k] {
				return Invalid("attribute %q is not allowed for product %q", k, p.Name)
			}
		}
	}
	return nil
}

// DiscountedPriceCents applies a percent discount to a cent amount,
// rounding half-up to whole cents.
func DiscountedPriceCents(priceCents int64, discountPercent int) int64 {
	if discountPercent <= 0 {
		return priceCents
	}
	price := decimal.NewFromInt(priceCents)
	factor := decimal.NewFromInt(int64(100 - discountPercent)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(0).IntPart()
}
