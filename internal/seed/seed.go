// Package seed inserts demo data for manual testing. All inserts are
// idempotent via ON CONFLICT.
package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"pcparts-backend/internal/domain"
)

type variantSeed struct {
	SKU        string
	Slug       string
	PriceCents int64
	Stock      int
	Attributes map[string]string
}

type productSeed struct {
	Name            string
	Slug            string
	Brand           string
	Category        string
	ProductType     string
	Description     string
	AllowedAttrs    []string
	DiscountPercent int
	Variants        []variantSeed
}

// Apply populates an admin account and a small PC-parts catalog.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "admin@pcparts.local", "Admin123"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	brands := map[string]string{}
	for _, name := range []string{"AMD", "Intel", "NVIDIA", "Corsair", "ASUS"} {
		id, err := ensureBrand(ctx, pool, name)
		if err != nil {
			return fmt.Errorf("ensure brand %s: %w", name, err)
		}
		brands[name] = id
	}

	categories := map[string]string{}
	for _, name := range []string{"Processors", "Graphics Cards", "Memory", "Motherboards"} {
		id, err := ensureCategory(ctx, pool, name)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", name, err)
		}
		categories[name] = id
	}

	products := []productSeed{
		{
			Name:         "Ryzen 7 9700X",
			Slug:         "ryzen-7-9700x",
			Brand:        "AMD",
			Category:     "Processors",
			ProductType:  "component",
			Description:  "8-core AM5 processor",
			AllowedAttrs: []string{"cores", "base_clock"},
			Variants: []variantSeed{
				{SKU: "CPU-9700X", Slug: "cpu-9700x", PriceCents: 35900, Stock: 12,
					Attributes: map[string]string{"cores": "8", "base_clock": "3.8GHz"}},
			},
		},
		{
			Name:            "GeForce RTX 4070",
			Slug:            "geforce-rtx-4070",
			Brand:           "NVIDIA",
			Category:        "Graphics Cards",
			ProductType:     "component",
			Description:     "12GB GDDR6X graphics card",
			AllowedAttrs:    []string{"memory"},
			DiscountPercent: 5,
			Variants: []variantSeed{
				{SKU: "GPU-4070-12G", Slug: "gpu-4070-12g", PriceCents: 59900, Stock: 6,
					Attributes: map[string]string{"memory": "12GB"}},
			},
		},
		{
			Name:         "Vengeance DDR5 32GB",
			Slug:         "vengeance-ddr5-32gb",
			Brand:        "Corsair",
			Category:     "Memory",
			ProductType:  "component",
			Description:  "32GB (2x16GB) DDR5-6000 kit",
			AllowedAttrs: []string{"capacity", "speed"},
			Variants: []variantSeed{
				{SKU: "RAM-V-32-6000", Slug: "ram-v-32-6000", PriceCents: 12900, Stock: 20,
					Attributes: map[string]string{"capacity": "32GB", "speed": "6000MHz"}},
				{SKU: "RAM-V-32-5600", Slug: "ram-v-32-5600", PriceCents: 11400, Stock: 15,
					Attributes: map[string]string{"capacity": "32GB", "speed": "5600MHz"}},
			},
		},
		{
			Name:         "ROG Strix B650-A",
			Slug:         "rog-strix-b650-a",
			Brand:        "ASUS",
			Category:     "Motherboards",
			ProductType:  "component",
			Description:  "AM5 ATX motherboard",
			AllowedAttrs: []string{"form_factor"},
			Variants: []variantSeed{
				{SKU: "MB-B650-A", Slug: "mb-b650-a", PriceCents: 21900, Stock: 8,
					Attributes: map[string]string{"form_factor": "ATX"}},
			},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, brands[p.Brand], categories[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}
	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
INSERT INTO users (email, password_hash, first_name, role)
VALUES ($1, $2, 'Admin', 'admin')
ON CONFLICT (email) DO NOTHING
`, email, string(hashed))
	return err
}

func ensureBrand(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	slug := domain.Slugify(name)
	if _, err := pool.Exec(ctx, `
INSERT INTO brands (name, slug) VALUES ($1, $2)
ON CONFLICT (slug) DO NOTHING
`, name, slug); err != nil {
		return "", err
	}
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM brands WHERE slug = $1`, slug).Scan(&id)
	return id, err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	slug := domain.Slugify(name)
	if _, err := pool.Exec(ctx, `
INSERT INTO categories (name, slug) VALUES ($1, $2)
ON CONFLICT (slug) DO NOTHING
`, name, slug); err != nil {
		return "", err
	}
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM categories WHERE slug = $1`, slug).Scan(&id)
	return id, err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, brandID, categoryID string, p productSeed) error {
	if _, err := pool.Exec(ctx, `
INSERT INTO products (name, slug, brand_id, category_id, product_type, description, allowed_attributes, discount_percent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO NOTHING
`, p.Name, p.Slug, brandID, categoryID, p.ProductType, p.Description, p.AllowedAttrs, p.DiscountPercent); err != nil {
		return err
	}

	var productID string
	if err := pool.QueryRow(ctx, `SELECT id::text FROM products WHERE slug = $1`, p.Slug).Scan(&productID); err != nil {
		return err
	}

	for _, v := range p.Variants {
		if _, err := pool.Exec(ctx, `
INSERT INTO variants (product_id, sku, slug, price_cents, stock, attributes)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (sku) DO NOTHING
`, productID, v.SKU, v.Slug, v.PriceCents, v.Stock, v.Attributes); err != nil {
			return err
		}
	}
	return nil
}
