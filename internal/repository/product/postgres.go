package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pcparts-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `p.id::text, p.name, p.slug, p.brand_id::text, p.category_id::text, p.product_type,
COALESCE(p.description, ''), p.allowed_attributes, p.images, p.discount_percent, p.is_active, p.created_at`

const variantColumns = `id::text, product_id::text, sku, slug, price_cents, stock, attributes, images, created_at`

var sortColumns = map[string]string{
	"name":      "p.name",
	"createdAt": "p.created_at",
	"discount":  "p.discount_percent",
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("component", "product-repo").Logger()}
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO products (name, slug, brand_id, category_id, product_type, description, allowed_attributes, images, discount_percent, is_active)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
RETURNING id::text, created_at
`
	var id string
	err = tx.QueryRow(ctx, q,
		p.Name, p.Slug, p.BrandID, p.CategoryID, p.ProductType, p.Description,
		textArray(p.AllowedAttributes), textArray(p.Images), p.DiscountPercent, p.IsActive,
	).Scan(&id, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	p.ID = id

	for i := range p.Variants {
		v := &p.Variants[i]
		if err := insertVariant(ctx, tx, id, v); err != nil {
			if isUniqueViolation(err) {
				return nil, domain.ErrAlreadyExists
			}
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info().Str("product_id", id).Str("slug", p.Slug).Int("variants", len(p.Variants)).Msg("product created")
	return &p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	return r.fetchOne(ctx, q, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.slug = $1`
	return r.fetchOne(ctx, q, slug)
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	where := `WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR p.category_id = $2::uuid)
  AND (NOT $3 OR p.is_active)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p `+where, f.Keyword, f.CategoryID, f.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	col := "p.created_at"
	if c, ok := sortColumns[f.Sort]; ok {
		col = c
	}
	dir := "ASC"
	if f.Order == "desc" {
		dir = "DESC"
	}
	q := fmt.Sprintf(`SELECT %s FROM products p %s ORDER BY %s %s OFFSET $4 LIMIT $5`, productColumns, where, col, dir)
	rows, err := r.pool.Query(ctx, q, f.Keyword, f.CategoryID, f.ActiveOnly, f.Offset(), f.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadVariants(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE products
SET name = $2, slug = $3, brand_id = $4, category_id = $5, product_type = $6,
    description = NULLIF($7, ''), allowed_attributes = $8, images = $9, discount_percent = $10, is_active = $11
WHERE id = $1
RETURNING created_at
`
	err = tx.QueryRow(ctx, q,
		p.ID, p.Name, p.Slug, p.BrandID, p.CategoryID, p.ProductType, p.Description,
		textArray(p.AllowedAttributes), textArray(p.Images), p.DiscountPercent, p.IsActive,
	).Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	// Variants are replaced wholesale; the input carries the full variant
	// set, stock included.
	if _, err := tx.Exec(ctx, `DELETE FROM variants WHERE product_id = $1`, p.ID); err != nil {
		return nil, err
	}
	for i := range p.Variants {
		if err := insertVariant(ctx, tx, p.ID, &p.Variants[i]); err != nil {
			if isUniqueViolation(err) {
				return nil, domain.ErrAlreadyExists
			}
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Search(ctx context.Context, f SearchFilter) ([]CatalogEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 15
	}
	const q = `
SELECT ` + productColumns + `, b.name, c.name, MIN(v.price_cents)
FROM products p
JOIN brands b ON b.id = p.brand_id
JOIN categories c ON c.id = p.category_id
JOIN variants v ON v.product_id = p.id
WHERE p.is_active
  AND v.stock > 0
  AND (cardinality($1::text[]) = 0 OR p.product_type = ANY($1::text[]))
  AND ($2 = '' OR b.name ~* $2)
  AND ($3 = '' OR c.name ~* $3)
  AND ($4 = '' OR p.name ~* $4 OR COALESCE(p.description, '') ~* $4)
  AND ($5::bigint IS NULL OR v.price_cents >= $5)
  AND ($6::bigint IS NULL OR v.price_cents <= $6)
GROUP BY p.id, b.name, c.name
ORDER BY MIN(v.price_cents) ASC
LIMIT $7
`
	rows, err := r.pool.Query(ctx, q,
		textArray(f.ProductTypes),
		alternation(f.Brands),
		alternation(f.Categories),
		alternation(f.Keywords),
		f.MinPriceCents,
		f.MaxPriceCents,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Slug, &e.BrandID, &e.CategoryID, &e.ProductType,
			&e.Description, &e.AllowedAttributes, &e.Images, &e.DiscountPercent, &e.IsActive, &e.CreatedAt,
			&e.BrandName, &e.CategoryName, &e.MinPriceCents,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products := make([]domain.Product, len(entries))
	for i := range entries {
		products[i] = entries[i].Product
	}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	for i := range entries {
		// Keep only in-stock variants in the snapshot.
		var inStock []domain.Variant
		for _, v := range products[i].Variants {
			if v.Stock > 0 {
				inStock = append(inStock, v)
			}
		}
		entries[i].Variants = inStock
	}
	return entries, nil
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, args ...interface{}) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	products := []domain.Product{*p}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *postgresRepo) loadVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]*domain.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	q := `SELECT ` + variantColumns + ` FROM variants WHERE product_id = ANY($1::uuid[]) ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Slug, &v.PriceCents, &v.Stock, &v.Attributes, &v.Images, &v.CreatedAt); err != nil {
			return err
		}
		if p, ok := index[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return rows.Err()
}

func insertVariant(ctx context.Context, tx pgx.Tx, productID string, v *domain.Variant) error {
	const q = `
INSERT INTO variants (product_id, sku, slug, price_cents, stock, attributes, images)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, '{}'::jsonb), $7)
RETURNING id::text, created_at
`
	return tx.QueryRow(ctx, q, productID, v.SKU, v.Slug, v.PriceCents, v.Stock, v.Attributes, textArray(v.Images)).
		Scan(&v.ID, &v.CreatedAt)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.BrandID, &p.CategoryID, &p.ProductType,
		&p.Description, &p.AllowedAttributes, &p.Images, &p.DiscountPercent, &p.IsActive, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// textArray normalizes nil slices so postgres sees an empty array instead of NULL.
func textArray(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// alternation joins values into a case-insensitive regex alternation, with
// whitespace in each value relaxed to match optional spacing.
func alternation(values []string) string {
	var parts []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		parts = append(parts, strings.Join(strings.Fields(regexpEscape(v)), `\s*`))
	}
	return strings.Join(parts, "|")
}

func regexpEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
