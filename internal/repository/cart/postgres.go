package cart

import (
	"context"
	"errors"
	"fmt"

	"pcparts-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cartColumns = `id::text, user_id::text, total_cents, is_active, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Cart) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO carts (user_id, total_cents, is_active)
VALUES ($1, 0, true)
RETURNING id::text, created_at, updated_at
`
	if err := tx.QueryRow(ctx, q, c.UserID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.IsActive = true

	for i := range c.Items {
		it := &c.Items[i]
		if err := insertItem(ctx, tx, c.ID, it); err != nil {
			return nil, err
		}
	}
	if err := updateCartTotal(ctx, tx, c.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	c.RecomputeTotal()
	return &c, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
}

func (r *postgresRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE user_id = $1 AND is_active
ORDER BY created_at DESC
LIMIT 1
`
	return r.fetchCart(ctx, q, userID)
}

func (r *postgresRepo) List(ctx context.Context, p domain.ListParams) ([]domain.Cart, int, error) {
	where := `WHERE ($1 = '' OR u.email ILIKE '%' || $1 || '%')`

	var total int
	countQ := `SELECT COUNT(*) FROM carts c JOIN users u ON u.id = c.user_id ` + where
	if err := r.pool.QueryRow(ctx, countQ, p.Keyword).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if p.Order == "desc" {
		dir = "DESC"
	}
	q := fmt.Sprintf(`
SELECT c.id::text, c.user_id::text, c.total_cents, c.is_active, c.created_at, c.updated_at
FROM carts c
JOIN users u ON u.id = c.user_id
%s
ORDER BY c.created_at %s
OFFSET $2 LIMIT $3
`, where, dir)
	rows, err := r.pool.Query(ctx, q, p.Keyword, p.Offset(), p.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var carts []domain.Cart
	for rows.Next() {
		var c domain.Cart
		if err := rows.Scan(&c.ID, &c.UserID, &c.TotalCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range carts {
		items, err := r.loadItems(ctx, carts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		carts[i].Items = items
	}
	return carts, total, nil
}

// ReplaceItems swaps the cart's lines wholesale and recomputes the total,
// all in one transaction. The caller owns the merge logic.
func (r *postgresRepo) ReplaceItems(ctx context.Context, cartID string, items []domain.CartItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	for i := range items {
		if err := insertItem(ctx, tx, cartID, &items[i]); err != nil {
			return err
		}
	}
	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveItems(ctx context.Context, cartID string, refs []LineRef) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ref := range refs {
		if _, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2 AND variant_sku = $3
`, cartID, ref.ProductID, ref.VariantSKU); err != nil {
			return err
		}
	}
	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, q string, args ...interface{}) (*domain.Cart, error) {
	var c domain.Cart
	err := r.pool.QueryRow(ctx, q, args...).Scan(&c.ID, &c.UserID, &c.TotalCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.loadItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	const q = `
SELECT id::text, cart_id::text, product_id::text, variant_sku, quantity, price_at_add_cents
FROM cart_items
WHERE cart_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.VariantSKU, &it.Quantity, &it.PriceAtAddCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func insertItem(ctx context.Context, tx pgx.Tx, cartID string, it *domain.CartItem) error {
	const q = `
INSERT INTO cart_items (cart_id, product_id, variant_sku, quantity, price_at_add_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`
	if err := tx.QueryRow(ctx, q, cartID, it.ProductID, it.VariantSKU, it.Quantity, it.PriceAtAddCents).Scan(&it.ID); err != nil {
		return err
	}
	it.CartID = cartID
	return nil
}

// Invariant: total_cents always equals the sum of quantity x price_at_add.
func updateCartTotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_cents = COALESCE((
	SELECT SUM(quantity * price_at_add_cents)
	FROM cart_items
	WHERE cart_id = $1
), 0),
    updated_at = now()
WHERE id = $1
`, cartID)
	return err
}
