package order

import (
	"context"
	"errors"
	"fmt"

	"pcparts-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id::text, user_id::text, is_guest, guest_email, guest_first_name, guest_last_name, guest_phone,
total_cents, status, payment_status,
ship_street, ship_city, COALESCE(ship_state, ''), ship_country, COALESCE(ship_phone, ''), ship_recipient,
payment_method, COALESCE(notes, ''), is_active, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("component", "order-repo").Logger()}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var guestEmail, guestFirst, guestLast, guestPhone *string
	if o.GuestInfo != nil {
		guestEmail, guestFirst, guestLast = &o.GuestInfo.Email, &o.GuestInfo.FirstName, &o.GuestInfo.LastName
		if o.GuestInfo.Phone != "" {
			guestPhone = &o.GuestInfo.Phone
		}
	}

	const q = `
INSERT INTO orders (id, user_id, is_guest, guest_email, guest_first_name, guest_last_name, guest_phone,
                    total_cents, status, payment_status,
                    ship_street, ship_city, ship_state, ship_country, ship_phone, ship_recipient,
                    payment_method, notes, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14, NULLIF($15, ''), $16, $17, NULLIF($18, ''), true)
RETURNING created_at
`
	err = tx.QueryRow(ctx, q,
		o.ID, o.UserID, o.IsGuest, guestEmail, guestFirst, guestLast, guestPhone,
		o.TotalCents, o.Status, o.PaymentStatus,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State,
		o.ShippingAddress.Country, o.ShippingAddress.Phone, o.ShippingAddress.RecipientName,
		o.PaymentMethod, o.Notes,
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.IsActive = true

	for i := range o.Items {
		it := &o.Items[i]
		const itemQ = `
INSERT INTO order_items (order_id, product_id, product_name, variant_sku, quantity, price_cents)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`
		if err := tx.QueryRow(ctx, itemQ, o.ID, it.ProductID, it.ProductName, it.VariantSKU, it.Quantity, it.PriceCents).Scan(&it.ID); err != nil {
			return nil, err
		}
		it.OrderID = o.ID

		if err := decrementStock(ctx, tx, it.ProductName, it.VariantSKU, it.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info().Str("order_id", o.ID).Int64("total_cents", o.TotalCents).Int("items", len(o.Items)).Msg("order created")
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, int, error) {
	where := `
WHERE is_active
  AND ($1 = '' OR user_id = $1::uuid)
  AND ($2 = '' OR status = $2)
  AND ($3 = '' OR payment_status = $3)
  AND ($4 = '' OR created_at >= $4::timestamptz)
  AND ($5 = '' OR created_at <= $5::timestamptz)`
	args := []interface{}{f.UserID, f.Status, f.PaymentStatus, f.From, f.To}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if f.Order == "asc" {
		dir = "ASC"
	}
	q := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at %s OFFSET $6 LIMIT $7`, orderColumns, where, dir)
	rows, err := r.pool.Query(ctx, q, append(args, f.Offset(), f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var oldStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&oldStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if status != nil && *status != oldStatus {
		items, err := r.loadItemsTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		switch {
		case oldStatus != domain.OrderCancelled && *status == domain.OrderCancelled:
			// Restock: the reservation is released.
			for _, it := range items {
				if _, err := tx.Exec(ctx, `UPDATE variants SET stock = stock + $2 WHERE sku = $1`, it.VariantSKU, it.Quantity); err != nil {
					return nil, err
				}
			}
		case oldStatus == domain.OrderCancelled && *status != domain.OrderCancelled:
			// Re-reserve: stock may have been sold elsewhere meanwhile, so the
			// conditional decrement can fail and roll the whole change back.
			for _, it := range items {
				if err := decrementStock(ctx, tx, it.ProductName, it.VariantSKU, it.Quantity); err != nil {
					return nil, err
				}
			}
		}
	}

	const q = `
UPDATE orders
SET status = COALESCE($2, status), payment_status = COALESCE($3, payment_status)
WHERE id = $1
RETURNING ` + orderColumns
	o, err := scanOrder(tx.QueryRow(ctx, q, id, status, paymentStatus))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItemsTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info().Str("order_id", id).Str("from", oldStatus).Str("to", o.Status).Msg("order status updated")
	return o, nil
}

// decrementStock reserves stock iff enough remains; otherwise it reports the
// current remainder via StockError so the caller's transaction aborts.
func decrementStock(ctx context.Context, tx pgx.Tx, productName, sku string, qty int) error {
	cmd, err := tx.Exec(ctx, `UPDATE variants SET stock = stock - $2 WHERE sku = $1 AND stock >= $2`, sku, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var available int
	if err := tx.QueryRow(ctx, `SELECT stock FROM variants WHERE sku = $1`, sku).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return &domain.StockError{ProductName: productName, SKU: sku, Available: available}
}

func (r *postgresRepo) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *postgresRepo) loadItemsTx(ctx context.Context, tx pgx.Tx, orderID string) ([]domain.OrderItem, error) {
	rows, err := tx.Query(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

const itemsQuery = `
SELECT id::text, order_id::text, product_id::text, product_name, variant_sku, quantity, price_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`

func collectItems(rows pgx.Rows) ([]domain.OrderItem, error) {
	defer rows.Close()
	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.VariantSKU, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var guestEmail, guestFirst, guestLast, guestPhone *string
	if err := row.Scan(
		&o.ID, &o.UserID, &o.IsGuest, &guestEmail, &guestFirst, &guestLast, &guestPhone,
		&o.TotalCents, &o.Status, &o.PaymentStatus,
		&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.Country, &o.ShippingAddress.Phone, &o.ShippingAddress.RecipientName,
		&o.PaymentMethod, &o.Notes, &o.IsActive, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if o.IsGuest && guestEmail != nil {
		o.GuestInfo = &domain.GuestInfo{Email: *guestEmail, FirstName: deref(guestFirst), LastName: deref(guestLast), Phone: deref(guestPhone)}
	}
	return &o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
