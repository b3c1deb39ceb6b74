package report

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// All queries aggregate the orders table directly; nothing is cached and
// nothing is mutated.
type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const windowClause = `($1::timestamptz IS NULL OR created_at >= $1) AND ($2::timestamptz IS NULL OR created_at <= $2)`

func (r *postgresRepo) Totals(ctx context.Context, w Window) (*Totals, error) {
	const q = `
SELECT COALESCE(SUM(total_cents), 0), COUNT(*), COALESCE(AVG(total_cents), 0)
FROM orders
WHERE payment_status = 'paid' AND ` + windowClause
	var t Totals
	if err := r.pool.QueryRow(ctx, q, w.From, w.To).Scan(&t.RevenueCents, &t.Orders, &t.AverageCents); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresRepo) RevenueBuckets(ctx context.Context, period string, w Window) ([]Bucket, error) {
	// period is validated by the service to day|week|month before it
	// reaches the date_trunc argument.
	const q = `
SELECT date_trunc($3, created_at) AS bucket, SUM(total_cents), COUNT(*), AVG(total_cents)
FROM orders
WHERE payment_status = 'paid' AND ` + windowClause + `
GROUP BY bucket
ORDER BY bucket ASC
`
	rows, err := r.pool.Query(ctx, q, w.From, w.To, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Start, &b.RevenueCents, &b.Orders, &b.AverageCents); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *postgresRepo) TopProducts(ctx context.Context, limit int, w Window) ([]TopProduct, error) {
	const q = `
SELECT oi.product_id::text, oi.product_name, SUM(oi.quantity), SUM(oi.quantity * oi.price_cents), COUNT(DISTINCT oi.order_id)
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE ($1::timestamptz IS NULL OR o.created_at >= $1) AND ($2::timestamptz IS NULL OR o.created_at <= $2)
GROUP BY oi.product_id, oi.product_name
ORDER BY SUM(oi.quantity) DESC
LIMIT $3
`
	rows, err := r.pool.Query(ctx, q, w.From, w.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []TopProduct
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ProductID, &t.ProductName, &t.TotalQuantity, &t.RevenueCents, &t.OrderCount); err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

func (r *postgresRepo) StatusCounts(ctx context.Context, w Window) ([]StatusStat, error) {
	const q = `
SELECT status, COUNT(*), COALESCE(SUM(total_cents), 0)
FROM orders
WHERE ` + windowClause + `
GROUP BY status
`
	rows, err := r.pool.Query(ctx, q, w.From, w.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StatusStat
	for rows.Next() {
		var s StatusStat
		if err := rows.Scan(&s.Status, &s.Count, &s.ValueCents); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresRepo) PaymentMethodCounts(ctx context.Context, w Window) ([]PaymentMethodStat, error) {
	const q = `
SELECT payment_method, COUNT(*), COALESCE(SUM(total_cents), 0)
FROM orders
WHERE payment_status = 'paid' AND ` + windowClause + `
GROUP BY payment_method
`
	rows, err := r.pool.Query(ctx, q, w.From, w.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PaymentMethodStat
	for rows.Next() {
		var s PaymentMethodStat
		if err := rows.Scan(&s.PaymentMethod, &s.Count, &s.ValueCents); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresRepo) CustomerStats(ctx context.Context, w Window) (*CustomerStats, error) {
	var stats CustomerStats

	const countQ = `
SELECT COUNT(*) FILTER (WHERE is_guest), COUNT(*) FILTER (WHERE NOT is_guest)
FROM orders
WHERE ` + windowClause
	if err := r.pool.QueryRow(ctx, countQ, w.From, w.To).Scan(&stats.GuestOrders, &stats.RegisteredOrders); err != nil {
		return nil, err
	}

	const repeatQ = `
SELECT COUNT(*) FROM (
	SELECT user_id
	FROM orders
	WHERE NOT is_guest AND ` + windowClause + `
	GROUP BY user_id
	HAVING COUNT(*) > 1
) repeaters
`
	if err := r.pool.QueryRow(ctx, repeatQ, w.From, w.To).Scan(&stats.RepeatCustomers); err != nil {
		return nil, err
	}

	stats.TotalCustomers = stats.GuestOrders + stats.RegisteredOrders
	return &stats, nil
}

func (r *postgresRepo) ConversionCounts(ctx context.Context, w Window) (*ConversionCounts, error) {
	const q = `
SELECT COUNT(*) FILTER (WHERE status IN ('delivered', 'shipped')), COUNT(*) FILTER (WHERE status = 'cancelled')
FROM orders
WHERE ` + windowClause
	var c ConversionCounts
	if err := r.pool.QueryRow(ctx, q, w.From, w.To).Scan(&c.Completed, &c.Cancelled); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) ValueStats(ctx context.Context, w Window) (*ValueStats, error) {
	const q = `
SELECT COALESCE(MIN(total_cents), 0), COALESCE(AVG(total_cents), 0), COALESCE(MAX(total_cents), 0)
FROM orders
WHERE payment_status = 'paid' AND ` + windowClause
	var v ValueStats
	if err := r.pool.QueryRow(ctx, q, w.From, w.To).Scan(&v.MinCents, &v.AverageCents, &v.MaxCents); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) SalesByLocation(ctx context.Context, w Window) ([]LocationStat, error) {
	const q = `
SELECT ship_country, ship_city, COUNT(*), COALESCE(SUM(total_cents), 0)
FROM orders
WHERE payment_status = 'paid' AND ` + windowClause + `
GROUP BY ship_country, ship_city
ORDER BY SUM(total_cents) DESC
`
	rows, err := r.pool.Query(ctx, q, w.From, w.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []LocationStat
	for rows.Next() {
		var s LocationStat
		if err := rows.Scan(&s.Country, &s.City, &s.OrderCount, &s.RevenueCents); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
