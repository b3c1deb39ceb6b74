package category

import (
	"context"
	"errors"
	"fmt"

	"pcparts-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id::text, name, slug, COALESCE(description, ''), parent_id::text, level, sort_order, is_active, created_at`

var sortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"sortOrder": "sort_order",
	"level":     "level",
}

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, slug, description, parent_id, level, sort_order, is_active)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
RETURNING ` + categoryColumns
	row := r.pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description, c.ParentID, c.Level, c.SortOrder, c.IsActive)
	out, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return r.fetchOne(ctx, q, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	return r.fetchOne(ctx, q, slug)
}

func (r *postgresRepo) List(ctx context.Context, p domain.ListParams) ([]domain.Category, int, error) {
	where := `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories `+where, p.Keyword).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM categories %s ORDER BY %s %s OFFSET $2 LIMIT $3`,
		categoryColumns, where, orderColumn(p.Sort), sortDirection(p.Order))
	rows, err := r.pool.Query(ctx, q, p.Keyword, p.Offset(), p.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) ListWithProductCounts(ctx context.Context, p domain.ListParams) ([]domain.CategoryWithCount, int, error) {
	categories, total, err := r.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}

	const countQ = `SELECT category_id::text, COUNT(*) FROM products GROUP BY category_id`
	rows, err := r.pool.Query(ctx, countQ)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, 0, err
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	result := make([]domain.CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		result = append(result, domain.CategoryWithCount{Category: c, ProductCount: counts[c.ID]})
	}
	return result, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
UPDATE categories
SET name = $2, slug = $3, description = NULLIF($4, ''), parent_id = $5, level = $6, sort_order = $7, is_active = $8
WHERE id = $1
RETURNING ` + categoryColumns
	row := r.pool.QueryRow(ctx, q, c.ID, c.Name, c.Slug, c.Description, c.ParentID, c.Level, c.SortOrder, c.IsActive)
	out, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE categories SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, args ...interface{}) (*domain.Category, error) {
	out, err := scanCategory(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.Level, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func orderColumn(sort string) string {
	if col, ok := sortColumns[sort]; ok {
		return col
	}
	return "created_at"
}

func sortDirection(order string) string {
	if order == "desc" {
		return "DESC"
	}
	return "ASC"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
