package brand

import (
	"context"
	"errors"
	"fmt"

	"pcparts-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const brandColumns = `id::text, name, slug, COALESCE(description, ''), is_active, created_at`

var sortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, b domain.Brand) (*domain.Brand, error) {
	const q = `
INSERT INTO brands (name, slug, description, is_active)
VALUES ($1, $2, NULLIF($3, ''), $4)
RETURNING ` + brandColumns
	out, err := scanBrand(r.pool.QueryRow(ctx, q, b.Name, b.Slug, b.Description, b.IsActive))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	out, err := scanBrand(r.pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, p domain.ListParams) ([]domain.Brand, int, error) {
	where := `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM brands `+where, p.Keyword).Scan(&total); err != nil {
		return nil, 0, err
	}

	col := "created_at"
	if c, ok := sortColumns[p.Sort]; ok {
		col = c
	}
	dir := "ASC"
	if p.Order == "desc" {
		dir = "DESC"
	}
	q := fmt.Sprintf(`SELECT %s FROM brands %s ORDER BY %s %s OFFSET $2 LIMIT $3`, brandColumns, where, col, dir)
	rows, err := r.pool.Query(ctx, q, p.Keyword, p.Offset(), p.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, b domain.Brand) (*domain.Brand, error) {
	const q = `
UPDATE brands
SET name = $2, slug = $3, description = NULLIF($4, ''), is_active = $5
WHERE id = $1
RETURNING ` + brandColumns
	out, err := scanBrand(r.pool.QueryRow(ctx, q, b.ID, b.Name, b.Slug, b.Description, b.IsActive))
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
	cmd, err := r.pool.Exec(ctx, `UPDATE brands SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanBrand(row pgx.Row) (*domain.Brand, error) {
	var b domain.Brand
	if err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.IsActive, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
