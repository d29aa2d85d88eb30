package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type ProductRepo struct{ DB *pgxpool.Pool }

const productColumns = `id, name, description, price, stock, category, image, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products (id, name, description, price, stock, category, image, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.Image, p.CreatedAt, p.UpdatedAt,
	)
	return errors.Wrap(err, "insert product")
}

func (r *ProductRepo) Update(ctx context.Context, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, description=$3, price=$4, stock=$5, category=$6, image=$7, updated_at=$8
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.Image, p.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, errors.Wrap(err, "get product")
}

// List utk halaman admin: search bebas atas name/description/category.
func (r *ProductRepo) List(ctx context.Context, search string, page, limit int) ([]Product, int, error) {
	where, args := "", []any{}
	if search != "" {
		where = ` WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	args = append(args, limit, (page-1)*limit)
	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))
	return r.collect(ctx, q, args, total)
}

var searchSorts = map[string]string{
	"name_asc":   "name ASC",
	"name_desc":  "name DESC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"newest":     "created_at DESC",
	"oldest":     "created_at ASC",
}

// Search katalog publik; semua filter opsional, dibangun jadi satu WHERE.
func (r *ProductRepo) Search(ctx context.Context, params SearchParams) ([]Product, int, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Query != "" {
		p := arg("%" + params.Query + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if len(params.Categories) > 0 {
		conds = append(conds, fmt.Sprintf("category = ANY(%s)", arg(params.Categories)))
	}
	if params.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price >= %s", arg(*params.MinPrice)))
	}
	if params.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price <= %s", arg(*params.MaxPrice)))
	}
	switch params.Stock {
	case "in_stock":
		conds = append(conds, "stock > 0")
	case "out_of_stock":
		conds = append(conds, "stock <= 0")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count search")
	}

	orderBy, ok := searchSorts[params.Sort]
	if !ok {
		orderBy = "created_at DESC"
	}

	limitP := arg(params.Limit)
	offsetP := arg((params.Page - 1) * params.Limit)
	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT %s OFFSET %s`,
		productColumns, where, orderBy, limitP, offsetP)
	return r.collect(ctx, q, args, total)
}

func (r *ProductRepo) collect(ctx context.Context, q string, args []any, total int) ([]Product, int, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan product")
		}
		out = append(out, *p)
	}
	return out, total, errors.Wrap(rows.Err(), "iterate products")
}

func (r *ProductRepo) Suggestions(ctx context.Context, query string, limit int) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1
		ORDER BY name ASC
		LIMIT $2`,
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query suggestions")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan suggestion")
		}
		out = append(out, *p)
	}
	return out, errors.Wrap(rows.Err(), "iterate suggestions")
}

func (r *ProductRepo) FilterMeta(ctx context.Context) (FilterMeta, error) {
	meta := FilterMeta{Categories: []string{}}

	rows, err := r.DB.Query(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return meta, errors.Wrap(err, "query categories")
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return meta, errors.Wrap(err, "scan category")
		}
		meta.Categories = append(meta.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return meta, errors.Wrap(err, "iterate categories")
	}

	err = r.DB.QueryRow(ctx, `SELECT COALESCE(MIN(price),0), COALESCE(MAX(price),0) FROM products`).
		Scan(&meta.PriceRange.Min, &meta.PriceRange.Max)
	return meta, errors.Wrap(err, "price range")
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, errors.Wrap(err, "count products")
}
