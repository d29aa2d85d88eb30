package shop

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type AdminRepo struct{ DB *pgxpool.Pool }

func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	return r.get(ctx, `SELECT id, username, password, name, created_at FROM admins WHERE username=$1`, username)
}

func (r *AdminRepo) GetByID(ctx context.Context, id string) (*Admin, error) {
	return r.get(ctx, `SELECT id, username, password, name, created_at FROM admins WHERE id=$1`, id)
}

func (r *AdminRepo) get(ctx context.Context, q, arg string) (*Admin, error) {
	var a Admin
	err := r.DB.QueryRow(ctx, q, arg).Scan(&a.ID, &a.Username, &a.Password, &a.Name, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get admin")
	}
	return &a, nil
}
