package shop

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type OrderRepo struct{ DB *pgxpool.Pool }

const orderColumns = `id, customer_name, customer_email, customer_phone, address, city, postal_code,
	payment_method, total_amount, status, payment_status,
	COALESCE(payment_proof, ''), COALESCE(payment_notes, ''), COALESCE(payment_instructions, ''),
	COALESCE(bank_name, ''), COALESCE(account_number, ''), COALESCE(account_name, ''),
	payment_due_date, COALESCE(confirmed_by, ''), paid_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.Address, &o.City, &o.PostalCode,
		&o.PaymentMethod, &o.TotalAmount, &o.Status, &o.PaymentStatus,
		&o.PaymentProof, &o.PaymentNotes, &o.PaymentInstructions,
		&o.BankName, &o.AccountNumber, &o.AccountName,
		&o.PaymentDueDate, &o.ConfirmedBy, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder: insert order + items + decrement stok dalam satu transaksi.
// Decrement bersyarat (stock >= qty) supaya dua order terakhir utk stok
// yang sama tidak bisa sama-sama lolos.
func (r *OrderRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin create order")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, customer_name, customer_email, customer_phone, address, city, postal_code,
			payment_method, total_amount, status, payment_status,
			payment_instructions, bank_name, account_number, account_name, payment_due_date,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULLIF($12,''),NULLIF($13,''),NULLIF($14,''),NULLIF($15,''),$16,$17,$18)`,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Address, o.City, o.PostalCode,
		o.PaymentMethod, o.TotalAmount, o.Status, o.PaymentStatus,
		o.PaymentInstructions, o.BankName, o.AccountNumber, o.AccountName, o.PaymentDueDate,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	for _, it := range o.Items {
		ct, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = now()
			WHERE id = $1 AND stock >= $2`,
			it.ProductID, it.Quantity,
		)
		if err != nil {
			return errors.Wrap(err, "decrement stock")
		}
		if ct.RowsAffected() == 0 {
			var stock int
			err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, it.ProductID).Scan(&stock)
			if errors.Is(err, pgx.ErrNoRows) {
				return Validationf("product not found: %s", it.ProductID)
			}
			if err != nil {
				return errors.Wrap(err, "check stock")
			}
			return fmt.Errorf("%w: product %s has %d left, need %d", ErrInsufficientStock, it.ProductID, stock, it.Quantity)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1,$2,$3,$4,$5)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price,
		)
		if err != nil {
			return errors.Wrap(err, "insert order item")
		}
	}

	return errors.Wrap(tx.Commit(ctx), "commit create order")
}

func (r *OrderRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return o, nil
}

func (r *OrderRepo) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_email=$1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, errors.Wrap(err, "list orders by email")
	}
	return r.collectOrders(ctx, rows)
}

func (r *OrderRepo) ListByPaymentStatus(ctx context.Context, status PaymentStatus, page, limit int) ([]Order, int, error) {
	where, args := "", []any{}
	if status != "" {
		where = " WHERE payment_status=$1"
		args = append(args, status)
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	out, err := r.collectOrders(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *OrderRepo) collectOrders(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	var out []Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	if len(out) == 0 {
		return []Order{}, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

// loadItems mengambil item + snapshot produk utk sekumpulan order sekaligus.
func (r *OrderRepo) loadItems(ctx context.Context, orderIDs []string) (map[string][]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.price,
			p.id, p.name, p.description, p.price, p.stock, p.category, p.image, p.created_at, p.updated_at
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, orderIDs)
	if err != nil {
		return nil, errors.Wrap(err, "load order items")
	}
	defer rows.Close()

	out := make(map[string][]OrderItem, len(orderIDs))
	for rows.Next() {
		var it OrderItem
		var p Product
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Image, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		it.Product = &p
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, errors.Wrap(rows.Err(), "iterate order items")
}

func (r *OrderRepo) SetPaymentProof(ctx context.Context, id, proofURL, notes string) (*Order, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET payment_proof = $2, payment_status = $3, payment_notes = NULLIF($4, ''), updated_at = now()
		WHERE id = $1`,
		id, proofURL, PaymentUploaded, notes,
	)
	if err != nil {
		return nil, errors.Wrap(err, "set payment proof")
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetOrder(ctx, id)
}

func (r *OrderRepo) SetPaymentReview(ctx context.Context, id string, review PaymentReview) (*Order, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET payment_status = $2,
			confirmed_by = $3,
			payment_notes = COALESCE(NULLIF($4, ''), payment_notes),
			paid_at = COALESCE($5, paid_at),
			status = COALESCE($6, status),
			updated_at = now()
		WHERE id = $1`,
		id, review.PaymentStatus, review.ConfirmedBy, review.Notes, review.PaidAt, review.OrderStatus,
	)
	if err != nil {
		return nil, errors.Wrap(err, "set payment review")
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetOrder(ctx, id)
}

func (r *OrderRepo) Stats(ctx context.Context) (OrderStats, error) {
	var s OrderStats
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE payment_status = $1),
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = $2), 0)
		FROM orders`,
		PaymentUploaded, PaymentConfirmed,
	).Scan(&s.Orders, &s.AwaitingReview, &s.Revenue)
	return s, errors.Wrap(err, "order stats")
}
