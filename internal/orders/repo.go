package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"optica/internal/errs"
)

type Repo struct{ DB *pgxpool.Pool }

// Place runs the whole order-placement workflow as one transaction: lock the
// cart's product rows, re-validate stock, snapshot prices into order items,
// decrement stock, and clear the cart. Any failure rolls everything back.
func (r *Repo) Place(ctx context.Context, userID string, in PlacementInput) (Order, error) {
	if err := ValidateInput(in); err != nil {
		return Order{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// ORDER BY keeps the lock acquisition order stable across concurrent
	// placements of overlapping products.
	rows, err := tx.Query(ctx, `
		SELECT c.id, ci.product_id, ci.qty, p.name, p.price_cents, p.stock
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.product_id
		FOR UPDATE OF p`, userID)
	if err != nil {
		return Order{}, err
	}

	var cartID string
	var lines []stockLine
	for rows.Next() {
		var l stockLine
		if err := rows.Scan(&cartID, &l.ProductID, &l.Qty, &l.Name, &l.PriceCents, &l.Stock); err != nil {
			rows.Close()
			return Order{}, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Order{}, err
	}
	if len(lines) == 0 {
		return Order{}, errs.ErrEmptyCart
	}

	// re-check at the instant of placement, not the cart-time check
	priced, err := revalidate(lines)
	if err != nil {
		return Order{}, err
	}
	total := Total(priced, in.PaymentMethod)

	orderID := uuid.NewString()
	card := in.Card
	if in.PaymentMethod != PayDebit {
		card = nil
	}
	var num, holder, expM, expY, cvv *string
	if card != nil {
		num, holder, expM, expY, cvv = &card.Number, &card.HolderName, &card.ExpiryMonth, &card.ExpiryYear, &card.CVV
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, address, phone, payment_method, total_cents,
		                   card_number, card_holder_name, card_expiry_month, card_expiry_year, card_cvv)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		orderID, userID, StatusPending, in.Address, in.Phone, in.PaymentMethod, total,
		num, holder, expM, expY, cvv)
	if err != nil {
		return Order{}, err
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), orderID, l.ProductID, l.Qty, l.PriceCents); err != nil {
			return Order{}, err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at=now()
			WHERE id = $1`, l.ProductID, l.Qty); err != nil {
			return Order{}, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return r.GetByID(ctx, orderID)
}

// SetStatus applies one state-machine transition. The old status is read
// under a row lock so a second concurrent cancel sees CANCELLED and skips
// the stock restoration. Setting the current status again is a no-op.
func (r *Repo) SetStatus(ctx context.Context, orderID string, to Status) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var old Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&old)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, errs.ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	if old == to {
		return r.GetByID(ctx, orderID)
	}
	if !CanTransition(old, to) {
		return Order{}, &errs.InvalidTransitionError{From: string(old), To: string(to)}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, to); err != nil {
		return Order{}, err
	}

	if RestoresStock(old, to) {
		items, err := tx.Query(ctx, `
			SELECT product_id, qty FROM order_items WHERE order_id=$1 ORDER BY product_id`, orderID)
		if err != nil {
			return Order{}, err
		}
		type rec struct {
			pid string
			qty int
		}
		var recs []rec
		for items.Next() {
			var x rec
			if err := items.Scan(&x.pid, &x.qty); err != nil {
				items.Close()
				return Order{}, err
			}
			recs = append(recs, x)
		}
		items.Close()
		if err := items.Err(); err != nil {
			return Order{}, err
		}
		for _, x := range recs {
			if _, err := tx.Exec(ctx, `
				UPDATE products SET stock = stock + $2, updated_at=now()
				WHERE id=$1`, x.pid, x.qty); err != nil {
				return Order{}, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *Repo) GetByID(ctx context.Context, orderID string) (Order, error) {
	var o Order
	var num, holder, expM, expY, cvv *string
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, status, address, phone, payment_method, total_cents,
		       card_number, card_holder_name, card_expiry_month, card_expiry_year, card_cvv,
		       created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.Address, &o.Phone, &o.PaymentMethod, &o.TotalCents,
			&num, &holder, &expM, &expY, &cvv, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, errs.ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if num != nil {
		o.Card = &CardDetails{Number: *num, HolderName: *holder, ExpiryMonth: *expM, ExpiryYear: *expY, CVV: *cvv}
	}
	o.Items, err = r.itemsFor(ctx, orderID)
	return o, err
}

func (r *Repo) itemsFor(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.qty, oi.price_cents
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `WHERE user_id=$1`, userID)
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, ``)
}

func (r *Repo) list(ctx context.Context, where string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, address, phone, payment_method, total_cents, created_at, updated_at
		FROM orders `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Address, &o.Phone, &o.PaymentMethod,
			&o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.itemsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
