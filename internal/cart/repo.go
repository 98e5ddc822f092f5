package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"optica/internal/catalog"
	"optica/internal/errs"
)

type Repo struct{ DB *pgxpool.Pool }

// GetOrCreate returns the user's cart with line items joined against current
// product data, creating an empty cart on first access.
func (r *Repo) GetOrCreate(ctx context.Context, userID string) (Cart, error) {
	id, err := r.cartID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		id = uuid.NewString()
		if _, err := r.DB.Exec(ctx, `
			INSERT INTO carts(id, user_id) VALUES ($1,$2)
			ON CONFLICT (user_id) DO NOTHING`, id, userID); err != nil {
			return Cart{}, err
		}
		// a concurrent first access may have won the insert
		if id, err = r.cartID(ctx, userID); err != nil {
			return Cart{}, err
		}
	} else if err != nil {
		return Cart{}, err
	}
	return r.load(ctx, id, userID)
}

func (r *Repo) cartID(ctx context.Context, userID string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx, `SELECT id FROM carts WHERE user_id=$1`, userID).Scan(&id)
	return id, err
}

func (r *Repo) load(ctx context.Context, cartID, userID string) (Cart, error) {
	c := Cart{ID: cartID, UserID: userID, Items: []Item{}}
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.product_id, ci.qty,
		       p.id, p.name, p.description, p.price_cents, p.stock, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at`, cartID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()
	for rows.Next() {
		it := Item{CartID: cartID, Product: &catalog.Product{}}
		p := it.Product
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity,
			&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return Cart{}, err
		}
		p.SoldOut = p.Stock <= 0
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// AddItem merges the product into the cart, summing quantities when the
// product is already a line item. The stock check compares available stock
// against the combined quantity; it reserves nothing (placement re-checks).
func (r *Repo) AddItem(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	var name string
	var stock int
	err := r.DB.QueryRow(ctx, `SELECT name, stock FROM products WHERE id=$1`, productID).Scan(&name, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, errs.ErrNotFound
	}
	if err != nil {
		return Cart{}, err
	}

	c, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	existing := 0
	itemID := ""
	err = r.DB.QueryRow(ctx, `
		SELECT id, qty FROM cart_items WHERE cart_id=$1 AND product_id=$2`,
		c.ID, productID).Scan(&itemID, &existing)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, err
	}

	merged, err := mergeQuantity(existing, quantity, stock, productID, name)
	if err != nil {
		return Cart{}, err
	}

	if itemID != "" {
		_, err = r.DB.Exec(ctx, `UPDATE cart_items SET qty=$2 WHERE id=$1`, itemID, merged)
	} else {
		_, err = r.DB.Exec(ctx, `
			INSERT INTO cart_items(id, cart_id, product_id, qty)
			VALUES ($1,$2,$3,$4)`, uuid.NewString(), c.ID, productID, merged)
	}
	if err != nil {
		return Cart{}, err
	}
	return r.load(ctx, c.ID, userID)
}

// UpdateItem sets an absolute line quantity after ownership and stock checks.
func (r *Repo) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, errs.Validation("quantity must be at least 1")
	}

	var it Item
	var ownerID, name string
	var stock int
	err := r.DB.QueryRow(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.qty, c.user_id, p.name, p.stock
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id=$1`, itemID).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &ownerID, &name, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, errs.ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	if ownerID != userID {
		return Item{}, errs.ErrForbidden
	}
	if quantity > stock {
		return Item{}, &errs.InsufficientStockError{
			ProductID: it.ProductID, Name: name, Requested: quantity, Available: stock,
		}
	}

	if _, err := r.DB.Exec(ctx, `UPDATE cart_items SET qty=$2 WHERE id=$1`, itemID, quantity); err != nil {
		return Item{}, err
	}
	it.Quantity = quantity
	return it, nil
}

// RemoveItem deletes one line item. Nothing is returned to stock; cart lines
// never held a reservation.
func (r *Repo) RemoveItem(ctx context.Context, itemID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id=$1`, itemID)
	return err
}

// Clear removes every line item from the user's cart.
func (r *Repo) Clear(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id=$1)`, userID)
	return err
}
