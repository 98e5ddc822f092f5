package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"optica/internal/errs"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	byID := map[string]int{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.SoldOut = p.Stock <= 0
		byID[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	imgs, err := r.DB.Query(ctx, `
		SELECT id, product_id, url, thumb_url, position
		FROM product_images ORDER BY product_id, position`)
	if err != nil {
		return nil, err
	}
	defer imgs.Close()
	for imgs.Next() {
		var im Image
		if err := imgs.Scan(&im.ID, &im.ProductID, &im.URL, &im.ThumbURL, &im.Position); err != nil {
			return nil, err
		}
		if i, ok := byID[im.ProductID]; ok {
			out[i].Images = append(out[i].Images, im)
		}
	}
	return out, imgs.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, errs.ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.SoldOut = p.Stock <= 0

	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, url, thumb_url, position
		FROM product_images WHERE product_id=$1 ORDER BY position`, id)
	if err != nil {
		return Product{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var im Image
		if err := rows.Scan(&im.ID, &im.ProductID, &im.URL, &im.ThumbURL, &im.Position); err != nil {
			return Product{}, err
		}
		p.Images = append(p.Images, im)
	}
	return p, rows.Err()
}

func (r *Repo) Create(ctx context.Context, name, description string, priceCents, stock int) (Product, error) {
	if name == "" || priceCents < 0 || stock < 0 {
		return Product{}, errs.Validation("name required, price and stock must be non-negative")
	}
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, description, price_cents, stock)
		VALUES ($1,$2,$3,$4,$5)`, id, name, description, priceCents, stock)
	if err != nil {
		return Product{}, err
	}
	return r.Get(ctx, id)
}

func (r *Repo) Update(ctx context.Context, id, name, description string, priceCents, stock int) (Product, error) {
	if priceCents < 0 || stock < 0 {
		return Product{}, errs.Validation("price and stock must be non-negative")
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, price_cents=$4, stock=$5, updated_at=now()
		WHERE id=$1`, id, name, description, priceCents, stock)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return Product{}, errs.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetAvailable reads the current stock counter for one product.
func (r *Repo) GetAvailable(ctx context.Context, id string) (int, error) {
	var stock int
	err := r.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, id).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errs.ErrNotFound
	}
	return stock, err
}

// AdjustStock applies a delta and returns the new quantity. Callers are
// responsible for validating that the delta cannot drive stock negative;
// order placement and cancellation do so under row locks in their own
// transactions rather than through this method.
func (r *Repo) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	var stock int
	err := r.DB.QueryRow(ctx, `
		UPDATE products SET stock = stock + $2, updated_at=now()
		WHERE id=$1 RETURNING stock`, id, delta).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errs.ErrNotFound
	}
	return stock, err
}

func (r *Repo) AddImage(ctx context.Context, productID, url, thumbURL string) (Image, error) {
	if _, err := r.Get(ctx, productID); err != nil {
		return Image{}, err
	}
	im := Image{ID: uuid.NewString(), ProductID: productID, URL: url, ThumbURL: thumbURL}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO product_images(id, product_id, url, thumb_url, position)
		VALUES ($1,$2,$3,$4, COALESCE((SELECT MAX(position)+1 FROM product_images WHERE product_id=$2), 0))
		RETURNING position`, im.ID, productID, url, thumbURL).Scan(&im.Position)
	if err != nil {
		return Image{}, err
	}
	return im, nil
}
