// Package reviews holds the one-review-per-user-per-product aggregate. Its
// lifecycle is independent of carts and orders.
package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"optica/internal/errs"
)

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, userID, productID string, rating int, comment string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, errs.Validation("rating must be between 1 and 5")
	}

	var exists bool
	if err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
		return Review{}, err
	}
	if !exists {
		return Review{}, errs.ErrNotFound
	}

	rv := Review{ID: uuid.NewString(), UserID: userID, ProductID: productID, Rating: rating, Comment: comment}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO reviews(id, user_id, product_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		rv.ID, userID, productID, rating, comment).Scan(&rv.CreatedAt)
	if isUniqueViolation(err) {
		return Review{}, errs.ErrDuplicateReview
	}
	if err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (r *Repo) Update(ctx context.Context, reviewID, userID string, rating int, comment string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, errs.Validation("rating must be between 1 and 5")
	}
	rv, err := r.get(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if rv.UserID != userID {
		return Review{}, errs.ErrForbidden
	}
	if _, err := r.DB.Exec(ctx,
		`UPDATE reviews SET rating=$2, comment=$3 WHERE id=$1`, reviewID, rating, comment); err != nil {
		return Review{}, err
	}
	rv.Rating, rv.Comment = rating, comment
	return rv, nil
}

// Delete removes a review. Admins may delete any review, owners their own.
func (r *Repo) Delete(ctx context.Context, reviewID, userID string, isAdmin bool) error {
	rv, err := r.get(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv.UserID != userID && !isAdmin {
		return errs.ErrForbidden
	}
	_, err = r.DB.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, reviewID)
	return err
}

func (r *Repo) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, product_id, rating, comment, created_at
		FROM reviews WHERE product_id=$1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// AverageRating returns 0 when the product has no reviews.
func (r *Repo) AverageRating(ctx context.Context, productID string) (float64, error) {
	var avg float64
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id=$1`, productID).Scan(&avg)
	return avg, err
}

func (r *Repo) get(ctx context.Context, reviewID string) (Review, error) {
	var rv Review
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, product_id, rating, comment, created_at
		FROM reviews WHERE id=$1`, reviewID).
		Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, errs.ErrNotFound
	}
	return rv, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
