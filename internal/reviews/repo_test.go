package reviews

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"optica/internal/errs"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert review: %w", &pgconn.PgError{Code: "23505"})),
		"wrapped unique violations must still map")

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}), "fk violation is not a duplicate")
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}

func TestCreateRejectsRatingOutOfRange(t *testing.T) {
	r := &Repo{}
	for _, rating := range []int{0, -1, 6} {
		_, err := r.Create(context.Background(), "u-1", "p-1", rating, "meh")
		assert.True(t, errs.IsValidation(err), "rating %d", rating)
	}
}

func TestUpdateRejectsRatingOutOfRange(t *testing.T) {
	r := &Repo{}
	_, err := r.Update(context.Background(), "rv-1", "u-1", 0, "")
	assert.True(t, errs.IsValidation(err))
}
