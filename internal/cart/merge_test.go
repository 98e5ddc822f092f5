package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optica/internal/errs"
)

func TestMergeQuantitySums(t *testing.T) {
	// 3 in the cart, add 2, stock 5 -> one line of 5
	got, err := mergeQuantity(3, 2, 5, "p1", "Aviator")
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestMergeQuantityNewLine(t *testing.T) {
	got, err := mergeQuantity(0, 2, 10, "p1", "Aviator")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestMergeQuantityInsufficientStock(t *testing.T) {
	_, err := mergeQuantity(0, 10, 3, "p1", "Aviator")
	require.Error(t, err)
	require.True(t, errs.IsInsufficientStock(err))

	var se *errs.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Aviator", se.Name)
	assert.Equal(t, 10, se.Requested)
	assert.Equal(t, 3, se.Available)
}

func TestMergeQuantityCombinedExceedsStock(t *testing.T) {
	_, err := mergeQuantity(3, 3, 5, "p1", "Aviator")
	require.True(t, errs.IsInsufficientStock(err))
}

func TestMergeQuantityRejectsNonPositive(t *testing.T) {
	_, err := mergeQuantity(1, 0, 5, "p1", "Aviator")
	assert.True(t, errs.IsValidation(err))
	_, err = mergeQuantity(1, -2, 5, "p1", "Aviator")
	assert.True(t, errs.IsValidation(err))
}
