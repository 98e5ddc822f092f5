package cart

import "optica/internal/errs"

// mergeQuantity decides the line quantity after adding requested units of a
// product to a cart that already holds existing units. Stock covers the
// combined quantity or the add is rejected outright.
func mergeQuantity(existing, requested, stock int, productID, name string) (int, error) {
	if requested < 1 {
		return 0, errs.Validation("quantity must be at least 1")
	}
	want := existing + requested
	if want > stock {
		return 0, &errs.InsufficientStockError{
			ProductID: productID,
			Name:      name,
			Requested: want,
			Available: stock,
		}
	}
	return want, nil
}
