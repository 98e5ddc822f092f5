package orders

import "optica/internal/errs"

// CashSurchargeCents is the flat cash-on-delivery fee added to the total.
const CashSurchargeCents = 500

type PricedLine struct {
	Quantity   int
	PriceCents int
}

// Total sums qty x unit price across lines plus the cash surcharge when the
// order is paid on delivery.
func Total(lines []PricedLine, method PaymentMethod) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity * l.PriceCents
	}
	if method == PayCash {
		total += CashSurchargeCents
	}
	return total
}

// stockLine is one cart line joined with its product row at placement time.
type stockLine struct {
	ProductID  string
	Name       string
	Qty        int
	PriceCents int
	Stock      int
}

// revalidate re-checks every line against the stock read under the row lock
// and prices the lines that pass. A single shortfall fails the whole batch;
// nothing is priced partially.
func revalidate(lines []stockLine) ([]PricedLine, error) {
	priced := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		if l.Qty > l.Stock {
			return nil, &errs.InsufficientStockError{
				ProductID: l.ProductID, Name: l.Name, Requested: l.Qty, Available: l.Stock,
			}
		}
		priced = append(priced, PricedLine{Quantity: l.Qty, PriceCents: l.PriceCents})
	}
	return priced, nil
}

// ValidateInput checks the placement input shape. Debit payment requires all
// five card fields; cash orders must not carry card details.
func ValidateInput(in PlacementInput) error {
	if in.Address == "" || in.Phone == "" {
		return errs.Validation("address and phone are required")
	}
	switch in.PaymentMethod {
	case PayCash:
		return nil
	case PayDebit:
		c := in.Card
		if c == nil || c.Number == "" || c.HolderName == "" ||
			c.ExpiryMonth == "" || c.ExpiryYear == "" || c.CVV == "" {
			return errs.Validation("all card fields are required for debit card payment")
		}
		return nil
	default:
		return errs.Validation("payment method must be CASH or DEBIT_CARD")
	}
}
