package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"optica/internal/errs"
)

func TestTotalWithCashSurcharge(t *testing.T) {
	lines := []PricedLine{
		{Quantity: 2, PriceCents: 2000},
		{Quantity: 1, PriceCents: 1550},
	}
	// 40.00 + 15.50 + 5.00 surcharge
	assert.Equal(t, 6050, Total(lines, PayCash))
}

func TestTotalDebitHasNoSurcharge(t *testing.T) {
	lines := []PricedLine{
		{Quantity: 2, PriceCents: 2000},
		{Quantity: 1, PriceCents: 1550},
	}
	assert.Equal(t, 5550, Total(lines, PayDebit))
}

func TestTotalEmpty(t *testing.T) {
	assert.Equal(t, CashSurchargeCents, Total(nil, PayCash))
	assert.Equal(t, 0, Total(nil, PayDebit))
}

func TestRevalidate(t *testing.T) {
	tests := []struct {
		name    string
		lines   []stockLine
		want    []PricedLine
		wantErr string // product name reported in the error
	}{
		{
			name: "all lines within stock",
			lines: []stockLine{
				{ProductID: "p-1", Name: "Aviator", Qty: 2, PriceCents: 2000, Stock: 5},
				{ProductID: "p-2", Name: "Wayfarer", Qty: 1, PriceCents: 1550, Stock: 1},
			},
			want: []PricedLine{{Quantity: 2, PriceCents: 2000}, {Quantity: 1, PriceCents: 1550}},
		},
		{
			name: "quantity equal to stock passes",
			lines: []stockLine{
				{ProductID: "p-1", Name: "Aviator", Qty: 3, PriceCents: 2000, Stock: 3},
			},
			want: []PricedLine{{Quantity: 3, PriceCents: 2000}},
		},
		{
			name: "second line shortfall fails the whole batch",
			lines: []stockLine{
				{ProductID: "p-1", Name: "Aviator", Qty: 1, PriceCents: 2000, Stock: 9},
				{ProductID: "p-2", Name: "Clubmaster", Qty: 4, PriceCents: 1550, Stock: 1},
			},
			wantErr: "Clubmaster",
		},
		{
			name: "first line shortfall",
			lines: []stockLine{
				{ProductID: "p-1", Name: "Aviator", Qty: 2, PriceCents: 2000, Stock: 0},
			},
			wantErr: "Aviator",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := revalidate(tt.lines)
			if tt.wantErr != "" {
				assert.True(t, errs.IsInsufficientStock(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, got, "a failed batch must price nothing")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func validCard() *CardDetails {
	return &CardDetails{
		Number:      "4111111111111111",
		HolderName:  "Sara Adel",
		ExpiryMonth: "04",
		ExpiryYear:  "2027",
		CVV:         "123",
	}
}

func TestValidateInputCash(t *testing.T) {
	err := ValidateInput(PlacementInput{Address: "12 Tahrir St", Phone: "0100000000", PaymentMethod: PayCash})
	assert.NoError(t, err)
}

func TestValidateInputDebitRequiresAllCardFields(t *testing.T) {
	base := PlacementInput{Address: "12 Tahrir St", Phone: "0100000000", PaymentMethod: PayDebit}

	in := base
	in.Card = validCard()
	assert.NoError(t, ValidateInput(in))

	in = base
	assert.True(t, errs.IsValidation(ValidateInput(in)), "missing card entirely")

	mutations := []func(*CardDetails){
		func(c *CardDetails) { c.Number = "" },
		func(c *CardDetails) { c.HolderName = "" },
		func(c *CardDetails) { c.ExpiryMonth = "" },
		func(c *CardDetails) { c.ExpiryYear = "" },
		func(c *CardDetails) { c.CVV = "" },
	}
	for i, mut := range mutations {
		in = base
		in.Card = validCard()
		mut(in.Card)
		assert.True(t, errs.IsValidation(ValidateInput(in)), "field %d", i)
	}
}

func TestValidateInputRejectsUnknownMethod(t *testing.T) {
	err := ValidateInput(PlacementInput{Address: "a", Phone: "b", PaymentMethod: "BITCOIN"})
	assert.True(t, errs.IsValidation(err))
}

func TestValidateInputRequiresShippingInfo(t *testing.T) {
	err := ValidateInput(PlacementInput{PaymentMethod: PayCash})
	assert.True(t, errs.IsValidation(err))
}
