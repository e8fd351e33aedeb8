// Package pricing turns cart lines and product snapshots into an itemized
// quote. It performs no I/O.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Quote is the priced view of a cart. Item fields are rounded to two decimal
// places; the totals are accumulated from unrounded values and rounded once,
// so they may differ from the sum of the rounded item fields by a cent.
type Quote struct {
	Items         []domain.PurchaseItem
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	AmountDue     decimal.Decimal
	CashbackTotal decimal.Decimal
}

// Compute prices the given lines against the product snapshots. Lines
// referencing unknown products are skipped. Returns domain.ErrEmptyCart when
// no valid lines remain.
func Compute(lines []domain.CartLine, products map[int64]domain.Product) (*Quote, error) {
	var (
		items         []domain.PurchaseItem
		subtotal      decimal.Decimal
		discountTotal decimal.Decimal
		amountDue     decimal.Decimal
		cashbackTotal decimal.Decimal
	)

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		lineSubtotal := product.Price.Mul(qty)
		lineDiscount := lineSubtotal.Mul(product.DiscountPercent).Div(hundred)
		lineTotal := lineSubtotal.Sub(lineDiscount)
		if lineTotal.IsNegative() {
			lineTotal = decimal.Zero
		}
		lineCashback := lineTotal.Mul(product.CashbackPercent).Div(hundred)

		subtotal = subtotal.Add(lineSubtotal)
		discountTotal = discountTotal.Add(lineDiscount)
		amountDue = amountDue.Add(lineTotal)
		cashbackTotal = cashbackTotal.Add(lineCashback)

		productID := product.ID
		items = append(items, domain.PurchaseItem{
			ProductID:      &productID,
			Name:           product.Name,
			Quantity:       line.Quantity,
			UnitPrice:      product.Price.Round(2),
			LineTotal:      lineTotal.Round(2),
			DiscountAmount: lineDiscount.Round(2),
			CashbackAmount: lineCashback.Round(2),
		})
	}

	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	return &Quote{
		Items:         items,
		Subtotal:      subtotal.Round(2),
		DiscountTotal: discountTotal.Round(2),
		AmountDue:     amountDue.Round(2),
		CashbackTotal: cashbackTotal.Round(2),
	}, nil
}
