package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	purchaserepo "storefront/internal/repository/purchase"
)

type stubCatalog struct {
	products map[int64]domain.Product
	err      error
}

func (s *stubCatalog) GetByIDs(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[int64]domain.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// fakeOrders keeps purchases and a single wallet balance in memory so the
// settlement flows can be asserted end to end.
type fakeOrders struct {
	nextID       int64
	purchases    map[int64]*domain.Purchase
	balance      decimal.Decimal
	transactions []domain.WalletTransaction
	settleCalls  int
	createErr    error
}

func newFakeOrders(balance string) *fakeOrders {
	return &fakeOrders{
		nextID:    1,
		purchases: map[int64]*domain.Purchase{},
		balance:   decimal.RequireFromString(balance),
	}
}

func (f *fakeOrders) create(in purchaserepo.CreateInput, status string) *domain.Purchase {
	p := &domain.Purchase{
		ID:               f.nextID,
		UserID:           &in.UserID,
		PaymentReference: "ref-1",
		Currency:         in.Currency,
		Subtotal:         in.Subtotal,
		DiscountTotal:    in.DiscountTotal,
		AmountDue:        in.AmountDue,
		CashbackTotal:    in.CashbackTotal,
		Status:           status,
		Items:            in.Items,
	}
	f.nextID++
	f.purchases[p.ID] = p
	return p
}

func (f *fakeOrders) CreatePending(_ context.Context, in purchaserepo.CreateInput) (*domain.Purchase, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.create(in, domain.PurchaseStatusPending), nil
}

func (f *fakeOrders) CreateWalletPaid(_ context.Context, in purchaserepo.CreateInput) (*purchaserepo.WalletReceipt, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if in.AmountDue.GreaterThan(f.balance) {
		return nil, domain.ErrInsufficientBalance
	}
	p := f.create(in, domain.PurchaseStatusCompleted)
	f.balance = f.balance.Sub(in.AmountDue)
	f.transactions = append(f.transactions, domain.WalletTransaction{Type: domain.WalletTxDebit, Amount: in.AmountDue, BalanceAfter: f.balance})
	if in.CashbackTotal.IsPositive() {
		f.balance = f.balance.Add(in.CashbackTotal)
		f.transactions = append(f.transactions, domain.WalletTransaction{Type: domain.WalletTxCashback, Amount: in.CashbackTotal, BalanceAfter: f.balance})
	}
	return &purchaserepo.WalletReceipt{Purchase: p, WalletBalance: f.balance}, nil
}

func (f *fakeOrders) Settle(_ context.Context, purchaseID int64) (*purchaserepo.SettleResult, error) {
	f.settleCalls++
	p, ok := f.purchases[purchaseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Status != domain.PurchaseStatusPending {
		return &purchaserepo.SettleResult{Purchase: p, Settled: false}, nil
	}
	p.Status = domain.PurchaseStatusCompleted
	now := time.Now()
	p.PurchasedAt = &now
	credited := false
	if p.CashbackTotal.IsPositive() {
		f.balance = f.balance.Add(p.CashbackTotal)
		f.transactions = append(f.transactions, domain.WalletTransaction{Type: domain.WalletTxCashback, Amount: p.CashbackTotal, BalanceAfter: f.balance})
		credited = true
	}
	return &purchaserepo.SettleResult{Purchase: p, Settled: true, CashbackCredited: credited}, nil
}

func (f *fakeOrders) Balance(_ context.Context, _ int64) (decimal.Decimal, error) {
	return f.balance, nil
}

type stubGateway struct {
	session     *gateway.Session
	createErr   error
	retrieveErr error
	lastCreate  gateway.CreateSessionInput
}

func (s *stubGateway) CreateSession(_ context.Context, in gateway.CreateSessionInput) (*gateway.Session, error) {
	s.lastCreate = in
	return s.session, s.createErr
}

func (s *stubGateway) RetrieveSession(_ context.Context, _ string) (*gateway.Session, error) {
	return s.session, s.retrieveErr
}

func testConfig() Config {
	return Config{
		Currency:   "USD",
		SuccessURL: "https://shop.test/checkout/success",
		CancelURL:  "https://shop.test/checkout/cancel",
	}
}

func catalogWithProduct() *stubCatalog {
	return &stubCatalog{products: map[int64]domain.Product{
		1: {
			ID:              1,
			Name:            "Demo Headphones",
			Price:           decimal.RequireFromString("40.00"),
			DiscountPercent: decimal.NewFromInt(10),
			CashbackPercent: decimal.NewFromInt(5),
		},
	}}
}

func TestCheckoutValidation(t *testing.T) {
	svc := New(catalogWithProduct(), newFakeOrders("0"), newFakeOrders("0"), &stubGateway{}, testConfig(), nil)
	user := domain.User{ID: 7}

	cases := []struct {
		name string
		in   Input
	}{
		{"no items", Input{}},
		{"zero quantity", Input{Items: []domain.CartLine{{ProductID: 1, Quantity: 0}}}},
		{"quantity over limit", Input{Items: []domain.CartLine{{ProductID: 1, Quantity: 26}}}},
		{"bad method", Input{Items: []domain.CartLine{{ProductID: 1, Quantity: 1}}, PaymentMethod: "cheque"}},
		{"bad product id", Input{Items: []domain.CartLine{{ProductID: 0, Quantity: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), user, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCheckoutTooManyLines(t *testing.T) {
	lines := make([]domain.CartLine, 51)
	for i := range lines {
		lines[i] = domain.CartLine{ProductID: int64(i + 1), Quantity: 1}
	}
	svc := New(catalogWithProduct(), newFakeOrders("0"), newFakeOrders("0"), &stubGateway{}, testConfig(), nil)
	_, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{Items: lines})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCheckoutEmptyCartAfterPricing(t *testing.T) {
	orders := newFakeOrders("100.00")
	svc := New(&stubCatalog{products: map[int64]domain.Product{}}, orders, orders, &stubGateway{}, testConfig(), nil)

	_, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{
		Items:         []domain.CartLine{{ProductID: 9999, Quantity: 1}},
		PaymentMethod: PaymentMethodWallet,
	})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, orders.purchases, "no purchase must be created for an empty cart")
}

func TestWalletCheckoutInsufficientBalance(t *testing.T) {
	orders := newFakeOrders("49.99")
	catalog := &stubCatalog{products: map[int64]domain.Product{
		1: {ID: 1, Name: "Widget", Price: decimal.RequireFromString("50.00")},
	}}
	svc := New(catalog, orders, orders, &stubGateway{}, testConfig(), nil)

	_, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{
		Items:         []domain.CartLine{{ProductID: 1, Quantity: 1}},
		PaymentMethod: PaymentMethodWallet,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Empty(t, orders.purchases, "insufficient balance must not create a purchase")
	assert.Empty(t, orders.transactions)
}

func TestWalletCheckoutEndToEnd(t *testing.T) {
	orders := newFakeOrders("100.00")
	svc := New(catalogWithProduct(), orders, orders, &stubGateway{}, testConfig(), nil)

	receipt, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{
		Items:         []domain.CartLine{{ProductID: 1, Quantity: 1}},
		PaymentMethod: PaymentMethodWallet,
	})
	require.NoError(t, err)

	assert.Equal(t, "4.00", receipt.DiscountTotal.StringFixed(2))
	assert.Equal(t, "36.00", receipt.AmountDue.StringFixed(2))
	assert.Equal(t, "1.80", receipt.CashbackTotal.StringFixed(2))
	require.NotNil(t, receipt.WalletBalance)
	assert.Equal(t, "65.80", receipt.WalletBalance.StringFixed(2))
	assert.Empty(t, receipt.CheckoutURL)

	require.Len(t, orders.transactions, 2)
	assert.Equal(t, domain.WalletTxDebit, orders.transactions[0].Type)
	assert.Equal(t, "36.00", orders.transactions[0].Amount.StringFixed(2))
	assert.Equal(t, domain.WalletTxCashback, orders.transactions[1].Type)
	assert.Equal(t, "1.80", orders.transactions[1].Amount.StringFixed(2))
	assert.Equal(t, domain.PurchaseStatusCompleted, orders.purchases[receipt.PurchaseID].Status)
}

func TestCardCheckoutCreatesSession(t *testing.T) {
	orders := newFakeOrders("0")
	gw := &stubGateway{session: &gateway.Session{ID: "cs_1", URL: "https://pay.test/cs_1"}}
	svc := New(catalogWithProduct(), orders, orders, gw, testConfig(), nil)

	receipt, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{
		Items: []domain.CartLine{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://pay.test/cs_1", receipt.CheckoutURL)
	assert.Nil(t, receipt.WalletBalance, "card path must not touch the wallet")
	assert.Equal(t, domain.PurchaseStatusPending, orders.purchases[receipt.PurchaseID].Status)
	assert.Empty(t, orders.transactions)

	assert.Equal(t, "1", gw.lastCreate.ClientReferenceID)
	assert.Equal(t, "https://shop.test/checkout/success?session_id={CHECKOUT_SESSION_ID}", gw.lastCreate.SuccessURL)
	require.Len(t, gw.lastCreate.Lines, 1)
	// 2 * 40.00 less 10% = 72.00 -> 7200 minor units on a single line.
	assert.Equal(t, int64(1), gw.lastCreate.Lines[0].Quantity)
	assert.Equal(t, int64(7200), gw.lastCreate.Lines[0].UnitAmount)
}

func TestCardCheckoutGatewayFailureLeavesPending(t *testing.T) {
	orders := newFakeOrders("0")
	gw := &stubGateway{createErr: gateway.ErrUnavailable}
	svc := New(catalogWithProduct(), orders, orders, gw, testConfig(), nil)

	_, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{
		Items: []domain.CartLine{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, gateway.ErrUnavailable)
	require.Len(t, orders.purchases, 1)
	for _, p := range orders.purchases {
		assert.Equal(t, domain.PurchaseStatusPending, p.Status, "purchase must stay pending for retry or late webhook")
	}
}

func TestConfirmBySessionSettlesOnce(t *testing.T) {
	orders := newFakeOrders("10.00")
	gw := &stubGateway{session: &gateway.Session{ID: "cs_1", URL: "u", ClientReferenceID: "1"}}
	svc := New(catalogWithProduct(), orders, orders, gw, testConfig(), nil)

	_, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{
		Items: []domain.CartLine{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	first, err := svc.ConfirmBySession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.True(t, first.Settled)
	assert.True(t, first.CashbackCredited)

	second, err := svc.ConfirmBySession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.False(t, second.Settled, "second confirmation must be a no-op")

	require.Len(t, orders.transactions, 1, "cashback must be credited exactly once")
	assert.Equal(t, "1.80", orders.transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "11.80", orders.balance.StringFixed(2))
}

func TestConfirmPurchaseUnknownOrder(t *testing.T) {
	orders := newFakeOrders("0")
	svc := New(catalogWithProduct(), orders, orders, &stubGateway{}, testConfig(), nil)

	_, err := svc.ConfirmPurchase(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmBySessionBadClientReference(t *testing.T) {
	gw := &stubGateway{session: &gateway.Session{ID: "cs_1", ClientReferenceID: "not-a-number"}}
	orders := newFakeOrders("0")
	svc := New(catalogWithProduct(), orders, orders, gw, testConfig(), nil)

	_, err := svc.ConfirmBySession(context.Background(), "cs_1")
	require.Error(t, err)
}

func TestCheckoutCatalogError(t *testing.T) {
	wantErr := errors.New("catalog down")
	orders := newFakeOrders("0")
	svc := New(&stubCatalog{err: wantErr}, orders, orders, &stubGateway{}, testConfig(), nil)

	_, err := svc.Checkout(context.Background(), domain.User{ID: 7}, Input{
		Items: []domain.CartLine{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, wantErr)
}
