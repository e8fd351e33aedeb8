// Package checkout turns a cart into a priced, settled purchase. It owns the
// two payment paths (wallet, card) and the confirmation routine shared by the
// gateway webhook and the browser redirect.
package checkout

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/pricing"
	purchaserepo "storefront/internal/repository/purchase"
)

const (
	PaymentMethodCard   = "stripe"
	PaymentMethodWallet = "wallet"

	maxCartLines = 50
	maxQuantity  = 25
)

// ValidationError rejects malformed checkout input before any side effects.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type productCatalog interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
}

type orderStore interface {
	CreatePending(ctx context.Context, in purchaserepo.CreateInput) (*domain.Purchase, error)
	CreateWalletPaid(ctx context.Context, in purchaserepo.CreateInput) (*purchaserepo.WalletReceipt, error)
	Settle(ctx context.Context, purchaseID int64) (*purchaserepo.SettleResult, error)
}

type walletReader interface {
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type gatewayClient interface {
	CreateSession(ctx context.Context, in gateway.CreateSessionInput) (*gateway.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*gateway.Session, error)
}

// Config carries the checkout-facing runtime settings.
type Config struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

type Service struct {
	products productCatalog
	orders   orderStore
	wallet   walletReader
	gateway  gatewayClient
	cfg      Config
	logger   *log.Logger
}

func New(products productCatalog, orders orderStore, wallet walletReader, gw gatewayClient, cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{products: products, orders: orders, wallet: wallet, gateway: gw, cfg: cfg, logger: logger}
}

// Input is a checkout request for an authenticated user.
type Input struct {
	Items         []domain.CartLine
	PaymentMethod string
}

// Receipt is returned to the caller after a successful checkout. CheckoutURL
// is set on the card path, WalletBalance on the wallet path.
type Receipt struct {
	PurchaseID       int64                 `json:"purchase_id"`
	PaymentReference string                `json:"payment_reference"`
	Currency         string                `json:"currency"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	DiscountTotal    decimal.Decimal       `json:"discount_total"`
	AmountDue        decimal.Decimal       `json:"amount_due"`
	CashbackTotal    decimal.Decimal       `json:"cashback_total"`
	Items            []domain.PurchaseItem `json:"items"`
	CheckoutURL      string                `json:"checkout_url,omitempty"`
	WalletBalance    *decimal.Decimal      `json:"wallet_balance,omitempty"`
	Message          string                `json:"message"`
}

// Checkout validates and prices the cart, then executes the requested
// payment path.
func (s *Service) Checkout(ctx context.Context, user domain.User, in Input) (*Receipt, error) {
	method := in.PaymentMethod
	if method == "" {
		method = PaymentMethodCard
	}
	if err := validate(in.Items, method); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(in.Items))
	seen := make(map[int64]struct{}, len(in.Items))
	for _, line := range in.Items {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Compute(in.Items, products)
	if err != nil {
		return nil, err
	}

	create := purchaserepo.CreateInput{
		UserID:        user.ID,
		Currency:      s.cfg.Currency,
		Subtotal:      quote.Subtotal,
		DiscountTotal: quote.DiscountTotal,
		AmountDue:     quote.AmountDue,
		CashbackTotal: quote.CashbackTotal,
		Items:         quote.Items,
	}

	if method == PaymentMethodWallet {
		return s.walletCheckout(ctx, user, create)
	}
	return s.cardCheckout(ctx, create)
}

// walletCheckout settles synchronously: purchase creation, wallet debit and
// cashback credit commit as one transaction inside the order store.
func (s *Service) walletCheckout(ctx context.Context, user domain.User, in purchaserepo.CreateInput) (*Receipt, error) {
	balance, err := s.wallet.Balance(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	// Fast fail before any writes; the debit re-checks under the row lock.
	if balance.LessThan(in.AmountDue) {
		return nil, domain.ErrInsufficientBalance
	}

	receipt, err := s.orders.CreateWalletPaid(ctx, in)
	if err != nil {
		return nil, err
	}

	out := receiptFrom(receipt.Purchase, in)
	out.WalletBalance = &receipt.WalletBalance
	out.Message = "Payment completed using cashback wallet."
	return out, nil
}

// cardCheckout leaves the purchase pending and hands the user to the hosted
// payment page. No wallet mutation happens until confirmation.
func (s *Service) cardCheckout(ctx context.Context, in purchaserepo.CreateInput) (*Receipt, error) {
	p, err := s.orders.CreatePending(ctx, in)
	if err != nil {
		return nil, err
	}

	lines := make([]gateway.SessionLine, 0, len(p.Items))
	for _, item := range p.Items {
		// One session line per cart line, quantity 1, carrying the full
		// rounded line total. Dividing the total back per unit would drift
		// for quantities that do not divide it evenly.
		lines = append(lines, gateway.SessionLine{
			Name:       fmt.Sprintf("%s x%d", item.Name, item.Quantity),
			Quantity:   1,
			UnitAmount: minorUnits(item.LineTotal),
			Currency:   in.Currency,
		})
	}

	session, err := s.gateway.CreateSession(ctx, gateway.CreateSessionInput{
		Lines:             lines,
		SuccessURL:        s.cfg.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.cfg.CancelURL,
		ClientReferenceID: strconv.FormatInt(p.ID, 10),
	})
	if err != nil {
		// Purchase stays pending; a later webhook can still settle it.
		s.logger.Printf("checkout: create session purchase_id=%d error=%v", p.ID, err)
		return nil, err
	}

	out := receiptFrom(p, in)
	out.CheckoutURL = session.URL
	out.Message = "Checkout session created."
	return out, nil
}

// ConfirmBySession resolves the purchase behind a gateway session and settles
// it. Triggered by the browser redirect after payment.
func (s *Service) ConfirmBySession(ctx context.Context, sessionID string) (*purchaserepo.SettleResult, error) {
	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	purchaseID, err := strconv.ParseInt(session.ClientReferenceID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad client reference %q: %w", session.ClientReferenceID, err)
	}
	return s.ConfirmPurchase(ctx, purchaseID)
}

// ConfirmPurchase settles a pending purchase. Safe to call any number of
// times; only the first call transitions the purchase and credits cashback.
func (s *Service) ConfirmPurchase(ctx context.Context, purchaseID int64) (*purchaserepo.SettleResult, error) {
	result, err := s.orders.Settle(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if !result.Settled {
		s.logger.Printf("checkout: purchase_id=%d already settled (status=%s)", purchaseID, result.Purchase.Status)
	}
	return result, nil
}

func validate(items []domain.CartLine, method string) error {
	if method != PaymentMethodCard && method != PaymentMethodWallet {
		return &ValidationError{Reason: fmt.Sprintf("unsupported payment method %q", method)}
	}
	if len(items) == 0 {
		return &ValidationError{Reason: "items required"}
	}
	if len(items) > maxCartLines {
		return &ValidationError{Reason: fmt.Sprintf("at most %d cart lines allowed", maxCartLines)}
	}
	for _, line := range items {
		if line.ProductID <= 0 {
			return &ValidationError{Reason: "product_id must be positive"}
		}
		if line.Quantity < 1 || line.Quantity > maxQuantity {
			return &ValidationError{Reason: fmt.Sprintf("quantity must be between 1 and %d", maxQuantity)}
		}
	}
	return nil
}

func receiptFrom(p *domain.Purchase, in purchaserepo.CreateInput) *Receipt {
	return &Receipt{
		PurchaseID:       p.ID,
		PaymentReference: p.PaymentReference,
		Currency:         p.Currency,
		Subtotal:         in.Subtotal,
		DiscountTotal:    in.DiscountTotal,
		AmountDue:        in.AmountDue,
		CashbackTotal:    in.CashbackTotal,
		Items:            p.Items,
	}
}

func minorUnits(amount decimal.Decimal) int64 {
	units := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if units < 0 {
		return 0
	}
	return units
}
