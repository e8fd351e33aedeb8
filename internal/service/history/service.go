// Package history is the read-only purchase history surface: filtered
// listings plus CSV and print exports of the same filtered set.
package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	purchaserepo "storefront/internal/repository/purchase"
)

const (
	defaultPerPage   = 10
	maxPerPage       = 50
	csvExportLimit   = 5000
	printExportLimit = 200
)

type purchaseReader interface {
	ListByUser(ctx context.Context, userID int64, f purchaserepo.Filter, page, perPage int) ([]domain.Purchase, int, error)
	ListForExport(ctx context.Context, userID int64, f purchaserepo.Filter, limit int) ([]domain.Purchase, error)
}

type Service struct {
	purchases purchaseReader
}

func New(purchases purchaseReader) *Service {
	return &Service{purchases: purchases}
}

// Query mirrors the history filter parameters as they arrive from the API.
type Query struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1,max=50"`
	Status    string `form:"status" binding:"omitempty,max=40"`
	Reference string `form:"reference" binding:"omitempty,max=120"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	MinTotal  string `form:"min_total" binding:"omitempty"`
	MaxTotal  string `form:"max_total" binding:"omitempty"`
}

type Page struct {
	Purchases []purchaseView `json:"purchases"`
	Page      int            `json:"page"`
	PerPage   int            `json:"per_page"`
	Total     int            `json:"total"`
}

type purchaseView struct {
	domain.Purchase
	ItemCount int `json:"item_count"`
}

func (s *Service) List(ctx context.Context, userID int64, q Query) (*Page, error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	page := q.Page
	if page == 0 {
		page = 1
	}
	perPage := q.PerPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	purchases, total, err := s.purchases.ListByUser(ctx, userID, filter, page, perPage)
	if err != nil {
		return nil, err
	}

	views := make([]purchaseView, 0, len(purchases))
	for _, p := range purchases {
		views = append(views, purchaseView{Purchase: p, ItemCount: len(p.Items)})
	}
	return &Page{Purchases: views, Page: page, PerPage: perPage, Total: total}, nil
}

// WriteCSV streams the filtered purchases as CSV.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, userID int64, q Query) error {
	filter, err := toFilter(q)
	if err != nil {
		return err
	}
	purchases, err := s.purchases.ListForExport(ctx, userID, filter, csvExportLimit)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"purchase_id", "payment_reference", "status", "currency", "purchased_at",
		"subtotal", "discount_total", "amount_due", "cashback_total", "item_count",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range purchases {
		purchasedAt := ""
		if p.PurchasedAt != nil {
			purchasedAt = p.PurchasedAt.UTC().Format(time.DateTime)
		}
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.PaymentReference,
			p.Status,
			p.Currency,
			purchasedAt,
			p.Subtotal.StringFixed(2),
			p.DiscountTotal.StringFixed(2),
			p.AmountDue.StringFixed(2),
			p.CashbackTotal.StringFixed(2),
			strconv.Itoa(len(p.Items)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ListForPrint returns the filtered purchases capped for the print view.
func (s *Service) ListForPrint(ctx context.Context, userID int64, q Query) ([]domain.Purchase, error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	return s.purchases.ListForExport(ctx, userID, filter, printExportLimit)
}

func toFilter(q Query) (purchaserepo.Filter, error) {
	f := purchaserepo.Filter{
		Status:    q.Status,
		Reference: q.Reference,
	}
	if q.From != "" {
		t, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return f, fmt.Errorf("bad from date: %w", err)
		}
		f.From = &t
	}
	if q.To != "" {
		t, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return f, fmt.Errorf("bad to date: %w", err)
		}
		// Inclusive end date: filter strictly below the next day.
		next := t.AddDate(0, 0, 1)
		f.To = &next
	}
	if q.MinTotal != "" {
		d, err := decimal.NewFromString(q.MinTotal)
		if err != nil || d.IsNegative() {
			return f, fmt.Errorf("bad min_total %q", q.MinTotal)
		}
		f.MinTotal = &d
	}
	if q.MaxTotal != "" {
		d, err := decimal.NewFromString(q.MaxTotal)
		if err != nil || d.IsNegative() {
			return f, fmt.Errorf("bad max_total %q", q.MaxTotal)
		}
		f.MaxTotal = &d
	}
	return f, nil
}
