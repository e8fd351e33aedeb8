package history

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	purchaserepo "storefront/internal/repository/purchase"
)

type stubReader struct {
	purchases []domain.Purchase
	total     int

	gotFilter  purchaserepo.Filter
	gotPage    int
	gotPerPage int
	gotLimit   int
}

func (s *stubReader) ListByUser(_ context.Context, _ int64, f purchaserepo.Filter, page, perPage int) ([]domain.Purchase, int, error) {
	s.gotFilter = f
	s.gotPage = page
	s.gotPerPage = perPage
	return s.purchases, s.total, nil
}

func (s *stubReader) ListForExport(_ context.Context, _ int64, f purchaserepo.Filter, limit int) ([]domain.Purchase, error) {
	s.gotFilter = f
	s.gotLimit = limit
	return s.purchases, nil
}

func TestListDefaultsPagination(t *testing.T) {
	stub := &stubReader{total: 3}
	svc := New(stub)

	page, err := svc.List(context.Background(), 1, Query{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if stub.gotPage != 1 || stub.gotPerPage != 10 {
		t.Fatalf("got page=%d perPage=%d, want 1/10", stub.gotPage, stub.gotPerPage)
	}
	if page.Total != 3 {
		t.Fatalf("got total %d, want 3", page.Total)
	}
}

func TestListBuildsFilter(t *testing.T) {
	stub := &stubReader{}
	svc := New(stub)

	_, err := svc.List(context.Background(), 1, Query{
		Status:    "completed",
		Reference: "abc",
		From:      "2026-01-01",
		To:        "2026-01-31",
		MinTotal:  "10",
		MaxTotal:  "99.50",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	f := stub.gotFilter
	if f.Status != "completed" || f.Reference != "abc" {
		t.Fatalf("unexpected status/reference: %+v", f)
	}
	if f.From == nil || !f.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", f.From)
	}
	// The to date is inclusive, so the filter bound is the following day.
	if f.To == nil || !f.To.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to: %v", f.To)
	}
	if f.MinTotal == nil || !f.MinTotal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected min total: %v", f.MinTotal)
	}
	if f.MaxTotal == nil || !f.MaxTotal.Equal(decimal.RequireFromString("99.50")) {
		t.Fatalf("unexpected max total: %v", f.MaxTotal)
	}
}

func TestListRejectsBadTotals(t *testing.T) {
	svc := New(&stubReader{})

	if _, err := svc.List(context.Background(), 1, Query{MinTotal: "abc"}); err == nil {
		t.Fatal("expected error for non-numeric min_total")
	}
	if _, err := svc.List(context.Background(), 1, Query{MaxTotal: "-5"}); err == nil {
		t.Fatal("expected error for negative max_total")
	}
}

func TestWriteCSV(t *testing.T) {
	purchasedAt := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	stub := &stubReader{
		purchases: []domain.Purchase{
			{
				ID:               7,
				PaymentReference: "ref-7",
				Currency:         "USD",
				Subtotal:         decimal.RequireFromString("40.00"),
				DiscountTotal:    decimal.RequireFromString("4.00"),
				AmountDue:        decimal.RequireFromString("36.00"),
				CashbackTotal:    decimal.RequireFromString("1.80"),
				Status:           domain.PurchaseStatusCompleted,
				PurchasedAt:      &purchasedAt,
				Items:            []domain.PurchaseItem{{ID: 1}, {ID: 2}},
			},
		},
	}
	svc := New(stub)

	var buf strings.Builder
	if err := svc.WriteCSV(context.Background(), &buf, 1, Query{}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if stub.gotLimit != 5000 {
		t.Fatalf("got export limit %d, want 5000", stub.gotLimit)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	wantHeader := "purchase_id,payment_reference,status,currency,purchased_at,subtotal,discount_total,amount_due,cashback_total,item_count"
	if lines[0] != wantHeader {
		t.Fatalf("header mismatch:\ngot  %s\nwant %s", lines[0], wantHeader)
	}
	wantRow := "7,ref-7,completed,USD,2026-03-15 09:30:00,40.00,4.00,36.00,1.80,2"
	if lines[1] != wantRow {
		t.Fatalf("row mismatch:\ngot  %s\nwant %s", lines[1], wantRow)
	}
}

func TestListForPrintCapsLimit(t *testing.T) {
	stub := &stubReader{}
	svc := New(stub)

	if _, err := svc.ListForPrint(context.Background(), 1, Query{}); err != nil {
		t.Fatalf("ListForPrint: %v", err)
	}
	if stub.gotLimit != 200 {
		t.Fatalf("got print limit %d, want 200", stub.gotLimit)
	}
}
