package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet transaction types. Every balance mutation appends exactly one row;
// replaying the rows in creation order reproduces every balance_after.
const (
	WalletTxDebit    = "debit"
	WalletTxCashback = "cashback"
)

type WalletTransaction struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"-"`
	PurchaseID   *int64          `json:"purchase_id,omitempty"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}
