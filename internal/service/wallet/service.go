package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	walletrepo "storefront/internal/repository/wallet"
)

const recentTransactionLimit = 10

type Service struct {
	repo walletrepo.Repository
}

func New(repo walletrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Summary is the wallet page payload: current balance plus the most recent
// transactions.
type Summary struct {
	Balance      decimal.Decimal            `json:"balance"`
	Transactions []domain.WalletTransaction `json:"transactions"`
}

func (s *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.repo.RecentTransactions(ctx, userID, recentTransactionLimit)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []domain.WalletTransaction{}
	}
	return &Summary{Balance: balance, Transactions: transactions}, nil
}
