package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/GiorgiUbiria/ewallet/internal/auth"
	"github.com/GiorgiUbiria/ewallet/internal/logger"
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"go.uber.org/zap"
)

const seedPassword = "password123"

var testUsers = []struct {
	Name  string
	Email string
	Phone string
}{
	{"Test User 1", "user1@test.com", "9000000001"},
	{"Test User 2", "user2@test.com", "9000000002"},
	{"Test User 3", "user3@test.com", "9000000003"},
}

type Accounts interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account) error
}

type BalanceBackfiller interface {
	BackfillBalance(ctx context.Context, amount int64) (int64, error)
}

// Run creates the test accounts that do not exist yet, all in one unit of
// work. It returns how many were created.
func Run(ctx context.Context, tx wallet.TxRunner, accounts Accounts, startingBalance int64) (int, error) {
	hashed, err := auth.HashPassword(seedPassword)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}

	created := 0
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, u := range testUsers {
			_, err := accounts.FindByEmail(ctx, u.Email)
			if err == nil {
				continue
			}
			if !errors.Is(err, wallet.ErrAccountNotFound) {
				return err
			}

			acct := &models.Account{Name: u.Name, Email: u.Email, Phone: u.Phone, Password: hashed, Balance: startingBalance}
			if err := accounts.Create(ctx, acct); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	if created == 0 {
		logger.Log.Info("seed already applied, skipping")
	} else {
		logger.Sugar().Infof("seeded %d test users (password %q)", created, seedPassword)
	}
	return created, nil
}

// BackfillDefaultBalance gives accounts with a zero balance the starting
// balance.
func BackfillDefaultBalance(ctx context.Context, accounts BalanceBackfiller, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, wallet.ErrInvalidAmount
	}
	n, err := accounts.BackfillBalance(ctx, amount)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("default balance backfilled", zap.Int64("updated", n), zap.Int64("amount", amount))
	return n, nil
}
