package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/auth"
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*models.Account, error) {
	var a models.Account
	if err := conn(ctx, r.db).First(&a, id).Error; err != nil {
		return nil, accountErr(err)
	}
	return &a, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := conn(ctx, r.db).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&a).Error
	if err != nil {
		return nil, accountErr(err)
	}
	return &a, nil
}

// LockForUpdate takes row locks one account at a time in ascending id order
// so that two transfers between the same pair cannot deadlock.
func (r *AccountRepository) LockForUpdate(ctx context.Context, ids ...uint64) (map[uint64]*models.Account, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	db := conn(ctx, r.db)
	out := make(map[uint64]*models.Account, len(sorted))
	for _, id := range sorted {
		var a models.Account
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock account %d: %w", id, translate(err))
		}
		out[id] = &a
	}
	return out, nil
}

// AdjustBalance applies delta with a guard so the balance can never be
// written below zero, even without a prior lock.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id uint64, delta int64) (int64, error) {
	db := conn(ctx, r.db)

	var a models.Account
	res := db.Model(&a).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "balance"}}}).
		Where("id = ? AND balance + ? >= 0", id, delta).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("adjust balance of %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(&models.Account{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return 0, translate(err)
		}
		if n == 0 {
			return 0, wallet.ErrAccountNotFound
		}
		return 0, wallet.ErrInsufficientBalance
	}
	return a.Balance, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if err := conn(ctx, r.db).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return auth.ErrUserExists
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res := conn(ctx, r.db).Model(&models.Account{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return wallet.ErrAccountNotFound
	}
	return nil
}

// UpdateProfile overwrites name, email and phone. A clash with another
// account's email is reported as auth.ErrUserExists.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id uint64, name, email, phone string) error {
	res := conn(ctx, r.db).Model(&models.Account{}).Where("id = ?", id).Updates(map[string]any{
		"name":       name,
		"email":      strings.ToLower(strings.TrimSpace(email)),
		"phone":      phone,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return auth.ErrUserExists
		}
		return fmt.Errorf("update profile: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return wallet.ErrAccountNotFound
	}
	return nil
}

// BackfillBalance gives every empty account the starting balance and
// returns how many were changed.
func (r *AccountRepository) BackfillBalance(ctx context.Context, amount int64) (int64, error) {
	res := conn(ctx, r.db).Model(&models.Account{}).
		Where("balance = 0").
		Updates(map[string]any{"balance": amount, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, fmt.Errorf("backfill balances: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func accountErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wallet.ErrAccountNotFound
	}
	return translate(err)
}
