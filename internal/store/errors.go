package store

import (
	"errors"

	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgStringTooLong        = "22001"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	idempotencyIndex = "idx_transactions_sender_idem"
)

// translate maps Postgres failures onto wallet errors. Anything it does not
// recognise is returned unchanged and later reported as a storage failure.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var we *wallet.Error
	if errors.As(err, &we) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == idempotencyIndex {
			return wallet.ErrDuplicateIdempotencyKey.Wrap(err)
		}
	case pgCheckViolation:
		if pgErr.TableName == "accounts" {
			return wallet.ErrInsufficientBalance.Wrap(err)
		}
		return wallet.ErrInvalidAmount.Wrap(err)
	case pgStringTooLong:
		return wallet.ErrValueTooLong.Wrap(err)
	case pgSerializationFailure, pgDeadlockDetected:
		return wallet.ErrStorageUnavailable.Wrap(err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
