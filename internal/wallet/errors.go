package wallet

import "errors"

// Kind classifies a wallet error so callers can react without matching on
// message text.
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindInsufficientBalance
	KindConflict
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	default:
		return "storage"
	}
}

// Error is the typed error returned by every wallet operation. errors.Is
// matches an error against the sentinel it was created from, so sentinels
// that share a wire code stay distinguishable.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error

	sentinel *Error
}

func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.sentinel != nil && e.sentinel == t)
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	base := e.sentinel
	if base == nil {
		base = e
	}
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err, sentinel: base}
}

var (
	ErrInvalidAmount       = NewError(KindValidation, "INVALID_AMOUNT", "amount must be a positive whole number of minor units")
	ErrPayeeRequired       = NewError(KindValidation, "MISSING_FIELDS", "payee identifier is required")
	ErrSelfTransfer        = NewError(KindValidation, "SELF_TRANSFER_REJECTED", "cannot send money to yourself")
	ErrSelfRequest         = NewError(KindValidation, "SELF_REQUEST_REJECTED", "cannot request money from yourself")
	ErrAccountNotFound     = NewError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrRequestNotFound     = NewError(KindNotFound, "REQUEST_NOT_FOUND", "request not found")
	ErrNotRequestPayer     = NewError(KindAuthorization, "NOT_REQUEST_PAYER", "only the requested payer can resolve this request")
	ErrInsufficientBalance = NewError(KindInsufficientBalance, "INSUFFICIENT_BALANCE", "insufficient balance")
	ErrInvalidState        = NewError(KindConflict, "INVALID_STATE", "request has already been resolved")
	ErrIdempotencyConflict = NewError(KindConflict, "IDEMPOTENCY_KEY_REUSED", "idempotency key was already used for a different transfer")
	ErrStorageUnavailable  = NewError(KindStorage, "STORAGE_UNAVAILABLE", "storage unavailable, nothing was applied")
	ErrDescriptionTooLong  = NewError(KindValidation, "DESCRIPTION_TOO_LONG", "description is too long")
	ErrInvalidMethod       = NewError(KindValidation, "INVALID_METHOD", "payment method must be online, offline or qr")
	ErrInvalidIdempotency  = NewError(KindValidation, "INVALID_IDEMPOTENCY_KEY", "idempotency key is too long")
	ErrValueTooLong        = NewError(KindValidation, "VALUE_TOO_LONG", "a field exceeds its maximum length")

	// Returned by repositories; the engine translates them before they
	// reach a caller.
	ErrTransactionNotFound     = NewError(KindNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	ErrDuplicateIdempotencyKey = NewError(KindConflict, "DUPLICATE_IDEMPOTENCY_KEY", "idempotency key already recorded")
)

// KindOf reports the kind of err. Errors that did not originate in this
// package are treated as storage failures.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindStorage
}

func storageError(err error) error {
	var we *Error
	if errors.As(err, &we) {
		return err
	}
	return ErrStorageUnavailable.Wrap(err)
}
