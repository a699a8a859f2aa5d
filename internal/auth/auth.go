package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = wallet.NewError(wallet.KindValidation, "MISSING_FIELDS", "name, email, password and phone are required")
	ErrInvalidEmail       = wallet.NewError(wallet.KindValidation, "INVALID_EMAIL", "email address is not valid")
	ErrPasswordMismatch   = wallet.NewError(wallet.KindValidation, "PASSWORD_MISMATCH", "passwords do not match")
	ErrWeakPassword       = wallet.NewError(wallet.KindValidation, "WEAK_PASSWORD", "password must be at least 8 characters and contain letters and digits")
	ErrInvalidPhone       = wallet.NewError(wallet.KindValidation, "INVALID_PHONE", "phone number must be 10 digits")
	ErrUserExists         = wallet.NewError(wallet.KindConflict, "USER_EXISTS", "user already exists")
	ErrInvalidCredentials = wallet.NewError(wallet.KindAuthentication, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidPassword    = wallet.NewError(wallet.KindAuthentication, "INVALID_PASSWORD", "current password is incorrect")
	ErrNameTooLong        = wallet.NewError(wallet.KindValidation, "NAME_TOO_LONG", "name must be at most 100 characters")
)

const (
	maxNameLength  = 100
	maxEmailLength = 255
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\d{10}$`)
)

type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id uint64) (*models.Account, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateProfile(ctx context.Context, id uint64, name, email, phone string) error
}

type Service struct {
	accounts        AccountStore
	tokens          *Tokens
	startingBalance int64
}

func NewService(accounts AccountStore, tokens *Tokens, startingBalance int64) *Service {
	return &Service{accounts: accounts, tokens: tokens, startingBalance: startingBalance}
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
}

// Register creates an account with the starting balance and returns it with
// a signed token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Account, string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)

	if name == "" || email == "" || in.Password == "" || phone == "" {
		return nil, "", ErrMissingFields
	}
	if err := validateProfile(name, email, phone); err != nil {
		return nil, "", err
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, "", ErrPasswordMismatch
	}
	if !StrongPassword(in.Password) {
		return nil, "", ErrWeakPassword
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	acct := &models.Account{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: hash,
		Balance:  s.startingBalance,
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(acct.ID)
	if err != nil {
		return nil, "", err
	}
	return acct, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*models.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", wallet.NewError(wallet.KindValidation, "MISSING_FIELDS", "email and password are required")
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, wallet.ErrAccountNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !CheckPassword(acct.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acct.ID)
	if err != nil {
		return nil, "", err
	}
	return acct, token, nil
}

func (s *Service) ChangePassword(ctx context.Context, accountID uint64, current, next, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return wallet.NewError(wallet.KindValidation, "MISSING_FIELDS", "current, new and confirm password are required")
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !CheckPassword(acct.Password, current) {
		return ErrInvalidPassword
	}
	if !StrongPassword(next) {
		return ErrWeakPassword
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, accountID, hash)
}

type ProfileInput struct {
	Name  string
	Email string
	Phone string
}

// UpdateProfile changes the fields that are set and keeps the others. The
// result is validated like a registration.
func (s *Service) UpdateProfile(ctx context.Context, accountID uint64, in ProfileInput) (*models.Account, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	name := firstSet(strings.TrimSpace(in.Name), acct.Name)
	email := firstSet(strings.ToLower(strings.TrimSpace(in.Email)), acct.Email)
	phone := firstSet(strings.TrimSpace(in.Phone), acct.Phone)
	if err := validateProfile(name, email, phone); err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateProfile(ctx, accountID, name, email, phone); err != nil {
		return nil, err
	}
	acct.Name, acct.Email, acct.Phone = name, email, phone
	return acct, nil
}

func validateProfile(name, email, phone string) error {
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	if len(email) > maxEmailLength || !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	if !phoneRe.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

func firstSet(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// StrongPassword requires at least 8 characters with a letter and a digit.
func StrongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
