package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/auth"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"github.com/GiorgiUbiria/ewallet/internal/wallet/wallettest"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)

	tok, err := tokens.Issue(42)
	if err != nil {
		t.Fatal(err)
	}
	id, err := tokens.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("expected id 42, got %d", id)
	}

	other := auth.NewTokens("another-secret", time.Hour)
	if _, err := other.Parse(tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected signature mismatch to be rejected, got %v", err)
	}
	if _, err := tokens.Parse("not-a-token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected garbage to be rejected, got %v", err)
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"password123", true},
		{"short1", false},
		{"lettersonly", false},
		{"1234567890", false},
	}
	for _, tt := range tests {
		if got := auth.StrongPassword(tt.password); got != tt.want {
			t.Errorf("StrongPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestService_RegisterAndLogin(t *testing.T) {
	store := wallettest.New()
	svc := auth.NewService(store, auth.NewTokens("secret", time.Hour), 10000)
	ctx := context.Background()

	acct, token, err := svc.Register(ctx, auth.RegisterInput{
		Name: "Ann", Email: " Ann@Example.com ", Password: "secret123", Phone: "1234567890",
	})
	if err != nil {
		t.Fatal(err)
	}
	if token == "" || acct.Email != "ann@example.com" || acct.Balance != 10000 {
		t.Fatalf("unexpected registration result %+v", acct)
	}
	if acct.Password == "secret123" || !auth.CheckPassword(acct.Password, "secret123") {
		t.Error("password must be stored as a bcrypt hash")
	}

	_, _, err = svc.Register(ctx, auth.RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "secret123", Phone: "1234567890",
	})
	if !errors.Is(err, auth.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	if _, _, err := svc.Login(ctx, "ann@example.com", "wrong123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "secret123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ANN@example.com", "secret123"); err != nil {
		t.Errorf("expected login to succeed, got %v", err)
	}
}

func TestService_ChangePassword(t *testing.T) {
	store := wallettest.New()
	svc := auth.NewService(store, auth.NewTokens("secret", time.Hour), 0)
	ctx := context.Background()

	acct, _, err := svc.Register(ctx, auth.RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "secret123", Phone: "1234567890",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(ctx, acct.ID, "wrong123", "another456", "another456"); !errors.Is(err, auth.ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, acct.ID, "secret123", "weak", "weak"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, acct.ID, "secret123", "another456", "another457"); !errors.Is(err, auth.ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := svc.ChangePassword(ctx, acct.ID, "secret123", "another456", ""); wallet.KindOf(err) != wallet.KindValidation {
		t.Errorf("expected a missing confirmation to be rejected, got %v", err)
	}
	if err := svc.ChangePassword(ctx, acct.ID, "secret123", "another456", "another456"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Login(ctx, "ann@example.com", "another456"); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}

func TestService_UpdateProfile(t *testing.T) {
	store := wallettest.New()
	svc := auth.NewService(store, auth.NewTokens("secret", time.Hour), 0)
	ctx := context.Background()

	register := func(email string) uint64 {
		acct, _, err := svc.Register(ctx, auth.RegisterInput{Name: "N", Email: email, Password: "secret123", Phone: "1234567890"})
		if err != nil {
			t.Fatal(err)
		}
		return acct.ID
	}
	id := register("ann@example.com")
	register("bob@example.com")

	tests := []struct {
		name    string
		in      auth.ProfileInput
		wantErr error
	}{
		{"bad email", auth.ProfileInput{Email: "nope"}, auth.ErrInvalidEmail},
		{"bad phone", auth.ProfileInput{Phone: "12"}, auth.ErrInvalidPhone},
		{"long name", auth.ProfileInput{Name: strings.Repeat("n", 101)}, auth.ErrNameTooLong},
		{"taken email", auth.ProfileInput{Email: "BOB@example.com"}, auth.ErrUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UpdateProfile(ctx, id, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	acct, err := svc.UpdateProfile(ctx, id, auth.ProfileInput{Email: " Ann.New@Example.com "})
	if err != nil {
		t.Fatal(err)
	}
	if acct.Email != "ann.new@example.com" || acct.Name != "N" || acct.Phone != "1234567890" {
		t.Errorf("expected only the email to change, got %+v", acct)
	}
	if _, _, err := svc.Login(ctx, "ann.new@example.com", "secret123"); err != nil {
		t.Errorf("expected login with the new email, got %v", err)
	}
}
