package handlers

import (
	"net/http"

	"github.com/GiorgiUbiria/ewallet/internal/auth"
	"github.com/GiorgiUbiria/ewallet/internal/httputil"
	"github.com/GiorgiUbiria/ewallet/internal/logger"
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Name            string `json:"name"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AuthResponse struct {
	Token string          `json:"token"`
	User  *models.Account `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	acct, token, err := h.auth.Register(ctx, auth.RegisterInput{
		Name:            firstNonEmpty(req.Name, req.FullName),
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
	})
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	logger.Log.Info("account registered", zap.Uint64("account_id", acct.ID))
	httputil.WriteJSON(w, http.StatusCreated, AuthResponse{Token: token, User: acct})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	acct, token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AuthResponse{Token: token, User: acct})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.opContext(r)
	defer cancel()

	acct, err := h.wallet.Account(ctx, id)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	if err := h.auth.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// UpdateProfile changes name, email or phone. Omitted fields keep their
// current value.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	acct, err := h.auth.UpdateProfile(ctx, id, auth.ProfileInput{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	logger.Log.Info("profile updated", zap.Uint64("account_id", id))
	httputil.WriteJSON(w, http.StatusOK, acct)
}
