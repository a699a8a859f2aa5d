package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GiorgiUbiria/ewallet/internal/logger"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", zap.Error(err))
	}
}

func WriteCodedError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// StatusFor maps a wallet error kind onto an HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, wallet.ErrIdempotencyConflict) {
		return http.StatusConflict
	}
	switch wallet.KindOf(err) {
	case wallet.KindValidation, wallet.KindInsufficientBalance, wallet.KindConflict:
		return http.StatusBadRequest
	case wallet.KindNotFound:
		return http.StatusNotFound
	case wallet.KindAuthorization:
		return http.StatusForbidden
	case wallet.KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusServiceUnavailable
	}
}

// WriteDomainError renders err with its code. Storage failures are logged
// and reported without internal detail.
func WriteDomainError(w http.ResponseWriter, err error) {
	status := StatusFor(err)

	var we *wallet.Error
	if !errors.As(err, &we) || we.Kind == wallet.KindStorage {
		logger.Log.Error("storage failure", zap.Error(err))
		WriteCodedError(w, status, wallet.ErrStorageUnavailable.Code, wallet.ErrStorageUnavailable.Message)
		return
	}
	WriteCodedError(w, status, we.Code, we.Message)
}
