package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jkowalczyk/FinanceTracker/internal/user"
)

type Handler struct {
	authService Service
}

func NewHandler(authService Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func setRefreshTokenCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteNoneMode,
		Path:     "/api/refresh/token",
	})
}

func (s *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrLogin string `json:"email_or_login"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" || req.EmailOrLogin == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, accessToken, refreshToken, err := s.authService.Login(req.EmailOrLogin, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setRefreshTokenCookie(w, refreshToken)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
		},
	})
}

func (s *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie("refresh_token")
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			respondJSON(w, http.StatusOK, "Logout successful")
			return
		}
		respondError(w, http.StatusBadRequest, "Error during logout request.")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/refresh/token",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteNoneMode,
	})

	respondJSON(w, http.StatusOK, "Logout successful")
}

// RefreshAccessToken runs behind the refresh-token middleware, which already
// validated the cookie and put the user id in the context.
func (s *Handler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accessToken, newRefreshToken, err := s.authService.RefreshAccessToken(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setRefreshTokenCookie(w, newRefreshToken)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
		},
	})
}

func (s *Handler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.authService.RequestPasswordReset(req.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		if errors.Is(err, ErrTooManyCodeRequests) {
			respondError(w, http.StatusTooManyRequests, ErrTooManyCodeRequests.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// A nonexistent email gets the same response, to avoid account probing.
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "If the account exists, a reset code has been sent.",
	})
}

func (s *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.authService.ResetPassword(req.Email, req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidResetCode), errors.Is(err, user.ErrNoResetCode):
			respondError(w, http.StatusUnauthorized, "Invalid reset code")
		case errors.Is(err, ErrResetCodeExpired):
			respondError(w, http.StatusUnauthorized, ErrResetCodeExpired.Error())
		case errors.Is(err, user.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, user.PasswordStrengthResult{}.Message("New password"))
		default:
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Password has been reset.",
	})
}
