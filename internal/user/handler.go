package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		log.Printf("JSON encoding error: %v", err)
		return
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Register(req.Email, req.Login, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrLoginAlreadyExists) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		if errors.Is(err, ErrWeakPassword) {
			respondError(w, http.StatusBadRequest, PasswordStrengthResult{}.Message("Password"))
			return
		}
		if errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrEmailLength) || errors.Is(err, ErrLoginLength) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not register user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"user_id": user.ID,
		},
	})
}

func (h *Handler) HandleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respondError(w, http.StatusNotFound, ErrUserNotFound.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not load profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   user,
	})
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.ChangePasswordWithOldPassword(userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidOldPassword) {
			respondError(w, http.StatusUnauthorized, ErrInvalidOldPassword.Error())
			return
		}
		if errors.Is(err, ErrWeakPassword) {
			respondError(w, http.StatusBadRequest, PasswordStrengthResult{}.Message("New password"))
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			respondError(w, http.StatusNotFound, ErrUserNotFound.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not change password")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Password changed successfully.",
	})
}

func (h *Handler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prefs, err := h.userService.GetPreferences(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not load preferences")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   prefs,
	})
}

func (h *Handler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var prefs Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	prefs.UserID = userID

	if err := h.userService.UpdatePreferences(&prefs); err != nil {
		if errors.Is(err, ErrInvalidPreferences) {
			respondError(w, http.StatusBadRequest, ErrInvalidPreferences.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not update preferences")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Preferences updated successfully.",
		"data":    prefs,
	})
}
