package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mwielgus/StockWatch/internal/user"
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

func setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	newUser, token, err := h.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailAlreadyExists):
			respondError(w, http.StatusConflict, user.ErrEmailAlreadyExists.Error())
		case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrEmailLength), errors.Is(err, user.ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Failed to create an account")
		}
		return
	}

	setSessionCookie(w, token, defaultSessionDuration)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Account created successfully",
		"data":    newUser,
	})
}

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existingUser, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setSessionCookie(w, token, defaultSessionDuration)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Signed in successfully",
		"data":    existingUser,
	})
}

func (h *Handler) HandleSignOut(w http.ResponseWriter, _ *http.Request) {
	// Stateless session tokens: signing out is dropping the cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Signed out successfully",
	})
}
