package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mwielgus/StockWatch/internal/session"
	"github.com/mwielgus/StockWatch/internal/user"
)

// SessionCookieName is the HttpOnly cookie the session JWT travels in.
const SessionCookieName = "session_token"

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SessionMiddleware authenticates requests from the session cookie and makes
// the session identity available to downstream handlers. No session means no
// access on protected routes.
func (s *service) SessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Session cookie is required")
				return
			}

			claims, err := s.jwtManager.ValidateSessionToken(cookie.Value)
			if err != nil {
				if errors.Is(err, ErrExpiredSessionToken) {
					writeJSONError(w, http.StatusUnauthorized, ErrExpiredSessionToken.Error())
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "Invalid session token")
				return
			}

			_, err = s.userService.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					writeJSONError(w, http.StatusUnauthorized, user.ErrUserNotFound.Error())
					return
				}
				writeJSONError(w, http.StatusInternalServerError, ErrInternalError.Error())
				return
			}

			ctx := session.NewContext(r.Context(), session.User{
				ID:    claims.UserID,
				Email: claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeJSONError writes an error response in JSON format
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
	})
}
