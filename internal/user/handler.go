package user

import (
	"errors"
	"net/http"

	"github.com/mwielgus/StockWatch/internal/session"
)

type Handler struct {
	service      Service
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewHandler(
	service Service,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *Handler {
	return &Handler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := session.FromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.service.GetUserByEmail(r.Context(), sessionUser.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, ErrUserNotFound.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, ErrInternalError.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   profile,
	})
}
