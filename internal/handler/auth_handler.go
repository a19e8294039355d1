package handlers

import (
	"io"
	"net/http"

	"tradepost/internal/apperr"
	"tradepost/internal/models"
)

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, apperr.New(apperr.ErrInvalidShape, "unreadable body"))
		return
	}

	user, token, err := h.Auth.Login(r.Context(), body)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}
