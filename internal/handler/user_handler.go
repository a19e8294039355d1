package handlers

import (
	"io"
	"net/http"

	"tradepost/internal/apperr"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, apperr.New(apperr.ErrInvalidShape, "unreadable body"))
		return
	}

	user, err := h.Users.Register(r.Context(), body)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
