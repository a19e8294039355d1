package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tradepost/internal/apperr"
	"tradepost/internal/middleware"
	"tradepost/internal/service"
	"tradepost/internal/validation"
)

const (
	defaultListLimit = 20

	// multipart form field carrying the image files
	uploadFieldName = "fileName"
)

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.respondError(w, apperr.New(apperr.ErrUnauthenticated, ""))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, apperr.New(apperr.ErrInvalidShape, "unreadable body"))
		return
	}

	listing, err := h.Listings.Create(r.Context(), principal, body)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Listings.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// ListListings pages through all listings. The handler only decides whether
// offset and limit are numbers; whether the numbers are in bounds is for
// the store, so the two failure modes carry distinct details.
func (h *Handlers) ListListings(w http.ResponseWriter, r *http.Request) {
	offset := 0
	limit := defaultListLimit

	if raw := r.URL.Query().Get("offset"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, apperr.New(apperr.ErrInvalidShape, "offset must be a number"))
			return
		}
		offset = value
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, apperr.New(apperr.ErrInvalidShape, "limit must be a number"))
			return
		}
		limit = value
	}

	listings, err := h.Listings.List(r.Context(), offset, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *Handlers) SearchListings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, apperr.New(apperr.ErrInvalidShape, "unreadable body"))
		return
	}

	filter, err := validation.ParseSearchFilter(body)
	if err != nil {
		h.respondError(w, err)
		return
	}

	listings, err := h.Listings.Search(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *Handlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.respondError(w, apperr.New(apperr.ErrUnauthenticated, ""))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, apperr.New(apperr.ErrInvalidShape, "unreadable body"))
		return
	}

	listing, err := h.Listings.Update(r.Context(), principal, mux.Vars(r)["id"], body)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *Handlers) DeleteListing(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.respondError(w, apperr.New(apperr.ErrUnauthenticated, ""))
		return
	}

	if err := h.Listings.Delete(r.Context(), principal, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UploadImages(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.respondError(w, apperr.New(apperr.ErrUnauthenticated, ""))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		h.respondError(w, apperr.New(apperr.ErrInvalidShape, "malformed multipart body"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadFieldName]
	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.respondError(w, apperr.Wrap(apperr.ErrStorage, err))
			return
		}
		defer file.Close()

		files = append(files, service.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		})
	}

	urls, err := h.Listings.UploadImages(r.Context(), principal, mux.Vars(r)["id"], files)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, urls)
}
