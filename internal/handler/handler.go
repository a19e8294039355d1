package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tradepost/internal/config"
	"tradepost/internal/middleware"
	"tradepost/internal/service"
)

type Handlers struct {
	Listings service.ListingService
	Users    service.UserService
	Auth     service.AuthService
	Cfg      *config.Config
	Log      *zap.Logger
}

func NewHandlers(services *service.Service, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{
		Listings: services.Listing,
		Users:    services.User,
		Auth:     services.Auth,
		Cfg:      cfg,
		Log:      log,
	}
}

// Routes builds the router. Reads are public; every mutation goes through
// the auth middleware.
func (h *Handlers) Routes(requireAuth middleware.Middleware) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	api.HandleFunc("/posts", h.ListListings).Methods(http.MethodGet)
	api.Handle("/posts", requireAuth(http.HandlerFunc(h.CreateListing))).Methods(http.MethodPost)
	api.HandleFunc("/posts/search", h.SearchListings).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetListing).Methods(http.MethodGet)
	api.Handle("/posts/{id}", requireAuth(http.HandlerFunc(h.UpdateListing))).Methods(http.MethodPut)
	api.Handle("/posts/{id}", requireAuth(http.HandlerFunc(h.DeleteListing))).Methods(http.MethodDelete)
	api.Handle("/posts/{id}/upload", requireAuth(http.HandlerFunc(h.UploadImages))).Methods(http.MethodPost)

	return router
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
