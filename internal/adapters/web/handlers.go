package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"purchasing-admin/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
// allowedOrigins lists the origins granted CORS access; nil disables CORS.
func NewHandler(svc app.ApplicationService, allowedOrigins []string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AttachRequestID)
	r.Use(Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSize(1 << 20)) // 1 MB

		// ── Catalog ───────────────────────────────────────────────────────────
		r.Get("/api/items", h.apiListItems)
		r.Get("/api/customers", h.apiListCustomers)

		// ── Purchases ─────────────────────────────────────────────────────────
		r.Get("/api/purchases", h.apiListPurchases)
		r.Get("/api/purchases/new", h.apiNewPurchase)
		r.Post("/api/purchases", h.apiCreatePurchase)
		r.Get("/api/purchases/{id}", h.apiShowPurchase)
		r.Get("/api/purchases/{id}/edit", h.apiEditPurchase)
		r.Put("/api/purchases/{id}", h.apiUpdatePurchase)
		r.Patch("/api/purchases/{id}", h.apiUpdatePurchase)
		r.Delete("/api/purchases/{id}", h.apiDeletePurchase)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// purchaseID extracts and parses the {id} URL parameter. It writes a 400 and
// returns false when the parameter is not a positive integer.
func purchaseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid purchase ID", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by middleware.RequestSize; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
