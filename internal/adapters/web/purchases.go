package web

import (
	"net/http"
	"strconv"

	"purchasing-admin/internal/app"
	"purchasing-admin/internal/core"
)

type lineBody struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// purchaseBody is the JSON body accepted by create and update.
// Body: { customer_id, status?, version?, lines: [{item_id, quantity}] }
// lines is the complete new line set; a nil Lines means the key was absent.
type purchaseBody struct {
	CustomerID int         `json:"customer_id"`
	Status     string      `json:"status"`
	Version    int         `json:"version"`
	Lines      *[]lineBody `json:"lines"`
}

func (b purchaseBody) lineRequests() []app.LineRequest {
	if b.Lines == nil {
		return nil
	}
	out := make([]app.LineRequest, 0, len(*b.Lines))
	for _, l := range *b.Lines {
		out = append(out, app.LineRequest{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return out
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// apiListItems handles GET /api/items.
func (h *Handler) apiListItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiListCustomers handles GET /api/customers.
func (h *Handler) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Purchases ─────────────────────────────────────────────────────────────────

// apiListPurchases handles GET /api/purchases?page=N.
func (h *Handler) apiListPurchases(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, "page must be an integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		page = n
	}

	result, err := h.svc.ListPurchases(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Page)
}

// apiNewPurchase handles GET /api/purchases/new.
func (h *Handler) apiNewPurchase(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.NewPurchaseForm(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Form)
}

// apiCreatePurchase handles POST /api/purchases.
func (h *Handler) apiCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var body purchaseBody
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreatePurchase(r.Context(), app.CreatePurchaseRequest{
		CustomerID: body.CustomerID,
		Status:     body.Status,
		Lines:      body.lineRequests(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/purchases/"+strconv.Itoa(result.Order.ID))
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiShowPurchase handles GET /api/purchases/{id}.
func (h *Handler) apiShowPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := purchaseID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetPurchase(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if result.Order == nil {
		writeError(w, r, "purchase "+strconv.Itoa(id)+" not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, result)
}

// apiEditPurchase handles GET /api/purchases/{id}/edit.
func (h *Handler) apiEditPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := purchaseID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.EditPurchase(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if result.Order == nil {
		writeError(w, r, "purchase "+strconv.Itoa(id)+" not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, result)
}

// apiUpdatePurchase handles PUT and PATCH /api/purchases/{id}.
// customer_id in the body is ignored; a purchase keeps its customer.
// lines is required: it replaces the purchase's lines, and [] removes them all.
func (h *Handler) apiUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := purchaseID(w, r)
	if !ok {
		return
	}
	var body purchaseBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Lines == nil {
		writeServiceError(w, r, &core.ValidationError{
			Field:   "lines",
			Message: "is required; send the full line set, or [] to remove every line",
		})
		return
	}

	result, err := h.svc.UpdatePurchase(r.Context(), app.UpdatePurchaseRequest{
		PurchaseID: id,
		Status:     body.Status,
		Version:    body.Version,
		Lines:      body.lineRequests(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDeletePurchase handles DELETE /api/purchases/{id}. Deletion is not supported.
func (h *Handler) apiDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := purchaseID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePurchase(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
