package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wingho/backend-pos/internal/common"
	"github.com/wingho/backend-pos/internal/events"
)

// Handler exposes product CRUD endpoints. Bus is optional; when set,
// successful updates publish a product.updated event.
type Handler struct {
	Svc *Service
	Bus *events.Bus
}

// List handles GET /api/v1/products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.Svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Get handles GET /api/v1/products/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	product, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Create handles POST /api/v1/products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json body", nil)
		return
	}
	product, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": product})
}

// Update handles PUT /api/v1/products/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json body", nil)
		return
	}
	product, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Bus != nil {
		h.Bus.Publish(r.Context(), events.Event{
			Topic:   events.TopicProductUpdated,
			Subject: product.ID.String(),
			Payload: map[string]any{"name": product.Name, "price": product.Price, "stock": product.Stock},
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Delete handles DELETE /api/v1/products/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"id": id.String()}})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid product id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
