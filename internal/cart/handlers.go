package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wingho/backend-pos/internal/common"
	"github.com/wingho/backend-pos/internal/obs"
)

// Handler exposes cart endpoints.
type Handler struct {
	Svc *Service
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Qty       int32  `json:"qty"`
}

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c := h.Svc.Store.Create()
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]string{"id": c.ID}})
}

// Get handles GET /api/v1/carts/{id}, returning the ordered snapshot.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Svc.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// AddItem handles POST /api/v1/carts/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json body", nil)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_PRODUCT", "invalid product id", nil)
		return
	}
	message, err := h.Svc.Add(r.Context(), chi.URLParam(r, "id"), productID, req.Qty)
	if err != nil {
		if obs.CartMutationsTotal != nil {
			obs.CartMutationsTotal.WithLabelValues("add", "rejected").Inc()
		}
		h.writeError(w, err)
		return
	}
	if obs.CartMutationsTotal != nil {
		obs.CartMutationsTotal.WithLabelValues("add", "ok").Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"message": message}})
}

// Clear handles POST /api/v1/carts/{id}/clear.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Clear(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	if obs.CartMutationsTotal != nil {
		obs.CartMutationsTotal.WithLabelValues("clear", "ok").Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"message": "Cart has been cleared."}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCartNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrInvalidProduct):
		common.JSONError(w, http.StatusBadRequest, "INVALID_PRODUCT", "invalid product id", nil)
	case errors.Is(err, ErrInvalidQty):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "quantity must be positive", nil)
	case errors.Is(err, ErrInsufficientStock):
		common.JSONError(w, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
