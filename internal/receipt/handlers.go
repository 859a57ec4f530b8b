package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wingho/backend-pos/internal/common"
	"github.com/wingho/backend-pos/internal/events"
)

// Ledger is the storage surface handlers depend on.
type Ledger interface {
	Get(ctx context.Context, id string) (Receipt, error)
	List(ctx context.Context) ([]Receipt, error)
	UpdatePayment(ctx context.Context, id string, method *string, amount *int64) (Receipt, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	Ledger Ledger
	Bus    *events.Bus
}

func NewHandlers(ledger Ledger, bus *events.Bus) *Handlers {
	return &Handlers{Ledger: ledger, Bus: bus}
}

// List returns every receipt in the ledger, oldest first.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.Ledger.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if receipts == nil {
		receipts = []Receipt{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}

// Export streams the ledger as a CSV attachment.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.Ledger.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	filename := "receipts-" + time.Now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteCSV(w, receipts); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("receipt export failed mid-stream")
	}
}

// Get returns a single receipt.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Ledger.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, rec)
}

type updateRequest struct {
	PaymentMethod *string `json:"payment_method"`
	PaymentAmount *int64  `json:"payment_amount"`
}

// Update edits the payment fields of a stored receipt. Totals and
// discounts are immutable once logged.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if req.PaymentMethod == nil && req.PaymentAmount == nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "nothing to update", nil)
		return
	}
	if req.PaymentMethod != nil && !ValidTender(*req.PaymentMethod) {
		common.JSONError(w, http.StatusBadRequest, "INVALID_TENDER", "unknown payment method", nil)
		return
	}
	if req.PaymentAmount != nil && *req.PaymentAmount < 0 {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "payment amount must not be negative", nil)
		return
	}

	rec, err := h.Ledger.UpdatePayment(r.Context(), id, req.PaymentMethod, req.PaymentAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Bus.Publish(r.Context(), events.Event{
		Topic:   events.TopicReceiptUpdated,
		Subject: rec.ID,
		Payload: map[string]any{"payment_method": rec.PaymentMethod, "payment_amount": rec.PaymentAmount},
	})
	common.JSON(w, http.StatusOK, rec)
}

// Delete removes a receipt from the ledger.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Ledger.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.Bus.Publish(r.Context(), events.Event{
		Topic:   events.TopicReceiptDeleted,
		Subject: id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "receipt not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("receipt handler error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
