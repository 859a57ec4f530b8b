package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/wingho/backend-pos/internal/cart"
	"github.com/wingho/backend-pos/internal/common"
	"github.com/wingho/backend-pos/internal/pricing"
)

type Handlers struct {
	Service  *Service
	validate *validator.Validate
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{Service: svc, validate: validator.New()}
}

type quoteRequest struct {
	ApplyCoupon bool `json:"apply_coupon"`
}

type quoteResponse struct {
	Quote     pricing.Quote `json:"quote"`
	Narrative string        `json:"narrative"`
}

// Quote prices the cart and returns both the structured breakdown and
// the operator-facing narrative lines.
func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "id")

	var req quoteRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
			return
		}
	}

	q, err := h.Service.Price(r.Context(), cartID, req.ApplyCoupon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, quoteResponse{Quote: q, Narrative: q.Narrative()})
}

type payRequest struct {
	CartID        string `json:"cart_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
	PaymentAmount int64  `json:"payment_amount" validate:"gte=0"`
}

// Pay settles a previously priced cart and returns the logged receipt.
func (h *Handlers) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}

	res, err := h.Service.Pay(r.Context(), req.CartID, req.PaymentMethod, req.PaymentAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, res)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		common.JSONError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "Your cart is empty.", nil)
	case errors.Is(err, ErrNotPriced):
		common.JSONError(w, http.StatusConflict, "NOT_PRICED", "price the cart before paying", nil)
	case errors.Is(err, ErrInsufficientPayment):
		common.JSONError(w, http.StatusPaymentRequired, "INSUFFICIENT_PAYMENT", err.Error(), nil)
	case errors.Is(err, ErrInvalidTender):
		common.JSONError(w, http.StatusBadRequest, "INVALID_TENDER", err.Error(), nil)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("checkout handler error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
