package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wingho/backend-pos/internal/cart"
	"github.com/wingho/backend-pos/internal/events"
	"github.com/wingho/backend-pos/internal/obs"
	"github.com/wingho/backend-pos/internal/pricing"
	"github.com/wingho/backend-pos/internal/receipt"
)

var (
	// ErrEmptyCart means there is nothing to price or pay for.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotPriced means payment arrived before a quote for this cart.
	ErrNotPriced = errors.New("cart has not been priced")
	// ErrInsufficientPayment carries the exact shortfall in its message.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInvalidTender rejects payment methods outside the accepted set.
	ErrInvalidTender = errors.New("invalid payment method")
)

// State tracks where a cart sits in the checkout flow. A cart re-enters
// Idle once its receipt is committed and the cart is emptied.
type State string

const (
	StateIdle   State = "idle"
	StatePriced State = "priced"
	StatePaid   State = "paid"
	StateLogged State = "logged"
)

// attempt is the in-flight checkout for one cart. The quote is pinned at
// pricing time so the amount charged is exactly the amount shown.
type attempt struct {
	state State
	quote pricing.Quote
	snap  cart.Snapshot
}

type cartService interface {
	Snapshot(cartID string) (cart.Snapshot, error)
	Clear(cartID string) error
}

type ledger interface {
	Create(ctx context.Context, r receipt.Receipt) error
}

// Service drives a cart from quote to committed receipt. One attempt per
// cart at a time; the map is guarded for concurrent registers.
type Service struct {
	carts  cartService
	engine *pricing.Engine
	ledger ledger
	bus    *events.Bus
	logger zerolog.Logger

	couponAmount int64
	zone         *time.Location
	now          func() time.Time

	mu       sync.Mutex
	attempts map[string]*attempt
}

func NewService(carts cartService, engine *pricing.Engine, ledger ledger, bus *events.Bus, logger zerolog.Logger, couponAmount int64, zone *time.Location) *Service {
	return &Service{
		carts:        carts,
		engine:       engine,
		ledger:       ledger,
		bus:          bus,
		logger:       logger,
		couponAmount: couponAmount,
		zone:         zone,
		now:          time.Now,
		attempts:     make(map[string]*attempt),
	}
}

// Price computes a quote for the cart's current contents and arms the
// checkout. Re-pricing always replaces the previous quote.
func (s *Service) Price(ctx context.Context, cartID string, applyCoupon bool) (pricing.Quote, error) {
	snap, err := s.carts.Snapshot(cartID)
	if err != nil {
		return pricing.Quote{}, err
	}
	if snap.Empty() {
		return pricing.Quote{}, ErrEmptyCart
	}

	q := s.engine.Quote(snap, pricing.Options{
		ApplyCoupon:  applyCoupon,
		CouponAmount: s.couponAmount,
	})

	s.mu.Lock()
	s.attempts[cartID] = &attempt{state: StatePriced, quote: q, snap: snap}
	s.mu.Unlock()

	zerolog.Ctx(ctx).Info().
		Str("cart_id", cartID).
		Int64("subtotal_cents", q.Subtotal).
		Int64("savings_cents", q.Savings()).
		Int64("total_cents", q.Total).
		Bool("coupon", applyCoupon).
		Msg("cart priced")
	return q, nil
}

// Result is the outcome of a successful payment.
type Result struct {
	Receipt receipt.Receipt `json:"receipt"`
	Quote   pricing.Quote   `json:"quote"`
}

// Pay settles a priced cart. The cart is cleared only after the receipt
// is durably in the ledger; any failure before that leaves the cart and
// its quote untouched so the operator can retry.
func (s *Service) Pay(ctx context.Context, cartID string, method string, amount int64) (Result, error) {
	if !receipt.ValidTender(method) {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidTender, method)
	}

	s.mu.Lock()
	att, ok := s.attempts[cartID]
	s.mu.Unlock()
	if !ok || att.state != StatePriced {
		return Result{}, ErrNotPriced
	}

	q := att.quote
	if amount < q.Total {
		owed := q.Total - amount
		countCheckout("insufficient_payment")
		return Result{}, fmt.Errorf("%w: %s more required", ErrInsufficientPayment, pricing.FormatMoney(owed))
	}
	att.state = StatePaid

	now := s.now().In(s.zone)
	rec := receipt.Receipt{
		ID:                   receipt.NewID(now),
		CreatedAt:            now,
		Products:             productSummary(att.snap),
		TotalBeforeDiscounts: q.Subtotal,
		DiscountsApplied:     q.DiscountSummary(),
		FinalTotal:           q.Total,
		PaymentMethod:        method,
		PaymentAmount:        amount,
		Change:               amount - q.Total,
	}

	if err := s.ledger.Create(ctx, rec); err != nil {
		// Payment taken but not logged: regress so the operator can
		// retry without losing the cart.
		att.state = StatePriced
		countCheckout("ledger_error")
		return Result{}, fmt.Errorf("log receipt: %w", err)
	}
	att.state = StateLogged

	countCheckout("success")
	if obs.ReceiptsLoggedTotal != nil {
		obs.ReceiptsLoggedTotal.Inc()
	}
	if obs.DiscountSavingsCents != nil {
		if q.PackageSavings > 0 {
			obs.DiscountSavingsCents.WithLabelValues("package").Add(float64(q.PackageSavings))
		}
		if q.ThresholdDiscount > 0 {
			obs.DiscountSavingsCents.WithLabelValues("threshold").Add(float64(q.ThresholdDiscount))
		}
		if q.CouponSavings > 0 {
			obs.DiscountSavingsCents.WithLabelValues("coupon").Add(float64(q.CouponSavings))
		}
	}

	s.bus.Publish(ctx, events.Event{
		Topic:   events.TopicReceiptCreated,
		Subject: rec.ID,
		Payload: map[string]any{
			"final_total":    rec.FinalTotal,
			"payment_method": rec.PaymentMethod,
		},
	})

	if err := s.carts.Clear(cartID); err != nil {
		// The sale is committed either way; log and move on.
		s.logger.Error().Err(err).Str("cart_id", cartID).Msg("cart clear after checkout failed")
	}
	s.mu.Lock()
	delete(s.attempts, cartID)
	s.mu.Unlock()

	zerolog.Ctx(ctx).Info().
		Str("receipt_id", rec.ID).
		Str("cart_id", cartID).
		Str("payment_method", method).
		Int64("final_total_cents", rec.FinalTotal).
		Int64("change_cents", rec.Change).
		Msg("checkout complete")
	return Result{Receipt: rec, Quote: q}, nil
}

// StateOf reports the checkout state for a cart, for diagnostics.
func (s *Service) StateOf(cartID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if att, ok := s.attempts[cartID]; ok {
		return att.state
	}
	return StateIdle
}

func countCheckout(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}

func productSummary(snap cart.Snapshot) string {
	parts := make([]string, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		parts = append(parts, fmt.Sprintf("%s x %d", l.Name, l.Qty))
	}
	return strings.Join(parts, "; ")
}
