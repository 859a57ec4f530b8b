package receipt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wingho/backend-pos/internal/events"
	"github.com/wingho/backend-pos/internal/receipt"
)

type fakeLedger struct {
	receipts map[string]receipt.Receipt
	order    []string
}

func newFakeLedger(receipts ...receipt.Receipt) *fakeLedger {
	f := &fakeLedger{receipts: make(map[string]receipt.Receipt)}
	for _, r := range receipts {
		f.receipts[r.ID] = r
		f.order = append(f.order, r.ID)
	}
	return f
}

func (f *fakeLedger) Get(_ context.Context, id string) (receipt.Receipt, error) {
	r, ok := f.receipts[id]
	if !ok {
		return receipt.Receipt{}, receipt.ErrNotFound
	}
	return r, nil
}

func (f *fakeLedger) List(_ context.Context) ([]receipt.Receipt, error) {
	out := make([]receipt.Receipt, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.receipts[id])
	}
	return out, nil
}

func (f *fakeLedger) UpdatePayment(_ context.Context, id string, method *string, amount *int64) (receipt.Receipt, error) {
	r, ok := f.receipts[id]
	if !ok {
		return receipt.Receipt{}, receipt.ErrNotFound
	}
	if method != nil {
		r.PaymentMethod = *method
	}
	if amount != nil {
		if *amount < r.FinalTotal {
			return receipt.Receipt{}, receipt.ErrInvalidInput
		}
		r.PaymentAmount = *amount
		r.Change = r.PaymentAmount - r.FinalTotal
	}
	f.receipts[id] = r
	return r, nil
}

func (f *fakeLedger) Delete(_ context.Context, id string) error {
	if _, ok := f.receipts[id]; !ok {
		return receipt.ErrNotFound
	}
	delete(f.receipts, id)
	return nil
}

func sampleReceipt() receipt.Receipt {
	return receipt.Receipt{
		ID:                   "20260314150926-abcd1234",
		CreatedAt:            time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		Products:             "布帶 x 1",
		TotalBeforeDiscounts: 3000,
		DiscountsApplied:     "None",
		FinalTotal:           3000,
		PaymentMethod:        receipt.TenderCash,
		PaymentAmount:        5000,
		Change:               2000,
	}
}

func newRouter(ledger *fakeLedger) chi.Router {
	h := receipt.NewHandlers(ledger, events.NewBus(zerolog.Nop()))
	r := chi.NewRouter()
	r.Get("/receipts", h.List)
	r.Get("/receipts/export", h.Export)
	r.Get("/receipts/{id}", h.Get)
	r.Patch("/receipts/{id}", h.Update)
	r.Delete("/receipts/{id}", h.Delete)
	return r
}

func TestListReceipts(t *testing.T) {
	router := newRouter(newFakeLedger(sampleReceipt()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receipts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Receipts []receipt.Receipt `json:"receipts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Receipts, 1)
	require.Equal(t, "20260314150926-abcd1234", body.Receipts[0].ID)
}

func TestGetReceiptNotFound(t *testing.T) {
	router := newRouter(newFakeLedger())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receipts/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateReceiptPayment(t *testing.T) {
	ledger := newFakeLedger(sampleReceipt())
	router := newRouter(ledger)

	payload := `{"payment_method":"轉數快","payment_amount":3000}`
	req := httptest.NewRequest(http.MethodPatch, "/receipts/20260314150926-abcd1234", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated receipt.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, receipt.TenderFPS, updated.PaymentMethod)
	require.Equal(t, int64(0), updated.Change)
}

func TestUpdateReceiptRejectsUnknownTender(t *testing.T) {
	router := newRouter(newFakeLedger(sampleReceipt()))

	payload := `{"payment_method":"Barter"}`
	req := httptest.NewRequest(http.MethodPatch, "/receipts/20260314150926-abcd1234", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReceiptRejectsAmountBelowTotal(t *testing.T) {
	router := newRouter(newFakeLedger(sampleReceipt()))

	payload := `{"payment_amount":2000}`
	req := httptest.NewRequest(http.MethodPatch, "/receipts/20260314150926-abcd1234", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteReceipt(t *testing.T) {
	ledger := newFakeLedger(sampleReceipt())
	router := newRouter(ledger)

	req := httptest.NewRequest(http.MethodDelete, "/receipts/20260314150926-abcd1234", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, ledger.receipts)
}

func TestExportReceiptsCSV(t *testing.T) {
	router := newRouter(newFakeLedger(sampleReceipt()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receipts/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "Receipt ID,Date,Products"))
	require.Contains(t, lines[1], "20260314150926-abcd1234")
}
