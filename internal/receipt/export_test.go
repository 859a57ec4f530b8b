package receipt

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	receipts := []Receipt{
		{
			ID:                   "20260314150926-abcd1234",
			CreatedAt:            time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
			Products:             "布帶 x 1; 布袋 x 1",
			TotalBeforeDiscounts: 8000,
			DiscountsApplied:     "Applied package '一袋一布帶' 1 time(s): -$10.00",
			FinalTotal:           7000,
			PaymentMethod:        TenderCash,
			PaymentAmount:        10000,
			Change:               3000,
		},
		{
			ID:                   "20260314151010-deadbeef",
			CreatedAt:            time.Date(2026, 3, 14, 15, 10, 10, 0, time.UTC),
			Products:             "蚯蚓 x 2",
			TotalBeforeDiscounts: 4000,
			DiscountsApplied:     "None",
			FinalTotal:           4000,
			PaymentMethod:        TenderFPS,
			PaymentAmount:        4000,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, receipts))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, []string{
		"Receipt ID", "Date", "Products", "Total Before Discounts",
		"Discounts Applied", "Final Total", "Payment Method", "Payment Amount", "Change",
	}, rows[0])

	require.Equal(t, []string{
		"20260314150926-abcd1234",
		"2026-03-14 15:09:26",
		"布帶 x 1; 布袋 x 1",
		"80.00",
		"Applied package '一袋一布帶' 1 time(s): -$10.00",
		"70.00",
		"Cash",
		"100.00",
		"30.00",
	}, rows[1])

	require.Equal(t, "0.00", rows[2][8])
}

func TestWriteCSVEmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
