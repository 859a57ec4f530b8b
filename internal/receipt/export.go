package receipt

import (
	"encoding/csv"
	"fmt"
	"io"
)

// exportHeader matches the ledger's canonical column order.
var exportHeader = []string{
	"Receipt ID",
	"Date",
	"Products",
	"Total Before Discounts",
	"Discounts Applied",
	"Final Total",
	"Payment Method",
	"Payment Amount",
	"Change",
}

// WriteCSV streams the full ledger as CSV. Amounts are plain decimal
// strings without currency symbols so the file loads cleanly into
// spreadsheet tools.
func WriteCSV(w io.Writer, receipts []Receipt) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range receipts {
		row := []string{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Products,
			csvAmount(r.TotalBeforeDiscounts),
			r.DiscountsApplied,
			csvAmount(r.FinalTotal),
			r.PaymentMethod,
			csvAmount(r.PaymentAmount),
			csvAmount(r.Change),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
