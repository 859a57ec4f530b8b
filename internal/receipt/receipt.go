package receipt

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tender values accepted at the till. The set is closed; anything else is
// rejected before a receipt is built.
const (
	TenderCash   = "Cash"
	TenderPayMe  = "PayMe"
	TenderAlipay = "支付寶"
	TenderFPS    = "轉數快"
)

// Tenders returns the closed set of accepted payment methods.
func Tenders() []string {
	return []string{TenderCash, TenderPayMe, TenderAlipay, TenderFPS}
}

// ValidTender reports whether the payment method belongs to the closed set.
func ValidTender(method string) bool {
	switch strings.TrimSpace(method) {
	case TenderCash, TenderPayMe, TenderAlipay, TenderFPS:
		return true
	}
	return false
}

// Receipt is the immutable record of a completed checkout. Only the payment
// method and amount may change after creation, via an explicit edit that
// recomputes Change against the stored FinalTotal.
type Receipt struct {
	ID                   string    `json:"receiptId"`
	CreatedAt            time.Time `json:"createdAt"`
	Products             string    `json:"products"`
	TotalBeforeDiscounts int64     `json:"totalBeforeDiscounts"`
	DiscountsApplied     string    `json:"discountsApplied"`
	FinalTotal           int64     `json:"finalTotal"`
	PaymentMethod        string    `json:"paymentMethod"`
	PaymentAmount        int64     `json:"paymentAmount"`
	Change               int64     `json:"change"`
}

// NewID derives a receipt identifier from the civil timestamp plus a random
// suffix, so two checkouts within the same second never collide.
func NewID(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// Timezone resolves the fixed civil time zone receipts are recorded in,
// falling back to a static UTC+8 when the tz database is unavailable.
func Timezone(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("UTC+8", 8*60*60)
}
