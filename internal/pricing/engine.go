package pricing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wingho/backend-pos/internal/cart"
)

// Stage identifies one step of the discount resolution pipeline.
type Stage string

// Pipeline stages in evaluation order.
const (
	StageSubtotal  Stage = "subtotal"
	StagePackage   Stage = "package"
	StageThreshold Stage = "threshold"
	StageCoupon    Stage = "coupon"
	StageTotal     Stage = "total"
)

// Entry is one structured line of the discount trace. Amount carries the
// signed money delta for the line: the subtotal and total entries are
// positive, discount entries negative, informational entries zero.
type Entry struct {
	Stage  Stage  `json:"stage"`
	Label  string `json:"label"`
	Amount Money  `json:"amount"`
}

// Quote is the result of pricing a cart snapshot against the rule tables.
type Quote struct {
	Empty             bool    `json:"empty"`
	Subtotal          Money   `json:"subtotal"`
	PackageSavings    Money   `json:"packageSavings"`
	ThresholdDiscount Money   `json:"thresholdDiscount"`
	CouponSavings     Money   `json:"couponSavings"`
	Total             Money   `json:"total"`
	Entries           []Entry `json:"entries"`
}

// Savings reports the combined discount across all stages.
func (q Quote) Savings() Money {
	return q.PackageSavings + q.ThresholdDiscount + q.CouponSavings
}

// Options toggles per-attempt engine behaviour.
type Options struct {
	ApplyCoupon  bool
	CouponAmount Money
}

// Engine resolves the layered discount policy over a cart snapshot. It is a
// pure function of the snapshot and the rule tables; it never mutates the
// cart or product stock.
type Engine struct {
	Rules Rules
}

const emptyCartMessage = "Your cart is empty."

// Quote runs the three discount passes in fixed order. Later passes see the
// post-discount running total, not the original subtotal.
func (e Engine) Quote(snap cart.Snapshot, opts Options) Quote {
	if snap.Empty() {
		return Quote{Empty: true}
	}

	q := Quote{Subtotal: snap.Total}
	q.Entries = append(q.Entries, Entry{Stage: StageSubtotal, Label: "Total before discounts", Amount: snap.Total})

	packageEntries := e.packagePass(snap, &q)
	q.Entries = append(q.Entries, packageEntries...)
	running := q.Subtotal - q.PackageSavings

	q.Entries = append(q.Entries, e.thresholdPass(running, &q))
	running -= q.ThresholdDiscount

	if opts.ApplyCoupon && opts.CouponAmount > 0 {
		q.CouponSavings = opts.CouponAmount
		q.Entries = append(q.Entries, Entry{Stage: StageCoupon, Label: "Coupon Savings", Amount: -opts.CouponAmount})
		running -= opts.CouponAmount
	}

	q.Total = running
	q.Entries = append(q.Entries, Entry{Stage: StageTotal, Label: "Final Total", Amount: q.Total})
	return q
}

// packagePass consumes bundle quantities from a working pool so a unit
// claimed by an earlier rule is unavailable to a later one.
func (e Engine) packagePass(snap cart.Snapshot, q *Quote) []Entry {
	available := make(map[uuid.UUID]int32, len(snap.Lines))
	for _, line := range snap.Lines {
		available[line.ProductID] = line.Qty
	}

	var entries []Entry
	for _, rule := range e.Rules.Packages {
		if len(rule.Requires) == 0 {
			continue
		}
		times := int32(-1)
		for pid, required := range rule.Requires {
			have, ok := available[pid]
			if !ok || have < required {
				times = 0
				break
			}
			fits := have / required
			if times < 0 || fits < times {
				times = fits
			}
		}
		if times <= 0 {
			continue
		}
		for pid, required := range rule.Requires {
			available[pid] -= required * times
		}
		saved := rule.Discount * Money(times)
		q.PackageSavings += saved
		entries = append(entries, Entry{
			Stage:  StagePackage,
			Label:  fmt.Sprintf("Applied package '%s' %d time(s)", rule.Name, times),
			Amount: -saved,
		})
	}
	return entries
}

// thresholdPass applies the single rule with the highest qualifying
// threshold. Rules never stack.
func (e Engine) thresholdPass(total Money, q *Quote) Entry {
	var best *ThresholdRule
	for i := range e.Rules.Thresholds {
		rule := e.Rules.Thresholds[i]
		if total < rule.Threshold {
			continue
		}
		if best == nil || rule.Threshold > best.Threshold {
			best = &e.Rules.Thresholds[i]
		}
	}
	if best == nil {
		return Entry{Stage: StageThreshold, Label: "No Fixed Discounts Applied."}
	}
	q.ThresholdDiscount = best.Discount
	return Entry{Stage: StageThreshold, Label: "Fixed Discount Applied", Amount: -best.Discount}
}

// Narrative renders the deterministic operator-facing trace of every stage.
// The text is part of the contract: it is shown at the till and embedded
// verbatim in the receipt.
func (q Quote) Narrative() string {
	if q.Empty {
		return emptyCartMessage
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Total before discounts: %s\n", FormatMoney(q.Subtotal))
	// The savings line always carries the minus sign, "-$0.00" included.
	fmt.Fprintf(&b, "Package Discounts Savings: -%s\n", FormatMoney(q.PackageSavings))
	for _, entry := range q.Entries {
		if entry.Stage != StagePackage {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", entry.Label, FormatMoney(entry.Amount))
	}
	for _, entry := range q.Entries {
		if entry.Stage != StageThreshold {
			continue
		}
		if entry.Amount == 0 {
			b.WriteString(entry.Label + "\n")
		} else {
			fmt.Fprintf(&b, "%s: %s\n", entry.Label, FormatMoney(entry.Amount))
		}
	}
	if q.CouponSavings > 0 {
		fmt.Fprintf(&b, "Coupon Savings: %s\n", FormatMoney(-q.CouponSavings))
	}
	fmt.Fprintf(&b, "Final Total: %s\n", FormatMoney(q.Total))
	return b.String()
}

// DiscountLog returns the applied-discount descriptions persisted on the
// receipt, in application order.
func (q Quote) DiscountLog() []string {
	if q.Empty {
		return nil
	}
	var log []string
	for _, entry := range q.Entries {
		if entry.Stage == StagePackage {
			log = append(log, fmt.Sprintf("%s: %s", entry.Label, FormatMoney(entry.Amount)))
		}
	}
	if q.ThresholdDiscount > 0 {
		log = append(log, fmt.Sprintf("Fixed Discount: %s", FormatMoney(-q.ThresholdDiscount)))
	}
	if q.CouponSavings > 0 {
		log = append(log, fmt.Sprintf("Coupon Discount: %s", FormatMoney(-q.CouponSavings)))
	}
	return log
}

// DiscountSummary flattens the discount log for receipt storage.
func (q Quote) DiscountSummary() string {
	log := q.DiscountLog()
	if len(log) == 0 {
		return "None"
	}
	return strings.Join(log, "; ")
}
