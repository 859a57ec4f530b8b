package pricing

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wingho/backend-pos/internal/cart"
)

var (
	beltID    = uuidMust("11111111-1111-1111-1111-111111111111")
	bagID     = uuidMust("22222222-2222-2222-2222-222222222222")
	patternID = uuidMust("33333333-3333-3333-3333-333333333333")
	wormID    = uuidMust("44444444-4444-4444-4444-444444444444")
)

func testRules() Rules {
	return Rules{
		Packages: []PackageRule{
			{Name: "一袋一布帶", Requires: map[uuid.UUID]int32{beltID: 1, bagID: 1}, Discount: 1000},
			{Name: "兩布帶", Requires: map[uuid.UUID]int32{beltID: 2}, Discount: 500},
		},
		Thresholds: DefaultThresholds(),
	}
}

type snapLine struct {
	id    uuid.UUID
	name  string
	price int64
	qty   int32
}

func snapshotOf(lines ...snapLine) cart.Snapshot {
	var snap cart.Snapshot
	for _, l := range lines {
		subtotal := l.price * int64(l.qty)
		snap.Lines = append(snap.Lines, cart.SnapshotLine{
			ProductID: l.id,
			Name:      l.name,
			Qty:       l.qty,
			Price:     l.price,
			Subtotal:  subtotal,
		})
		snap.Total += subtotal
	}
	return snap
}

func TestQuoteWorkedExample(t *testing.T) {
	engine := Engine{Rules: testRules()}
	// Two belts and one bag. The bundle rule consumes one belt and the
	// bag; the leftover single belt is not enough for the two-belt rule.
	snap := snapshotOf(
		snapLine{beltID, "布帶", 3000, 2},
		snapLine{bagID, "布袋", 5000, 1},
	)

	q := engine.Quote(snap, Options{})
	if q.Subtotal != 11000 {
		t.Fatalf("expected subtotal 11000, got %d", q.Subtotal)
	}
	if q.PackageSavings != 1000 {
		t.Fatalf("expected package savings 1000, got %d", q.PackageSavings)
	}
	if q.Savings() != 1000 {
		t.Fatalf("expected combined savings 1000, got %d", q.Savings())
	}
	if q.ThresholdDiscount != 0 {
		t.Fatalf("expected no threshold discount, got %d", q.ThresholdDiscount)
	}
	if q.Total != 10000 {
		t.Fatalf("expected total 10000, got %d", q.Total)
	}

	var packages []string
	for _, e := range q.Entries {
		if e.Stage == StagePackage {
			packages = append(packages, e.Label)
		}
	}
	if len(packages) != 1 || packages[0] != "Applied package '一袋一布帶' 1 time(s)" {
		t.Fatalf("expected only the bundle rule to apply, got %v", packages)
	}

	want := "Total before discounts: $110.00\n" +
		"Package Discounts Savings: -$10.00\n" +
		"Applied package '一袋一布帶' 1 time(s): -$10.00\n" +
		"No Fixed Discounts Applied.\n" +
		"Final Total: $100.00\n"
	if got := q.Narrative(); got != want {
		t.Fatalf("narrative mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestNarrativeZeroPackageSavingsKeepsSign(t *testing.T) {
	engine := Engine{Rules: testRules()}
	snap := snapshotOf(snapLine{wormID, "蚯蚓", 2000, 1})

	q := engine.Quote(snap, Options{})
	if q.PackageSavings != 0 {
		t.Fatalf("expected no package savings, got %d", q.PackageSavings)
	}
	want := "Total before discounts: $20.00\n" +
		"Package Discounts Savings: -$0.00\n" +
		"No Fixed Discounts Applied.\n" +
		"Final Total: $20.00\n"
	if got := q.Narrative(); got != want {
		t.Fatalf("narrative mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPackageUnitsConsumedOnce(t *testing.T) {
	engine := Engine{Rules: testRules()}
	// Three belts and one bag: the bundle rule claims one belt, the
	// two-belt rule claims the remaining two. No unit serves both.
	snap := snapshotOf(
		snapLine{beltID, "布帶", 3000, 3},
		snapLine{bagID, "布袋", 5000, 1},
	)

	q := engine.Quote(snap, Options{})
	if q.PackageSavings != 1500 {
		t.Fatalf("expected package savings 1500, got %d", q.PackageSavings)
	}

	var labels []string
	for _, e := range q.Entries {
		if e.Stage == StagePackage {
			labels = append(labels, e.Label)
		}
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 package entries, got %d: %v", len(labels), labels)
	}
	if labels[0] != "Applied package '一袋一布帶' 1 time(s)" {
		t.Fatalf("unexpected first package entry: %s", labels[0])
	}
	if labels[1] != "Applied package '兩布帶' 1 time(s)" {
		t.Fatalf("unexpected second package entry: %s", labels[1])
	}
}

func TestPackageAppliesMultipleTimes(t *testing.T) {
	engine := Engine{Rules: testRules()}
	snap := snapshotOf(
		snapLine{beltID, "布帶", 3000, 2},
		snapLine{bagID, "布袋", 5000, 2},
	)

	q := engine.Quote(snap, Options{})
	if q.PackageSavings != 2000 {
		t.Fatalf("expected bundle applied twice for 2000 savings, got %d", q.PackageSavings)
	}
}

func TestThresholdPicksHighestQualifying(t *testing.T) {
	engine := Engine{Rules: testRules()}
	snap := snapshotOf(snapLine{wormID, "蚯蚓", 2000, 18})

	q := engine.Quote(snap, Options{})
	if q.Subtotal != 36000 {
		t.Fatalf("expected subtotal 36000, got %d", q.Subtotal)
	}
	if q.ThresholdDiscount != 4000 {
		t.Fatalf("expected the 350 threshold discount, got %d", q.ThresholdDiscount)
	}
	if q.Total != 32000 {
		t.Fatalf("expected total 32000, got %d", q.Total)
	}
}

func TestThresholdsNeverStack(t *testing.T) {
	engine := Engine{Rules: testRules()}
	snap := snapshotOf(snapLine{wormID, "蚯蚓", 2000, 13})

	q := engine.Quote(snap, Options{})
	if q.Subtotal != 26000 {
		t.Fatalf("expected subtotal 26000, got %d", q.Subtotal)
	}
	if q.ThresholdDiscount != 2000 {
		t.Fatalf("expected only the 220 threshold discount, got %d", q.ThresholdDiscount)
	}
	if q.Total != 24000 {
		t.Fatalf("expected total 24000, got %d", q.Total)
	}
}

func TestThresholdSeesPostPackageTotal(t *testing.T) {
	engine := Engine{Rules: testRules()}
	// The bundle discount runs first, so the threshold is judged on
	// 22500 rather than the raw 23500 subtotal.
	snap := snapshotOf(
		snapLine{beltID, "布帶", 3000, 1},
		snapLine{bagID, "布袋", 5000, 1},
		snapLine{wormID, "蚯蚓", 2000, 7},
		snapLine{patternID, "圖案 (大)", 1500, 1},
	)
	if snap.Total != 23500 {
		t.Fatalf("test setup wrong, subtotal %d", snap.Total)
	}

	q := engine.Quote(snap, Options{})
	// 23500 - 1000 package = 22500, still above 22000.
	if q.ThresholdDiscount != 2000 {
		t.Fatalf("expected threshold on post-package total, got %d", q.ThresholdDiscount)
	}
	if q.Total != 20500 {
		t.Fatalf("expected total 20500, got %d", q.Total)
	}
}

func TestThresholdNotReachedAfterPackages(t *testing.T) {
	engine := Engine{Rules: testRules()}
	snap := snapshotOf(
		snapLine{beltID, "布帶", 3000, 1},
		snapLine{bagID, "布袋", 5000, 1},
		snapLine{wormID, "蚯蚓", 2000, 7},
	)
	if snap.Total != 22000 {
		t.Fatalf("test setup wrong, subtotal %d", snap.Total)
	}

	q := engine.Quote(snap, Options{})
	// The package discount drops the running total to 21000, so the
	// 22000 threshold no longer qualifies even though the raw subtotal did.
	if q.ThresholdDiscount != 0 {
		t.Fatalf("expected no threshold discount, got %d", q.ThresholdDiscount)
	}
	if q.Total != 21000 {
		t.Fatalf("expected total 21000, got %d", q.Total)
	}
}

func TestCouponAppliesLast(t *testing.T) {
	engine := Engine{Rules: testRules()}
	snap := snapshotOf(snapLine{wormID, "蚯蚓", 2000, 13})

	q := engine.Quote(snap, Options{ApplyCoupon: true, CouponAmount: 500})
	if q.CouponSavings != 500 {
		t.Fatalf("expected coupon savings 500, got %d", q.CouponSavings)
	}
	if q.Total != 23500 {
		t.Fatalf("expected total 23500, got %d", q.Total)
	}
	if !strings.Contains(q.Narrative(), "Coupon Savings: -$5.00\n") {
		t.Fatalf("narrative missing coupon line:\n%s", q.Narrative())
	}
}

func TestQuoteEmptyCart(t *testing.T) {
	engine := Engine{Rules: testRules()}
	q := engine.Quote(cart.Snapshot{}, Options{ApplyCoupon: true, CouponAmount: 500})
	if !q.Empty {
		t.Fatal("expected empty quote")
	}
	if q.Narrative() != "Your cart is empty." {
		t.Fatalf("unexpected narrative: %s", q.Narrative())
	}
	if q.DiscountSummary() != "None" {
		t.Fatalf("unexpected summary: %s", q.DiscountSummary())
	}
}

func TestDiscountSummary(t *testing.T) {
	engine := Engine{Rules: testRules()}
	snap := snapshotOf(
		snapLine{beltID, "布帶", 3000, 1},
		snapLine{bagID, "布袋", 5000, 1},
		snapLine{wormID, "蚯蚓", 2000, 10},
	)

	q := engine.Quote(snap, Options{ApplyCoupon: true, CouponAmount: 500})
	want := "Applied package '一袋一布帶' 1 time(s): -$10.00; " +
		"Fixed Discount: -$20.00; " +
		"Coupon Discount: -$5.00"
	if got := q.DiscountSummary(); got != want {
		t.Fatalf("summary mismatch:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[Money]string{
		0:      "$0.00",
		5:      "$0.05",
		10050:  "$100.50",
		-1000:  "-$10.00",
		123456: "$1234.56",
	}
	for input, want := range cases {
		if got := FormatMoney(input); got != want {
			t.Fatalf("FormatMoney(%d) = %s, want %s", input, got, want)
		}
	}
}

func uuidMust(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		panic(err)
	}
	return id
}
