package receipt

import (
	"strings"
	"testing"
	"time"
)

func TestNewIDSameSecondUnique(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID(now)
		if !strings.HasPrefix(id, "20260314150926-") {
			t.Fatalf("unexpected id prefix: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id within one second: %s", id)
		}
		seen[id] = true
	}
}

func TestValidTender(t *testing.T) {
	for _, tender := range Tenders() {
		if !ValidTender(tender) {
			t.Fatalf("expected %q to be accepted", tender)
		}
	}
	for _, tender := range []string{"", "Barter", "cash", "paypal"} {
		if ValidTender(tender) {
			t.Fatalf("expected %q to be rejected", tender)
		}
	}
}

func TestValidTenderTrimsWhitespace(t *testing.T) {
	if !ValidTender(" Cash ") {
		t.Fatal("expected padded tender to be accepted")
	}
}

func TestTimezoneFallback(t *testing.T) {
	loc := Timezone("Not/AZone")
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset != 8*60*60 {
		t.Fatalf("expected UTC+8 fallback, got offset %d", offset)
	}
}
