package cart

import (
	"github.com/google/uuid"
)

// Line is one cart entry. Name and Price are captured at the moment the
// product is first added; later catalog edits never reach an open line.
type Line struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Qty       int32     `json:"qty"`
}

// Cart holds lines in addition order. One operator owns a cart at a time.
type Cart struct {
	ID    string `json:"id"`
	lines []Line
	index map[uuid.UUID]int
}

// New returns an empty cart with the given identifier.
func New(id string) *Cart {
	return &Cart{ID: id, index: make(map[uuid.UUID]int)}
}

// Qty returns the quantity currently held for the product, zero if absent.
func (c *Cart) Qty(productID uuid.UUID) int32 {
	if i, ok := c.index[productID]; ok {
		return c.lines[i].Qty
	}
	return 0
}

// upsert creates or increments a line, capturing name/price on first add.
func (c *Cart) upsert(productID uuid.UUID, name string, price int64, qty int32) {
	if i, ok := c.index[productID]; ok {
		c.lines[i].Qty += qty
		return
	}
	c.index[productID] = len(c.lines)
	c.lines = append(c.lines, Line{ProductID: productID, Name: name, Price: price, Qty: qty})
}

// clear empties the cart.
func (c *Cart) clear() {
	c.lines = nil
	c.index = make(map[uuid.UUID]int)
}

// SnapshotLine is one rendered cart row used by pricing and receipts.
type SnapshotLine struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Qty       int32     `json:"qty"`
	Price     int64     `json:"price"`
	Subtotal  int64     `json:"subtotal"`
}

// Snapshot is an immutable view of a cart at one instant.
type Snapshot struct {
	Lines []SnapshotLine `json:"lines"`
	Total int64          `json:"total"`
}

// Empty reports whether the snapshot holds no lines. Since price >= 0 and
// qty > 0 always, an empty snapshot and a zero total coincide.
func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

func (c *Cart) snapshot() Snapshot {
	var snap Snapshot
	for _, line := range c.lines {
		subtotal := line.Price * int64(line.Qty)
		snap.Lines = append(snap.Lines, SnapshotLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Qty:       line.Qty,
			Price:     line.Price,
			Subtotal:  subtotal,
		})
		snap.Total += subtotal
	}
	return snap
}
