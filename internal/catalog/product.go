package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product describes a priced, stock-limited item sold at the till.
// Price is stored in minor currency units. Stock acts as a cart-admission
// ceiling; checkout never decrements it.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int32     `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}
