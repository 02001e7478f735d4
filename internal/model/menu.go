package model

import "time"

// Product is a menu item as stored in the 'products' table.  Price is kept
// in cents to avoid floating point drift.
type Product struct {
	ID         uint64    // products.id
	Name       string    // products.name (unique)
	Category   string    // products.category
	PriceCents int64     // products.price_cents
	Available  bool      // products.available
	CreatedAt  time.Time // products.created_at
	UpdatedAt  time.Time // products.updated_at
}

// Table statuses. Stored lowercase in restaurant_tables.status.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Table is a dining table ('restaurant_tables').
type Table struct {
	ID        uint64    // restaurant_tables.id
	Number    int       // restaurant_tables.number (unique)
	Capacity  int       // restaurant_tables.capacity
	Status    string    // restaurant_tables.status
	UpdatedAt time.Time // restaurant_tables.updated_at
}

// ValidTableStatus reports whether s is one of the known table statuses.
func ValidTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}
