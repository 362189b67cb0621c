package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue entry that can be ordered. A zero price means "price on request".
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
