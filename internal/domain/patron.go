package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Patron represents a library borrower. Patrons are seeded, never
// deleted; address and email are the only freely mutable fields, and
// IsActive is toggled rather than set.
//
// Checkouts is populated only when a repository load asks for it.
// Balance is a derived presentation field: nil means the checkout
// collection was not loaded ("unknown"), which callers must keep
// distinct from an explicit zero.
type Patron struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Address   string    `json:"address" db:"address"`
	Email     string    `json:"email" db:"email"`
	IsActive  bool      `json:"is_active" db:"is_active"`

	Checkouts []*Checkout `json:"checkouts,omitempty" db:"-"`

	Balance *decimal.Decimal `json:"balance,omitempty" db:"-"`
}

// AssessBalance totals the outstanding late fees across the patron's
// checkouts. Each checkout has its own fees assessed first, so the
// whole graph (checkout -> material -> material type) must be loaded.
// When Checkouts is nil the balance stays nil.
func (p *Patron) AssessBalance(ratePerDay decimal.Decimal) error {
	if p.Checkouts == nil {
		return nil
	}

	total := decimal.Zero
	for _, c := range p.Checkouts {
		if err := c.AssessFees(ratePerDay); err != nil {
			return err
		}
		if !c.Paid {
			total = total.Add(*c.LateFee)
		}
	}

	p.Balance = &total
	return nil
}

// DTOs for requests

// UpdatePatronRequest carries a contact-info update. Only address and
// email are ever written; anything else a client sends is ignored.
type UpdatePatronRequest struct {
	ID      uuid.UUID `json:"id" validate:"required"`
	Address string    `json:"address" validate:"required"`
	Email   string    `json:"email" validate:"required,email"`
}
