package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/john-courter-lu/LoncotesLibrary/pkg/errors"
	"github.com/john-courter-lu/LoncotesLibrary/pkg/utils"
)

// Checkout records one patron borrowing one material. It is created with
// ReturnDate nil and mutated exactly once, when the material comes back.
//
// LateFee and Paid are derived presentation fields, never persisted.
// They are filled in by AssessFees before serialization. LateFee is nil
// while the checkout is outstanding or when it came back on or before
// its due date; any later return carries a fee, zero within the first
// day past due. Paid mirrors that absence.
type Checkout struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	MaterialID   uuid.UUID  `json:"material_id" db:"material_id"`
	PatronID     uuid.UUID  `json:"patron_id" db:"patron_id"`
	CheckoutDate time.Time  `json:"checkout_date" db:"checkout_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty" db:"return_date"`

	Material *Material `json:"material,omitempty" db:"-"`
	Patron   *Patron   `json:"patron,omitempty" db:"-"`

	LateFee *decimal.Decimal `json:"late_fee,omitempty" db:"-"`
	Paid    bool             `json:"paid" db:"-"`
}

// AssessFees computes LateFee and Paid from the loaded entity graph.
// The material and its material type must already be loaded; calculators
// never trigger store round-trips, and an unloaded graph is an error
// rather than a silent zero fee.
func (c *Checkout) AssessFees(ratePerDay decimal.Decimal) error {
	if c.Material == nil || c.Material.MaterialType == nil {
		return customError.ErrRelationsNotLoaded
	}

	c.LateFee = utils.CalculateLateFee(c.CheckoutDate, c.ReturnDate, c.Material.MaterialType.CheckoutDays, ratePerDay)
	c.Paid = c.LateFee == nil
	return nil
}

// DTOs for requests

type CreateCheckoutRequest struct {
	MaterialID uuid.UUID `json:"material_id" validate:"required"`
	PatronID   uuid.UUID `json:"patron_id" validate:"required"`
}
