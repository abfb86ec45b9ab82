package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaterialType is immutable reference data describing how long a kind of
// material may stay checked out.
type MaterialType struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CheckoutDays int       `json:"checkout_days" db:"checkout_days"`
}

// Genre is immutable reference data.
type Genre struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Material represents a circulating item in the collection.
// Materials are never hard-deleted; retiring one sets
// OutOfCirculationSince, and listings exclude retired rows.
//
// MaterialType, Genre and Checkouts are populated only by explicit
// repository loads. Checkouts loaded under a material carry their patron
// but never a back-reference to the material, so the graph serializes as
// a tree.
type Material struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Name                  string     `json:"name" db:"name"`
	MaterialTypeID        uuid.UUID  `json:"material_type_id" db:"material_type_id"`
	GenreID               uuid.UUID  `json:"genre_id" db:"genre_id"`
	OutOfCirculationSince *time.Time `json:"out_of_circulation_since,omitempty" db:"out_of_circulation_since"`

	MaterialType *MaterialType `json:"material_type,omitempty" db:"-"`
	Genre        *Genre        `json:"genre,omitempty" db:"-"`
	Checkouts    []*Checkout   `json:"checkouts,omitempty" db:"-"`
}

// Circulating reports whether the material is available for checkout.
func (m *Material) Circulating() bool {
	return m.OutOfCirculationSince == nil
}

// DTOs for requests

type CreateMaterialRequest struct {
	Name           string    `json:"name" validate:"required"`
	MaterialTypeID uuid.UUID `json:"material_type_id" validate:"required"`
	GenreID        uuid.UUID `json:"genre_id" validate:"required"`
}

// MaterialFilter narrows a circulating-materials listing. Both criteria
// are optional; when both are set they are AND-combined.
type MaterialFilter struct {
	MaterialTypeID *uuid.UUID
	GenreID        *uuid.UUID
}
