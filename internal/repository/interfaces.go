package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
)

// Relation loading is explicit: each method documents exactly which parts
// of the entity graph it materializes. Callers that need fee or balance
// math must use the methods that load the full graph. Absent rows surface
// as sql.ErrNoRows.

// MaterialRepository defines the interface for material data operations
type MaterialRepository interface {
	// Create persists a new material
	Create(ctx context.Context, material *domain.Material) error

	// GetByID retrieves a material with its material type, genre, and
	// full checkout history (each checkout carrying its patron)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error)

	// ListCirculating retrieves non-retired materials matching the
	// filter, each with its material type and genre
	ListCirculating(ctx context.Context, filter domain.MaterialFilter) ([]*domain.Material, error)

	// Retire stamps out_of_circulation_since on the material
	Retire(ctx context.Context, id uuid.UUID, at time.Time) error

	// Exists reports whether a material row exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ReferenceRepository defines the interface for immutable lookup data
type ReferenceRepository interface {
	// ListMaterialTypes retrieves all material types
	ListMaterialTypes(ctx context.Context) ([]*domain.MaterialType, error)

	// ListGenres retrieves all genres
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
}

// PatronRepository defines the interface for patron data operations
type PatronRepository interface {
	// List retrieves all patrons without their checkout collections
	List(ctx context.Context) ([]*domain.Patron, error)

	// GetByIDWithCheckouts retrieves a patron with checkouts, each
	// checkout carrying its material and that material's type (the
	// graph balance math needs). A patron with no checkouts gets an
	// empty, non-nil collection.
	GetByIDWithCheckouts(ctx context.Context, id uuid.UUID) (*domain.Patron, error)

	// UpdateContact overwrites address and email only
	UpdateContact(ctx context.Context, id uuid.UUID, address, email string) error

	// ToggleActive flips is_active in a single statement
	ToggleActive(ctx context.Context, id uuid.UUID) error

	// Exists reports whether a patron row exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CheckoutRepository defines the interface for checkout data operations
type CheckoutRepository interface {
	// Create persists a new checkout
	Create(ctx context.Context, checkout *domain.Checkout) error

	// GetByID retrieves a bare checkout row
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Checkout, error)

	// List retrieves all checkouts, each carrying its material (with
	// type) and patron
	List(ctx context.Context) ([]*domain.Checkout, error)

	// ListOverdue retrieves open checkouts past their due date as of
	// now, with the same relations as List
	ListOverdue(ctx context.Context, now time.Time) ([]*domain.Checkout, error)

	// SetReturned stamps return_date on an open checkout
	SetReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error
}
