package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
)

type patronRepository struct {
	db *sqlx.DB
}

func NewPatronRepository(db *sqlx.DB) PatronRepository {
	return &patronRepository{db: db}
}

func (r *patronRepository) List(ctx context.Context) ([]*domain.Patron, error) {
	query := `
		SELECT id, first_name, last_name, address, email, is_active
		FROM patrons
		ORDER BY last_name, first_name
	`

	var patrons []*domain.Patron
	if err := r.db.SelectContext(ctx, &patrons, query); err != nil {
		return nil, err
	}

	return patrons, nil
}

func (r *patronRepository) getByID(ctx context.Context, id uuid.UUID) (*domain.Patron, error) {
	query := `
		SELECT id, first_name, last_name, address, email, is_active
		FROM patrons
		WHERE id = $1
	`

	var patron domain.Patron
	if err := r.db.GetContext(ctx, &patron, query, id); err != nil {
		return nil, err
	}

	return &patron, nil
}

// patronCheckoutRow flattens a patron's checkouts joined with their
// materials and material types, the graph late-fee math needs. The
// patron back-reference stays unloaded.
type patronCheckoutRow struct {
	ID                    uuid.UUID  `db:"id"`
	MaterialID            uuid.UUID  `db:"material_id"`
	PatronID              uuid.UUID  `db:"patron_id"`
	CheckoutDate          time.Time  `db:"checkout_date"`
	ReturnDate            *time.Time `db:"return_date"`
	MaterialName          string     `db:"material_name"`
	MaterialTypeID        uuid.UUID  `db:"material_type_id"`
	GenreID               uuid.UUID  `db:"genre_id"`
	OutOfCirculationSince *time.Time `db:"out_of_circulation_since"`
	MaterialTypeName      string     `db:"material_type_name"`
	CheckoutDays          int        `db:"checkout_days"`
}

func (r patronCheckoutRow) toDomain() *domain.Checkout {
	return &domain.Checkout{
		ID:           r.ID,
		MaterialID:   r.MaterialID,
		PatronID:     r.PatronID,
		CheckoutDate: r.CheckoutDate,
		ReturnDate:   r.ReturnDate,
		Material: &domain.Material{
			ID:                    r.MaterialID,
			Name:                  r.MaterialName,
			MaterialTypeID:        r.MaterialTypeID,
			GenreID:               r.GenreID,
			OutOfCirculationSince: r.OutOfCirculationSince,
			MaterialType: &domain.MaterialType{
				ID:           r.MaterialTypeID,
				Name:         r.MaterialTypeName,
				CheckoutDays: r.CheckoutDays,
			},
		},
	}
}

func (r *patronRepository) GetByIDWithCheckouts(ctx context.Context, id uuid.UUID) (*domain.Patron, error) {
	patron, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT c.id, c.material_id, c.patron_id, c.checkout_date, c.return_date,
		       m.name AS material_name, m.material_type_id, m.genre_id, m.out_of_circulation_since,
		       mt.name AS material_type_name, mt.checkout_days
		FROM checkouts c
		JOIN materials m ON m.id = c.material_id
		JOIN material_types mt ON mt.id = m.material_type_id
		WHERE c.patron_id = $1
		ORDER BY c.checkout_date
	`

	var rows []patronCheckoutRow
	if err := r.db.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, err
	}

	// Non-nil even when empty: a loaded-but-empty collection means a
	// zero balance, not an unknown one.
	checkouts := make([]*domain.Checkout, 0, len(rows))
	for _, row := range rows {
		checkouts = append(checkouts, row.toDomain())
	}
	patron.Checkouts = checkouts

	return patron, nil
}

func (r *patronRepository) UpdateContact(ctx context.Context, id uuid.UUID, address, email string) error {
	query := `
		UPDATE patrons
		SET address = $2, email = $3
		WHERE id = $1
		RETURNING id
	`

	var updated uuid.UUID
	return r.db.GetContext(ctx, &updated, query, id, address, email)
}

func (r *patronRepository) ToggleActive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE patrons
		SET is_active = NOT is_active
		WHERE id = $1
		RETURNING id
	`

	var toggled uuid.UUID
	return r.db.GetContext(ctx, &toggled, query, id)
}

func (r *patronRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM patrons WHERE id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id)
	return exists, err
}
