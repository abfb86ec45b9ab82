package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
)

type checkoutRepository struct {
	db *sqlx.DB
}

func NewCheckoutRepository(db *sqlx.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(ctx context.Context, checkout *domain.Checkout) error {
	query := `
		INSERT INTO checkouts (id, material_id, patron_id, checkout_date, return_date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		checkout.ID,
		checkout.MaterialID,
		checkout.PatronID,
		checkout.CheckoutDate,
		checkout.ReturnDate,
	)

	return err
}

func (r *checkoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Checkout, error) {
	query := `
		SELECT id, material_id, patron_id, checkout_date, return_date
		FROM checkouts
		WHERE id = $1
	`

	var checkout domain.Checkout
	if err := r.db.GetContext(ctx, &checkout, query, id); err != nil {
		return nil, err
	}

	return &checkout, nil
}

// fullCheckoutRow flattens a checkout joined with its material, the
// material's type, and its patron.
type fullCheckoutRow struct {
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
	FirstName             string     `db:"first_name"`
	LastName              string     `db:"last_name"`
	Address               string     `db:"address"`
	Email                 string     `db:"email"`
	IsActive              bool       `db:"is_active"`
}

func (r fullCheckoutRow) toDomain() *domain.Checkout {
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
		Patron: &domain.Patron{
			ID:        r.PatronID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Address:   r.Address,
			Email:     r.Email,
			IsActive:  r.IsActive,
		},
	}
}

const fullCheckoutQuery = `
	SELECT c.id, c.material_id, c.patron_id, c.checkout_date, c.return_date,
	       m.name AS material_name, m.material_type_id, m.genre_id, m.out_of_circulation_since,
	       mt.name AS material_type_name, mt.checkout_days,
	       p.first_name, p.last_name, p.address, p.email, p.is_active
	FROM checkouts c
	JOIN materials m ON m.id = c.material_id
	JOIN material_types mt ON mt.id = m.material_type_id
	JOIN patrons p ON p.id = c.patron_id
`

func (r *checkoutRepository) List(ctx context.Context) ([]*domain.Checkout, error) {
	query := fullCheckoutQuery + `ORDER BY c.checkout_date DESC`

	var rows []fullCheckoutRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	checkouts := make([]*domain.Checkout, 0, len(rows))
	for _, row := range rows {
		checkouts = append(checkouts, row.toDomain())
	}

	return checkouts, nil
}

func (r *checkoutRepository) ListOverdue(ctx context.Context, now time.Time) ([]*domain.Checkout, error) {
	query := fullCheckoutQuery + `
		WHERE c.return_date IS NULL
		  AND c.checkout_date + make_interval(days => mt.checkout_days) < $1
		ORDER BY c.checkout_date
	`

	var rows []fullCheckoutRow
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, err
	}

	checkouts := make([]*domain.Checkout, 0, len(rows))
	for _, row := range rows {
		checkouts = append(checkouts, row.toDomain())
	}

	return checkouts, nil
}

func (r *checkoutRepository) SetReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	query := `
		UPDATE checkouts
		SET return_date = $2
		WHERE id = $1 AND return_date IS NULL
		RETURNING id
	`

	var returned uuid.UUID
	return r.db.GetContext(ctx, &returned, query, id, returnedAt)
}
