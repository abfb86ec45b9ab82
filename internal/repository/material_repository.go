package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
)

type materialRepository struct {
	db *sqlx.DB
}

func NewMaterialRepository(db *sqlx.DB) MaterialRepository {
	return &materialRepository{db: db}
}

// materialRow flattens the materials / material_types / genres join.
type materialRow struct {
	ID                    uuid.UUID  `db:"id"`
	Name                  string     `db:"name"`
	MaterialTypeID        uuid.UUID  `db:"material_type_id"`
	GenreID               uuid.UUID  `db:"genre_id"`
	OutOfCirculationSince *time.Time `db:"out_of_circulation_since"`
	MaterialTypeName      string     `db:"material_type_name"`
	CheckoutDays          int        `db:"checkout_days"`
	GenreName             string     `db:"genre_name"`
}

func (r materialRow) toDomain() *domain.Material {
	return &domain.Material{
		ID:                    r.ID,
		Name:                  r.Name,
		MaterialTypeID:        r.MaterialTypeID,
		GenreID:               r.GenreID,
		OutOfCirculationSince: r.OutOfCirculationSince,
		MaterialType: &domain.MaterialType{
			ID:           r.MaterialTypeID,
			Name:         r.MaterialTypeName,
			CheckoutDays: r.CheckoutDays,
		},
		Genre: &domain.Genre{
			ID:   r.GenreID,
			Name: r.GenreName,
		},
	}
}

const materialJoinQuery = `
	SELECT m.id, m.name, m.material_type_id, m.genre_id, m.out_of_circulation_since,
	       mt.name AS material_type_name, mt.checkout_days,
	       g.name AS genre_name
	FROM materials m
	JOIN material_types mt ON mt.id = m.material_type_id
	JOIN genres g ON g.id = m.genre_id
`

func (r *materialRepository) Create(ctx context.Context, material *domain.Material) error {
	query := `
		INSERT INTO materials (id, name, material_type_id, genre_id, out_of_circulation_since)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		material.ID,
		material.Name,
		material.MaterialTypeID,
		material.GenreID,
		material.OutOfCirculationSince,
	)

	return err
}

func (r *materialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	query := materialJoinQuery + `WHERE m.id = $1`

	var row materialRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	material := row.toDomain()

	checkouts, err := r.checkoutsForMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	material.Checkouts = checkouts

	return material, nil
}

// checkoutRow flattens the checkouts / patrons join for one material's
// history. The material back-reference stays unloaded so the assembled
// graph is a tree.
type materialCheckoutRow struct {
	ID           uuid.UUID  `db:"id"`
	MaterialID   uuid.UUID  `db:"material_id"`
	PatronID     uuid.UUID  `db:"patron_id"`
	CheckoutDate time.Time  `db:"checkout_date"`
	ReturnDate   *time.Time `db:"return_date"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Address      string     `db:"address"`
	Email        string     `db:"email"`
	IsActive     bool       `db:"is_active"`
}

func (r *materialRepository) checkoutsForMaterial(ctx context.Context, materialID uuid.UUID) ([]*domain.Checkout, error) {
	query := `
		SELECT c.id, c.material_id, c.patron_id, c.checkout_date, c.return_date,
		       p.first_name, p.last_name, p.address, p.email, p.is_active
		FROM checkouts c
		JOIN patrons p ON p.id = c.patron_id
		WHERE c.material_id = $1
		ORDER BY c.checkout_date
	`

	var rows []materialCheckoutRow
	if err := r.db.SelectContext(ctx, &rows, query, materialID); err != nil {
		return nil, err
	}

	checkouts := make([]*domain.Checkout, 0, len(rows))
	for _, row := range rows {
		checkouts = append(checkouts, &domain.Checkout{
			ID:           row.ID,
			MaterialID:   row.MaterialID,
			PatronID:     row.PatronID,
			CheckoutDate: row.CheckoutDate,
			ReturnDate:   row.ReturnDate,
			Patron: &domain.Patron{
				ID:        row.PatronID,
				FirstName: row.FirstName,
				LastName:  row.LastName,
				Address:   row.Address,
				Email:     row.Email,
				IsActive:  row.IsActive,
			},
		})
	}

	return checkouts, nil
}

func (r *materialRepository) ListCirculating(ctx context.Context, filter domain.MaterialFilter) ([]*domain.Material, error) {
	query := materialJoinQuery + `WHERE m.out_of_circulation_since IS NULL`
	args := []interface{}{}

	if filter.MaterialTypeID != nil {
		args = append(args, *filter.MaterialTypeID)
		query += fmt.Sprintf(" AND m.material_type_id = $%d", len(args))
	}

	if filter.GenreID != nil {
		args = append(args, *filter.GenreID)
		query += fmt.Sprintf(" AND m.genre_id = $%d", len(args))
	}

	query += " ORDER BY m.name"

	var rows []materialRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	materials := make([]*domain.Material, 0, len(rows))
	for _, row := range rows {
		materials = append(materials, row.toDomain())
	}

	return materials, nil
}

func (r *materialRepository) Retire(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE materials
		SET out_of_circulation_since = $2
		WHERE id = $1
		RETURNING id
	`

	var retired uuid.UUID
	return r.db.GetContext(ctx, &retired, query, id, at)
}

func (r *materialRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM materials WHERE id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id)
	return exists, err
}
