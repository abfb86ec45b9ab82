package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
)

type referenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListMaterialTypes(ctx context.Context) ([]*domain.MaterialType, error) {
	query := `
		SELECT id, name, checkout_days
		FROM material_types
		ORDER BY name
	`

	var types []*domain.MaterialType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *referenceRepository) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	query := `
		SELECT id, name
		FROM genres
		ORDER BY name
	`

	var genres []*domain.Genre
	if err := r.db.SelectContext(ctx, &genres, query); err != nil {
		return nil, err
	}

	return genres, nil
}
