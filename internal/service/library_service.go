package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/john-courter-lu/LoncotesLibrary/internal/config"
	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
	"github.com/john-courter-lu/LoncotesLibrary/internal/repository"
	customError "github.com/john-courter-lu/LoncotesLibrary/pkg/errors"
	"github.com/john-courter-lu/LoncotesLibrary/pkg/utils"
)

const (
	cacheKeyMaterialTypes = "reference:materialtypes"
	cacheKeyGenres        = "reference:genres"
)

// pq error class 23: integrity constraint violation
const pqForeignKeyViolation = "23503"

type LibraryService struct {
	materialRepo  repository.MaterialRepository
	referenceRepo repository.ReferenceRepository
	patronRepo    repository.PatronRepository
	checkoutRepo  repository.CheckoutRepository
	cache         Cache
	config        *config.Config
}

func NewLibraryService(
	materialRepo repository.MaterialRepository,
	referenceRepo repository.ReferenceRepository,
	patronRepo repository.PatronRepository,
	checkoutRepo repository.CheckoutRepository,
	cache Cache,
	config *config.Config,
) *LibraryService {
	return &LibraryService{
		materialRepo:  materialRepo,
		referenceRepo: referenceRepo,
		patronRepo:    patronRepo,
		checkoutRepo:  checkoutRepo,
		cache:         cache,
		config:        config,
	}
}

// ListCirculatingMaterials returns all non-retired materials, narrowed by
// the optional type and genre criteria. An empty result is surfaced as a
// not-found error rather than an empty list.
func (s *LibraryService) ListCirculatingMaterials(ctx context.Context, filter domain.MaterialFilter) ([]*domain.Material, error) {
	materials, err := s.materialRepo.ListCirculating(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(materials) == 0 {
		return nil, customError.WrapNoMaterialsMatch()
	}

	return materials, nil
}

// GetMaterial returns one material with its reference entities and full
// checkout history, fees assessed on every returned-late checkout.
func (s *LibraryService) GetMaterial(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMaterialNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	// Checkouts under a material carry no material back-reference, so
	// fees are computed against the parent's checkout period directly.
	rate := s.config.GetLateFeePerDay()
	for _, checkout := range material.Checkouts {
		checkout.LateFee = utils.CalculateLateFee(checkout.CheckoutDate, checkout.ReturnDate, material.MaterialType.CheckoutDays, rate)
		checkout.Paid = checkout.LateFee == nil
	}

	return material, nil
}

// CreateMaterial adds a new circulating material to the collection.
func (s *LibraryService) CreateMaterial(ctx context.Context, request *domain.CreateMaterialRequest) (*domain.Material, error) {
	material := &domain.Material{
		ID:             uuid.New(),
		Name:           request.Name,
		MaterialTypeID: request.MaterialTypeID,
		GenreID:        request.GenreID,
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		if isForeignKeyViolation(err) {
			return nil, customError.WrapInvalidReference(err)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return material, nil
}

// RetireMaterial soft-deletes a material by stamping the retirement time.
// Listings exclude it from then on; the row itself stays. Retiring an
// already-retired material overwrites the stamp rather than failing.
func (s *LibraryService) RetireMaterial(ctx context.Context, id uuid.UUID) error {
	if err := s.materialRepo.Retire(ctx, id, time.Now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapMaterialNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// ListMaterialTypes returns the material-type reference data, served from
// Redis when possible. Cache faults fall back to the database.
func (s *LibraryService) ListMaterialTypes(ctx context.Context) ([]*domain.MaterialType, error) {
	var types []*domain.MaterialType
	if s.cacheGet(ctx, cacheKeyMaterialTypes, &types) {
		return types, nil
	}

	types, err := s.referenceRepo.ListMaterialTypes(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.cacheSet(ctx, cacheKeyMaterialTypes, types)
	return types, nil
}

// ListGenres returns the genre reference data, served from Redis when
// possible. Cache faults fall back to the database.
func (s *LibraryService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	var genres []*domain.Genre
	if s.cacheGet(ctx, cacheKeyGenres, &genres) {
		return genres, nil
	}

	genres, err := s.referenceRepo.ListGenres(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.cacheSet(ctx, cacheKeyGenres, genres)
	return genres, nil
}

// ListPatrons returns all patrons. Checkout collections are not loaded,
// so every balance stays unknown rather than a misleading zero.
func (s *LibraryService) ListPatrons(ctx context.Context) ([]*domain.Patron, error) {
	patrons, err := s.patronRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return patrons, nil
}

// GetPatron returns one patron with checkout history and the outstanding
// late-fee balance.
func (s *LibraryService) GetPatron(ctx context.Context, id uuid.UUID) (*domain.Patron, error) {
	patron, err := s.patronRepo.GetByIDWithCheckouts(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPatronNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := patron.AssessBalance(s.config.GetLateFeePerDay()); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return patron, nil
}

// UpdatePatronContact overwrites a patron's address and email. The body
// id must match the path id; every other field the client may have sent
// is ignored.
func (s *LibraryService) UpdatePatronContact(ctx context.Context, id uuid.UUID, request *domain.UpdatePatronRequest) error {
	if request.ID != id {
		return customError.WrapIDMismatch(request.ID.String(), id.String())
	}

	if err := s.patronRepo.UpdateContact(ctx, id, request.Address, request.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapPatronNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// TogglePatronActive flips the patron's active flag. The new state is
// always the negation of the stored one; no client-supplied value is
// accepted.
func (s *LibraryService) TogglePatronActive(ctx context.Context, id uuid.UUID) error {
	if err := s.patronRepo.ToggleActive(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapPatronNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// CreateCheckout opens a checkout dated now with no return date. Both
// referenced entities must exist; a broken reference is a validation
// fault, deliberately without distinguishing which side was missing.
func (s *LibraryService) CreateCheckout(ctx context.Context, request *domain.CreateCheckoutRequest) (*domain.Checkout, error) {
	materialExists, err := s.materialRepo.Exists(ctx, request.MaterialID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	patronExists, err := s.patronRepo.Exists(ctx, request.PatronID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if !materialExists || !patronExists {
		return nil, customError.WrapInvalidReference(customError.ErrInvalidReference)
	}

	checkout := &domain.Checkout{
		ID:           uuid.New(),
		MaterialID:   request.MaterialID,
		PatronID:     request.PatronID,
		CheckoutDate: time.Now(),
		Paid:         true,
	}

	if err := s.checkoutRepo.Create(ctx, checkout); err != nil {
		// A referent deleted between the existence check and the
		// insert still surfaces as a validation fault.
		if isForeignKeyViolation(err) {
			return nil, customError.WrapInvalidReference(err)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return checkout, nil
}

// ListCheckouts returns every checkout with material, patron, and fees.
func (s *LibraryService) ListCheckouts(ctx context.Context) ([]*domain.Checkout, error) {
	checkouts, err := s.checkoutRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.assessFees(checkouts); err != nil {
		return nil, err
	}

	return checkouts, nil
}

// ReturnCheckout closes an open checkout by stamping the return date.
// A checkout is returned at most once.
func (s *LibraryService) ReturnCheckout(ctx context.Context, id uuid.UUID) error {
	checkout, err := s.checkoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapCheckoutNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	if checkout.ReturnDate != nil {
		return customError.WrapAlreadyReturned(id.String())
	}

	if err := s.checkoutRepo.SetReturned(ctx, id, time.Now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with another return of the same checkout.
			return customError.WrapAlreadyReturned(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// ListOverdueCheckouts returns open checkouts past their due date.
func (s *LibraryService) ListOverdueCheckouts(ctx context.Context) ([]*domain.Checkout, error) {
	checkouts, err := s.checkoutRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.assessFees(checkouts); err != nil {
		return nil, err
	}

	return checkouts, nil
}

func (s *LibraryService) assessFees(checkouts []*domain.Checkout) error {
	rate := s.config.GetLateFeePerDay()
	for _, checkout := range checkouts {
		if err := checkout.AssessFees(rate); err != nil {
			return customError.WrapDatabaseError(err)
		}
	}
	return nil
}

// cacheGet loads and unmarshals a cached value into target, reporting
// whether the cache could serve it. Faults are logged, never fatal.
func (s *LibraryService) cacheGet(ctx context.Context, key string, target interface{}) bool {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get %s: %v", key, customError.WrapCacheError(err))
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		log.Printf("cache decode %s: %v", key, err)
		return false
	}

	return true
}

func (s *LibraryService) cacheSet(ctx context.Context, key string, value interface{}) {
	encoded, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache encode %s: %v", key, err)
		return
	}

	if err := s.cache.Set(ctx, key, string(encoded), s.config.GetReferenceCacheTTL()); err != nil {
		log.Printf("cache set %s: %v", key, customError.WrapCacheError(err))
	}
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
