package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/john-courter-lu/LoncotesLibrary/internal/config"
	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
	"github.com/john-courter-lu/LoncotesLibrary/internal/mocks"
	customError "github.com/john-courter-lu/LoncotesLibrary/pkg/errors"
)

type serviceMocks struct {
	materialRepo  *mocks.MockMaterialRepository
	referenceRepo *mocks.MockReferenceRepository
	patronRepo    *mocks.MockPatronRepository
	checkoutRepo  *mocks.MockCheckoutRepository
	cache         *mocks.MockCache
}

func newTestService() (*LibraryService, *serviceMocks) {
	m := &serviceMocks{
		materialRepo:  &mocks.MockMaterialRepository{},
		referenceRepo: &mocks.MockReferenceRepository{},
		patronRepo:    &mocks.MockPatronRepository{},
		checkoutRepo:  &mocks.MockCheckoutRepository{},
		cache:         &mocks.MockCache{},
	}

	cfg := &config.Config{
		Business: config.BusinessConfig{
			LateFeePerDay:     "0.50",
			ReferenceCacheTTL: "1h",
		},
	}

	return NewLibraryService(m.materialRepo, m.referenceRepo, m.patronRepo, m.checkoutRepo, m.cache, cfg), m
}

func TestListCirculatingMaterials_Success(t *testing.T) {
	svc, m := newTestService()

	typeID := uuid.New()
	filter := domain.MaterialFilter{MaterialTypeID: &typeID}
	listed := []*domain.Material{
		{ID: uuid.New(), Name: "Dune", MaterialTypeID: typeID},
	}

	m.materialRepo.On("ListCirculating", mock.Anything, filter).Return(listed, nil)

	materials, err := svc.ListCirculatingMaterials(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, listed, materials)
	m.materialRepo.AssertExpectations(t)
}

func TestListCirculatingMaterials_EmptyResultIsNotFound(t *testing.T) {
	svc, m := newTestService()

	m.materialRepo.On("ListCirculating", mock.Anything, mock.Anything).
		Return([]*domain.Material{}, nil)

	materials, err := svc.ListCirculatingMaterials(context.Background(), domain.MaterialFilter{})

	assert.Nil(t, materials)
	assert.True(t, customError.IsNotFound(err))
}

func TestGetMaterial_AssessesFeesAgainstOwnType(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	checkoutDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	lateReturn := checkoutDate.AddDate(0, 0, 20)

	material := &domain.Material{
		ID:           id,
		Name:         "Dune",
		MaterialType: &domain.MaterialType{Name: "Book", CheckoutDays: 14},
		Genre:        &domain.Genre{Name: "Fiction"},
		Checkouts: []*domain.Checkout{
			{ID: uuid.New(), CheckoutDate: checkoutDate, ReturnDate: &lateReturn},
			{ID: uuid.New(), CheckoutDate: checkoutDate},
		},
	}

	m.materialRepo.On("GetByID", mock.Anything, id).Return(material, nil)

	got, err := svc.GetMaterial(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, got.Checkouts[0].LateFee)
	assert.True(t, got.Checkouts[0].LateFee.Equal(decimal.RequireFromString("3.00")))
	assert.False(t, got.Checkouts[0].Paid)
	assert.Nil(t, got.Checkouts[1].LateFee)
	assert.True(t, got.Checkouts[1].Paid)
}

func TestGetMaterial_NotFound(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	m.materialRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := svc.GetMaterial(context.Background(), id)

	assert.True(t, customError.IsNotFound(err))
}

func TestRetireMaterial_StampsRetirementTime(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	before := time.Now()

	m.materialRepo.On("Retire", mock.Anything, id, mock.MatchedBy(func(at time.Time) bool {
		return !at.Before(before)
	})).Return(nil)

	err := svc.RetireMaterial(context.Background(), id)

	require.NoError(t, err)
	m.materialRepo.AssertExpectations(t)
}

func TestRetireMaterial_NotFound(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	m.materialRepo.On("Retire", mock.Anything, id, mock.Anything).Return(sql.ErrNoRows)

	err := svc.RetireMaterial(context.Background(), id)

	assert.True(t, customError.IsNotFound(err))
}

func TestGetPatron_AssessesBalance(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	checkoutDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bookType := &domain.MaterialType{Name: "Book", CheckoutDays: 14}

	lateReturn := checkoutDate.AddDate(0, 0, 20)
	onTimeReturn := checkoutDate.AddDate(0, 0, 10)

	patron := &domain.Patron{
		ID:        id,
		FirstName: "Nora",
		LastName:  "Thompson",
		Checkouts: []*domain.Checkout{
			{
				CheckoutDate: checkoutDate,
				ReturnDate:   &lateReturn,
				Material:     &domain.Material{Name: "Dune", MaterialType: bookType},
			},
			{
				CheckoutDate: checkoutDate,
				ReturnDate:   &onTimeReturn,
				Material:     &domain.Material{Name: "Persuasion", MaterialType: bookType},
			},
		},
	}

	m.patronRepo.On("GetByIDWithCheckouts", mock.Anything, id).Return(patron, nil)

	got, err := svc.GetPatron(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, got.Balance)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("3.00")),
		"Expected 3.00, but got %v", got.Balance)
}

func TestGetPatron_NotFound(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	m.patronRepo.On("GetByIDWithCheckouts", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := svc.GetPatron(context.Background(), id)

	assert.True(t, customError.IsNotFound(err))
}

func TestUpdatePatronContact_IDMismatch(t *testing.T) {
	svc, m := newTestService()

	pathID := uuid.New()
	request := &domain.UpdatePatronRequest{
		ID:      uuid.New(),
		Address: "1 New Street",
		Email:   "new@example.com",
	}

	err := svc.UpdatePatronContact(context.Background(), pathID, request)

	assert.True(t, customError.IsValidation(err))
	m.patronRepo.AssertNotCalled(t, "UpdateContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePatronContact_WritesOnlyAddressAndEmail(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	request := &domain.UpdatePatronRequest{
		ID:      id,
		Address: "1 New Street",
		Email:   "new@example.com",
	}

	m.patronRepo.On("UpdateContact", mock.Anything, id, "1 New Street", "new@example.com").Return(nil)

	err := svc.UpdatePatronContact(context.Background(), id, request)

	require.NoError(t, err)
	m.patronRepo.AssertExpectations(t)
}

func TestUpdatePatronContact_NotFound(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	request := &domain.UpdatePatronRequest{ID: id, Address: "1 New Street", Email: "new@example.com"}

	m.patronRepo.On("UpdateContact", mock.Anything, id, mock.Anything, mock.Anything).Return(sql.ErrNoRows)

	err := svc.UpdatePatronContact(context.Background(), id, request)

	assert.True(t, customError.IsNotFound(err))
}

func TestTogglePatronActive(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	m.patronRepo.On("ToggleActive", mock.Anything, id).Return(nil)

	require.NoError(t, svc.TogglePatronActive(context.Background(), id))
	m.patronRepo.AssertExpectations(t)
}

func TestTogglePatronActive_NotFound(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	m.patronRepo.On("ToggleActive", mock.Anything, id).Return(sql.ErrNoRows)

	err := svc.TogglePatronActive(context.Background(), id)

	assert.True(t, customError.IsNotFound(err))
}

func TestCreateCheckout_Success(t *testing.T) {
	svc, m := newTestService()

	request := &domain.CreateCheckoutRequest{MaterialID: uuid.New(), PatronID: uuid.New()}

	m.materialRepo.On("Exists", mock.Anything, request.MaterialID).Return(true, nil)
	m.patronRepo.On("Exists", mock.Anything, request.PatronID).Return(true, nil)
	m.checkoutRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Checkout) bool {
		return c.MaterialID == request.MaterialID &&
			c.PatronID == request.PatronID &&
			c.ReturnDate == nil
	})).Return(nil)

	checkout, err := svc.CreateCheckout(context.Background(), request)

	require.NoError(t, err)
	assert.Nil(t, checkout.ReturnDate)
	assert.True(t, checkout.Paid)
	m.checkoutRepo.AssertExpectations(t)
}

func TestCreateCheckout_MissingMaterialIsValidation(t *testing.T) {
	svc, m := newTestService()

	request := &domain.CreateCheckoutRequest{MaterialID: uuid.New(), PatronID: uuid.New()}

	m.materialRepo.On("Exists", mock.Anything, request.MaterialID).Return(false, nil)
	m.patronRepo.On("Exists", mock.Anything, request.PatronID).Return(true, nil)

	checkout, err := svc.CreateCheckout(context.Background(), request)

	assert.Nil(t, checkout)
	assert.True(t, customError.IsValidation(err))
	m.checkoutRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReturnCheckout_Success(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	open := &domain.Checkout{ID: id, CheckoutDate: time.Now().AddDate(0, 0, -7)}

	m.checkoutRepo.On("GetByID", mock.Anything, id).Return(open, nil)
	m.checkoutRepo.On("SetReturned", mock.Anything, id, mock.Anything).Return(nil)

	require.NoError(t, svc.ReturnCheckout(context.Background(), id))
	m.checkoutRepo.AssertExpectations(t)
}

func TestReturnCheckout_AlreadyReturned(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	returnedAt := time.Now().AddDate(0, 0, -1)
	closed := &domain.Checkout{ID: id, ReturnDate: &returnedAt}

	m.checkoutRepo.On("GetByID", mock.Anything, id).Return(closed, nil)

	err := svc.ReturnCheckout(context.Background(), id)

	assert.True(t, customError.IsValidation(err))
	m.checkoutRepo.AssertNotCalled(t, "SetReturned", mock.Anything, mock.Anything, mock.Anything)
}

func TestReturnCheckout_NotFound(t *testing.T) {
	svc, m := newTestService()

	id := uuid.New()
	m.checkoutRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	err := svc.ReturnCheckout(context.Background(), id)

	assert.True(t, customError.IsNotFound(err))
}

func TestListMaterialTypes_ServedFromCache(t *testing.T) {
	svc, m := newTestService()

	types := []*domain.MaterialType{{ID: uuid.New(), Name: "Book", CheckoutDays: 14}}
	encoded, err := json.Marshal(types)
	require.NoError(t, err)

	m.cache.On("Get", mock.Anything, "reference:materialtypes").Return(string(encoded), nil)

	got, err := svc.ListMaterialTypes(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Book", got[0].Name)
	m.referenceRepo.AssertNotCalled(t, "ListMaterialTypes", mock.Anything)
}

func TestListMaterialTypes_CacheMissFallsBackAndFills(t *testing.T) {
	svc, m := newTestService()

	types := []*domain.MaterialType{{ID: uuid.New(), Name: "CD", CheckoutDays: 7}}

	m.cache.On("Get", mock.Anything, "reference:materialtypes").Return("", ErrCacheMiss)
	m.referenceRepo.On("ListMaterialTypes", mock.Anything).Return(types, nil)
	m.cache.On("Set", mock.Anything, "reference:materialtypes", mock.Anything, time.Hour).Return(nil)

	got, err := svc.ListMaterialTypes(context.Background())

	require.NoError(t, err)
	assert.Equal(t, types, got)
	m.cache.AssertExpectations(t)
}

func TestListGenres_CacheFaultFallsBack(t *testing.T) {
	svc, m := newTestService()

	genres := []*domain.Genre{{ID: uuid.New(), Name: "Fiction"}}

	m.cache.On("Get", mock.Anything, "reference:genres").Return("", errors.New("connection refused"))
	m.referenceRepo.On("ListGenres", mock.Anything).Return(genres, nil)
	m.cache.On("Set", mock.Anything, "reference:genres", mock.Anything, mock.Anything).Return(nil)

	got, err := svc.ListGenres(context.Background())

	require.NoError(t, err)
	assert.Equal(t, genres, got)
}
