// Package mocks provides testify mocks for the repository interfaces
// and the service cache, shared by the service and handler tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
)

type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *MockMaterialRepository) ListCirculating(ctx context.Context, filter domain.MaterialFilter) ([]*domain.Material, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Material), args.Error(1)
}

func (m *MockMaterialRepository) Retire(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockMaterialRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ListMaterialTypes(ctx context.Context) ([]*domain.MaterialType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaterialType), args.Error(1)
}

func (m *MockReferenceRepository) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Genre), args.Error(1)
}

type MockPatronRepository struct {
	mock.Mock
}

func (m *MockPatronRepository) List(ctx context.Context) ([]*domain.Patron, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Patron), args.Error(1)
}

func (m *MockPatronRepository) GetByIDWithCheckouts(ctx context.Context, id uuid.UUID) (*domain.Patron, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patron), args.Error(1)
}

func (m *MockPatronRepository) UpdateContact(ctx context.Context, id uuid.UUID, address, email string) error {
	args := m.Called(ctx, id, address, email)
	return args.Error(0)
}

func (m *MockPatronRepository) ToggleActive(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPatronRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockCheckoutRepository struct {
	mock.Mock
}

func (m *MockCheckoutRepository) Create(ctx context.Context, checkout *domain.Checkout) error {
	args := m.Called(ctx, checkout)
	return args.Error(0)
}

func (m *MockCheckoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Checkout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) List(ctx context.Context) ([]*domain.Checkout, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) ListOverdue(ctx context.Context, now time.Time) ([]*domain.Checkout, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) SetReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	args := m.Called(ctx, id, returnedAt)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
