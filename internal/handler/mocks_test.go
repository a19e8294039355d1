package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tradepost/internal/models"
	"tradepost/internal/service"
)

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, principal models.Principal, payload []byte) (*models.Listing, error) {
	args := m.Called(ctx, principal, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Get(ctx context.Context, listingID string) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) List(ctx context.Context, offset, limit int) ([]models.Listing, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) Search(ctx context.Context, filter models.SearchFilter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, principal models.Principal, listingID string, payload []byte) (*models.Listing, error) {
	args := m.Called(ctx, principal, listingID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, principal models.Principal, listingID string) error {
	args := m.Called(ctx, principal, listingID)
	return args.Error(0)
}

func (m *MockListingService) UploadImages(ctx context.Context, principal models.Principal, listingID string, files []service.UploadFile) ([]string, error) {
	args := m.Called(ctx, principal, listingID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, payload []byte) (*models.User, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, payload []byte) (*models.User, string, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) GenerateToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (models.Principal, error) {
	args := m.Called(tokenString)
	return args.Get(0).(models.Principal), args.Error(1)
}
