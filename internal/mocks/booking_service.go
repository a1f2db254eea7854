package mocks

import (
	"context"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateSession(ctx context.Context) (*models.SessionView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) GetSession(ctx context.Context, id uuid.UUID, sort models.SortMode) (*models.SessionView, error) {
	args := m.Called(ctx, id, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) SubmitSearch(ctx context.Context, id uuid.UUID, criteria models.SearchCriteria) (*models.SessionView, error) {
	args := m.Called(ctx, id, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) SelectItinerary(ctx context.Context, id uuid.UUID, itineraryID string) (*models.SessionView, error) {
	args := m.Called(ctx, id, itineraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) CloseModal(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) ProceedToPayment(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) UpdatePayment(ctx context.Context, id uuid.UUID, draft models.PaymentFormData) (*models.SessionView, error) {
	args := m.Called(ctx, id, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) SubmitPayment(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) GoBack(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) GoToSearch(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) StartOver(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) OpenAdminLogin(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) AdminLogin(ctx context.Context, id uuid.UUID, key string) (*models.SessionView, error) {
	args := m.Called(ctx, id, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockBookingService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingService) AllBookings(ctx context.Context, adminKey string, req models.GetBookingsRequest) (*models.AllBookingsResponse, error) {
	args := m.Called(ctx, adminKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AllBookingsResponse), args.Error(1)
}

func (m *MockBookingService) BookingByReference(ctx context.Context, adminKey, reference string) (*models.Booking, error) {
	args := m.Called(ctx, adminKey, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
