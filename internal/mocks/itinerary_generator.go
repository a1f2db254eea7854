package mocks

import (
	"context"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/stretchr/testify/mock"
)

type MockItineraryGenerator struct {
	mock.Mock
}

func (m *MockItineraryGenerator) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightItinerary, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlightItinerary), args.Error(1)
}
