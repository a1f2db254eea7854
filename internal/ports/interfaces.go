package ports

import (
	"context"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/google/uuid"
)

// ItineraryGenerator produces candidate itineraries for a search. Implementations may fail.
type ItineraryGenerator interface {
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightItinerary, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	GetBookingsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Booking, string, error)
}

type BookingService interface {
	CreateSession(ctx context.Context) (*models.SessionView, error)
	GetSession(ctx context.Context, id uuid.UUID, sort models.SortMode) (*models.SessionView, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	SubmitSearch(ctx context.Context, id uuid.UUID, criteria models.SearchCriteria) (*models.SessionView, error)
	SelectItinerary(ctx context.Context, id uuid.UUID, itineraryID string) (*models.SessionView, error)
	CloseModal(ctx context.Context, id uuid.UUID) (*models.SessionView, error)
	ProceedToPayment(ctx context.Context, id uuid.UUID) (*models.SessionView, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, draft models.PaymentFormData) (*models.SessionView, error)
	SubmitPayment(ctx context.Context, id uuid.UUID) (*models.SessionView, error)
	GoBack(ctx context.Context, id uuid.UUID) (*models.SessionView, error)
	GoToSearch(ctx context.Context, id uuid.UUID) (*models.SessionView, error)
	StartOver(ctx context.Context, id uuid.UUID) (*models.SessionView, error)
	OpenAdminLogin(ctx context.Context, id uuid.UUID) (*models.SessionView, error)
	AdminLogin(ctx context.Context, id uuid.UUID, key string) (*models.SessionView, error)

	AllBookings(ctx context.Context, adminKey string, req models.GetBookingsRequest) (*models.AllBookingsResponse, error)
	BookingByReference(ctx context.Context, adminKey, reference string) (*models.Booking, error)
}
