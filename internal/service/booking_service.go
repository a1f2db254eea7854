package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/chrisdamba/skybooker/internal/flow"
	"github.com/chrisdamba/skybooker/internal/ports"
	"github.com/chrisdamba/skybooker/internal/ranking"
	"github.com/chrisdamba/skybooker/internal/session"
	"github.com/chrisdamba/skybooker/pkg/logger"
	"github.com/chrisdamba/skybooker/pkg/metrics"
	"github.com/google/uuid"
)

const (
	DefaultBookingsLimit = 10
	MaxBookingsLimit     = 100
)

type Option func(*bookingService)

func WithLogger(l logger.Logger) Option {
	return func(s *bookingService) {
		s.log = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *bookingService) {
		s.metrics = m
	}
}

// WithAdminKey sets the key for the admin branch. An empty key locks the admin panel.
func WithAdminKey(key string) Option {
	return func(s *bookingService) {
		s.adminKey = key
	}
}

// WithFlowOptions passes extra options to every new booking flow.
func WithFlowOptions(opts ...flow.Option) Option {
	return func(s *bookingService) {
		s.flowOpts = append(s.flowOpts, opts...)
	}
}

type bookingService struct {
	store     *session.Store
	generator ports.ItineraryGenerator
	repo      ports.BookingRepository
	log       logger.Logger
	metrics   *metrics.Metrics
	adminKey  string
	flowOpts  []flow.Option
}

// NewBookingService wires sessions to the generator. A nil repo disables the booking ledger.
func NewBookingService(store *session.Store, generator ports.ItineraryGenerator, repo ports.BookingRepository, opts ...Option) *bookingService {
	s := &bookingService{
		store: store,
		repo:  repo,
		log:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewMetrics("skybooker")
	}
	s.generator = &instrumentedGenerator{next: generator, log: s.log, metrics: s.metrics}
	return s
}

func (s *bookingService) CreateSession(ctx context.Context) (*models.SessionView, error) {
	var id uuid.UUID
	opts := append([]flow.Option{flow.WithFinalizer(s.recordBooking(&id))}, s.flowOpts...)
	m := flow.New(s.generator, opts...)
	id = s.store.Create(m)

	s.metrics.ActiveSessions.Set(float64(s.store.Len()))
	s.log.Info("session created", "session_id", id)
	return s.snapshot(id, m, ""), nil
}

func (s *bookingService) GetSession(ctx context.Context, id uuid.UUID, sort models.SortMode) (*models.SessionView, error) {
	mode, err := ranking.ParseMode(string(sort))
	if err != nil {
		return nil, err
	}
	m, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(id, m, mode), nil
}

func (s *bookingService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.metrics.ActiveSessions.Set(float64(s.store.Len()))
	s.log.Info("session deleted", "session_id", id)
	return nil
}

// SubmitSearch answers with the session snapshot even when the search failed,
// since the flow stays on the search screen with the error message set.
func (s *bookingService) SubmitSearch(ctx context.Context, id uuid.UUID, criteria models.SearchCriteria) (*models.SessionView, error) {
	view, err := s.apply(id, flow.EventSubmitSearch, func(m *flow.Machine) error {
		return m.SubmitSearch(ctx, criteria)
	})
	if errors.Is(err, models.ErrSearchFailed) {
		m, getErr := s.store.Get(id)
		if getErr != nil {
			return nil, getErr
		}
		return s.snapshot(id, m, ""), nil
	}
	return view, err
}

func (s *bookingService) SelectItinerary(ctx context.Context, id uuid.UUID, itineraryID string) (*models.SessionView, error) {
	return s.apply(id, flow.EventSelectItinerary, func(m *flow.Machine) error {
		return m.SelectItinerary(itineraryID)
	})
}

func (s *bookingService) CloseModal(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	return s.apply(id, flow.EventCloseModal, (*flow.Machine).CloseModal)
}

func (s *bookingService) ProceedToPayment(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	return s.apply(id, flow.EventProceedToPayment, (*flow.Machine).ProceedToPayment)
}

func (s *bookingService) UpdatePayment(ctx context.Context, id uuid.UUID, draft models.PaymentFormData) (*models.SessionView, error) {
	return s.apply(id, flow.EventUpdatePayment, func(m *flow.Machine) error {
		return m.UpdatePayment(draft)
	})
}

func (s *bookingService) SubmitPayment(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	view, err := s.apply(id, flow.EventSubmitPayment, func(m *flow.Machine) error {
		return m.SubmitPayment(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.BookingsConfirmed.Inc()
	s.log.Info("booking confirmed", "session_id", id, "reference", view.Reference)
	return view, nil
}

func (s *bookingService) GoBack(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	return s.apply(id, flow.EventGoBack, (*flow.Machine).GoBack)
}

func (s *bookingService) GoToSearch(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	return s.apply(id, flow.EventGoToSearch, (*flow.Machine).GoToSearch)
}

func (s *bookingService) StartOver(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	return s.apply(id, flow.EventStartOver, (*flow.Machine).StartOver)
}

func (s *bookingService) OpenAdminLogin(ctx context.Context, id uuid.UUID) (*models.SessionView, error) {
	return s.apply(id, flow.EventOpenAdminLogin, (*flow.Machine).OpenAdminLogin)
}

// AdminLogin moves to the admin panel when key matches the configured admin key.
func (s *bookingService) AdminLogin(ctx context.Context, id uuid.UUID, key string) (*models.SessionView, error) {
	return s.apply(id, flow.EventAdminLogin, func(m *flow.Machine) error {
		if _, ok := m.State().(flow.AdminLoginState); ok && !s.validAdminKey(key) {
			return models.ErrInvalidAdminKey
		}
		return m.AdminLoginSucceeded()
	})
}

func (s *bookingService) AllBookings(ctx context.Context, adminKey string, req models.GetBookingsRequest) (*models.AllBookingsResponse, error) {
	if !s.validAdminKey(adminKey) {
		return nil, models.ErrInvalidAdminKey
	}
	if s.repo == nil {
		return nil, models.ErrLedgerDisabled
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultBookingsLimit
	}
	if limit > MaxBookingsLimit {
		limit = MaxBookingsLimit
	}

	bookings, nextCursor, err := s.repo.GetBookingsPaginated(ctx, req.Cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	return &models.AllBookingsResponse{
		Bookings: bookings,
		Limit:    limit,
		Cursor:   nextCursor,
	}, nil
}

func (s *bookingService) BookingByReference(ctx context.Context, adminKey, reference string) (*models.Booking, error) {
	if !s.validAdminKey(adminKey) {
		return nil, models.ErrInvalidAdminKey
	}
	if s.repo == nil {
		return nil, models.ErrLedgerDisabled
	}

	booking, err := s.repo.GetBookingByID(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", reference, err)
	}
	return booking, nil
}

func (s *bookingService) apply(id uuid.UUID, event flow.Event, fn func(m *flow.Machine) error) (*models.SessionView, error) {
	m, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	log := s.log.With("session_id", id, "event", event)
	if err := fn(m); err != nil {
		switch {
		case errors.Is(err, models.ErrSearchFailed), errors.Is(err, models.ErrBookingNotRecorded):
			log.Error("transition failed", "error", err)
		default:
			log.Warn("transition rejected", "error", err)
		}
		return nil, err
	}

	s.metrics.TransitionsTotal.WithLabelValues(string(event)).Inc()
	view := s.snapshot(id, m, "")
	log.Info("transition", "view", view.View)
	return view, nil
}

func (s *bookingService) snapshot(id uuid.UUID, m *flow.Machine, sort models.SortMode) *models.SessionView {
	view := m.Snapshot(sort)
	view.SessionID = id
	return &view
}

func (s *bookingService) validAdminKey(key string) bool {
	if s.adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.adminKey), []byte(key)) == 1
}

// recordBooking writes the confirmed checkout to the ledger and uses the booking id as reference.
func (s *bookingService) recordBooking(sessionID *uuid.UUID) flow.Finalizer {
	return func(ctx context.Context, c flow.Checkout) (string, error) {
		booking := &models.Booking{
			ID:             uuid.New(),
			SessionID:      *sessionID,
			ItineraryID:    c.Itinerary.ID,
			Criteria:       c.Criteria,
			PassengerName:  c.Payment.Passenger.FullName,
			PassengerEmail: c.Payment.Passenger.Email,
			CardLast4:      c.Payment.CardLast4(),
			TotalPrice:     c.Itinerary.TotalPrice,
			OutboundFlight: c.Itinerary.Outbound.FlightNumber,
			InboundFlight:  c.Itinerary.Inbound.FlightNumber,
			Status:         models.StatusConfirmed,
		}
		if s.repo == nil {
			return booking.ID.String(), nil
		}

		saved, err := s.repo.CreateBooking(ctx, booking)
		if err != nil {
			return "", fmt.Errorf("%w: %v", models.ErrBookingNotRecorded, err)
		}
		return saved.ID.String(), nil
	}
}

// instrumentedGenerator times searches and counts their outcomes.
type instrumentedGenerator struct {
	next    ports.ItineraryGenerator
	log     logger.Logger
	metrics *metrics.Metrics
}

func (g *instrumentedGenerator) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightItinerary, error) {
	start := time.Now()
	results, err := g.next.Search(ctx, criteria)
	elapsed := time.Since(start)
	g.metrics.SearchDuration.Observe(elapsed.Seconds())

	if err != nil {
		g.metrics.SearchesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		g.log.Error("search failed",
			"origin", criteria.Origin,
			"destination", criteria.Destination,
			"duration", elapsed,
			"error", err)
		return nil, err
	}

	g.metrics.SearchesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	g.log.Info("search finished",
		"origin", criteria.Origin,
		"destination", criteria.Destination,
		"duration", elapsed,
		"results", len(results))
	return results, nil
}
