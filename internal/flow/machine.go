// Package flow implements the booking flow as a state machine over the screens
// search -> flights -> payment -> confirmation, with an admin branch.
//
// All mutations are serialised. Searches and payments release the lock while they wait,
// and every other mutation is rejected with models.ErrBusy until they finish.
package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/chrisdamba/skybooker/internal/ports"
	"github.com/chrisdamba/skybooker/internal/ranking"
	"github.com/chrisdamba/skybooker/internal/validator"
)

const (
	DefaultPaymentDelay = 2 * time.Second

	SearchFailedMessage  = "Failed to search flights. Please try again."
	PaymentFailedMessage = "Failed to complete the booking. Please try again."
)

// Checkout is what a finalizer receives once the payment delay has elapsed.
type Checkout struct {
	Criteria  models.SearchCriteria
	Itinerary models.FlightItinerary
	Payment   models.PaymentFormData
}

// Finalizer records a checkout and returns its confirmation reference.
type Finalizer func(ctx context.Context, checkout Checkout) (string, error)

type Option func(*Machine)

func WithPaymentDelay(d time.Duration) Option {
	return func(m *Machine) {
		m.paymentDelay = d
	}
}

// WithClock replaces time.After for the payment delay.
func WithClock(after func(time.Duration) <-chan time.Time) Option {
	return func(m *Machine) {
		m.after = after
	}
}

func WithFinalizer(f Finalizer) Option {
	return func(m *Machine) {
		m.finalize = f
	}
}

func WithValidator(v *validator.CustomValidator) Option {
	return func(m *Machine) {
		m.validator = v
	}
}

type Machine struct {
	mu sync.Mutex

	generator    ports.ItineraryGenerator
	validator    *validator.CustomValidator
	paymentDelay time.Duration
	after        func(time.Duration) <-chan time.Time
	finalize     Finalizer

	state   State
	loading bool
	errMsg  string
	payment models.PaymentFormData
}

func New(generator ports.ItineraryGenerator, opts ...Option) *Machine {
	m := &Machine{
		generator:    generator,
		paymentDelay: DefaultPaymentDelay,
		after:        time.After,
		state:        SearchState{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.validator == nil {
		m.validator = validator.NewCustomValidator()
	}
	return m
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Machine) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

func (m *Machine) Payment() models.PaymentFormData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payment
}

// SubmitSearch runs the generator for criteria and moves to the results on success.
// A failed search stays on the search screen with the criteria kept and the error set.
// Once started, the search runs to completion even if ctx is cancelled.
func (m *Machine) SubmitSearch(ctx context.Context, criteria models.SearchCriteria) error {
	criteria = criteria.Normalize()

	m.mu.Lock()
	if err := m.ready(EventSubmitSearch); err != nil {
		m.mu.Unlock()
		return err
	}
	if _, ok := m.state.(SearchState); !ok {
		err := m.invalid(EventSubmitSearch)
		m.mu.Unlock()
		return err
	}
	if err := m.validator.ValidateCriteria(criteria); err != nil {
		m.mu.Unlock()
		return err
	}
	submitted := criteria
	m.state = SearchState{Criteria: &submitted}
	m.errMsg = ""
	m.loading = true
	m.mu.Unlock()

	results, err := m.generator.Search(context.WithoutCancel(ctx), criteria)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.errMsg = SearchFailedMessage
		return fmt.Errorf("%w: %v", models.ErrSearchFailed, err)
	}
	if results == nil {
		results = []models.FlightItinerary{}
	}
	m.state = FlightsState{Criteria: criteria, Itineraries: results}
	return nil
}

// SelectItinerary opens the details modal for one of the listed itineraries.
func (m *Machine) SelectItinerary(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventSelectItinerary); err != nil {
		return err
	}

	s, ok := m.state.(FlightsState)
	if !ok {
		return m.invalid(EventSelectItinerary)
	}
	for i := range s.Itineraries {
		if s.Itineraries[i].ID == id {
			selected := s.Itineraries[i]
			s.Selected = &selected
			m.state = s
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrItineraryNotFound, id)
}

func (m *Machine) CloseModal() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventCloseModal); err != nil {
		return err
	}

	s, ok := m.state.(FlightsState)
	if !ok {
		return m.invalid(EventCloseModal)
	}
	s.Selected = nil
	m.state = s
	return nil
}

// ProceedToPayment closes the modal and moves to payment with the selected itinerary.
func (m *Machine) ProceedToPayment() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventProceedToPayment); err != nil {
		return err
	}

	s, ok := m.state.(FlightsState)
	if !ok {
		return m.invalid(EventProceedToPayment)
	}
	if s.Selected == nil {
		return models.ErrNoSelection
	}
	m.state = PaymentState{
		Criteria:    s.Criteria,
		Itineraries: s.Itineraries,
		Itinerary:   *s.Selected,
	}
	return nil
}

func (m *Machine) UpdatePayment(draft models.PaymentFormData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventUpdatePayment); err != nil {
		return err
	}

	if _, ok := m.state.(PaymentState); !ok {
		return m.invalid(EventUpdatePayment)
	}
	m.payment = draft
	return nil
}

// SubmitPayment simulates payment processing and moves to the confirmation.
// Loading stays true for the whole delay. The wait ignores ctx cancellation.
func (m *Machine) SubmitPayment(ctx context.Context) error {
	m.mu.Lock()
	if err := m.ready(EventSubmitPayment); err != nil {
		m.mu.Unlock()
		return err
	}
	s, ok := m.state.(PaymentState)
	if !ok {
		err := m.invalid(EventSubmitPayment)
		m.mu.Unlock()
		return err
	}
	if err := m.validator.ValidatePayment(m.payment); err != nil {
		m.mu.Unlock()
		return err
	}
	draft := m.payment
	m.errMsg = ""
	m.loading = true
	m.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	<-m.after(m.paymentDelay)

	var (
		reference string
		err       error
	)
	if m.finalize != nil {
		reference, err = m.finalize(ctx, Checkout{Criteria: s.Criteria, Itinerary: s.Itinerary, Payment: draft})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.errMsg = PaymentFailedMessage
		return fmt.Errorf("finalizing booking: %w", err)
	}
	m.state = ConfirmationState{Criteria: s.Criteria, Itinerary: s.Itinerary, Reference: reference}
	return nil
}

// GoBack returns from results or the admin panel to an empty search,
// and from payment to the results it came from.
func (m *Machine) GoBack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventGoBack); err != nil {
		return err
	}

	switch s := m.state.(type) {
	case FlightsState, AdminPanelState:
		m.state = SearchState{}
	case PaymentState:
		m.state = FlightsState{Criteria: s.Criteria, Itineraries: s.Itineraries}
	default:
		return m.invalid(EventGoBack)
	}
	return nil
}

func (m *Machine) GoToSearch() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventGoToSearch); err != nil {
		return err
	}

	m.state = SearchState{}
	m.errMsg = ""
	return nil
}

// StartOver is GoToSearch plus an empty payment draft.
func (m *Machine) StartOver() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventStartOver); err != nil {
		return err
	}

	m.state = SearchState{}
	m.errMsg = ""
	m.payment = models.PaymentFormData{}
	return nil
}

func (m *Machine) OpenAdminLogin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventOpenAdminLogin); err != nil {
		return err
	}

	m.state = AdminLoginState{}
	return nil
}

func (m *Machine) AdminLoginSucceeded() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(EventAdminLogin); err != nil {
		return err
	}

	if _, ok := m.state.(AdminLoginState); !ok {
		return m.invalid(EventAdminLogin)
	}
	m.state = AdminPanelState{}
	return nil
}

// Snapshot renders the current state for the screens, with results ordered by sort.
func (m *Machine) Snapshot(sort models.SortMode) models.SessionView {
	if sort == "" {
		sort = models.SortQuality
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	view := models.SessionView{
		View:        m.state.View(),
		Loading:     m.loading,
		Error:       m.errMsg,
		Itineraries: []models.FlightItinerary{},
		Payment:     m.payment.Masked(),
	}

	switch s := m.state.(type) {
	case SearchState:
		if s.Criteria != nil {
			c := *s.Criteria
			view.Criteria = &c
		}
	case FlightsState:
		view.Criteria = &s.Criteria
		view.Sort = sort
		view.Itineraries = ranking.Sort(s.Itineraries, sort)
		if s.Selected != nil {
			selected := *s.Selected
			view.Selected = &selected
		}
	case PaymentState:
		view.Criteria = &s.Criteria
		view.Chosen = &s.Itinerary
	case ConfirmationState:
		view.Criteria = &s.Criteria
		view.Chosen = &s.Itinerary
		view.Reference = s.Reference
	}
	return view
}

func (m *Machine) ready(event Event) error {
	if m.loading {
		return fmt.Errorf("%w: cannot %s", models.ErrBusy, event)
	}
	return nil
}

func (m *Machine) invalid(event Event) error {
	return fmt.Errorf("%w: cannot %s from %s", models.ErrInvalidTransition, event, m.state.View())
}
