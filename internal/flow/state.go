package flow

import models "github.com/chrisdamba/skybooker/internal"

// State is one screen of the booking flow. Each variant carries only the data valid on that screen.
type State interface {
	View() models.View
	isState()
}

// SearchState keeps the last submitted criteria so a failed search can be resubmitted.
type SearchState struct {
	Criteria *models.SearchCriteria
}

// FlightsState lists search results. The details modal is open while Selected is set.
type FlightsState struct {
	Criteria    models.SearchCriteria
	Itineraries []models.FlightItinerary
	Selected    *models.FlightItinerary
}

// PaymentState keeps the results so going back restores the list.
type PaymentState struct {
	Criteria    models.SearchCriteria
	Itineraries []models.FlightItinerary
	Itinerary   models.FlightItinerary
}

type ConfirmationState struct {
	Criteria  models.SearchCriteria
	Itinerary models.FlightItinerary
	Reference string
}

type AdminLoginState struct{}

type AdminPanelState struct{}

func (SearchState) View() models.View       { return models.ViewSearch }
func (FlightsState) View() models.View      { return models.ViewFlights }
func (PaymentState) View() models.View      { return models.ViewPayment }
func (ConfirmationState) View() models.View { return models.ViewConfirmation }
func (AdminLoginState) View() models.View   { return models.ViewAdminLogin }
func (AdminPanelState) View() models.View   { return models.ViewAdminPanel }

func (SearchState) isState()       {}
func (FlightsState) isState()      {}
func (PaymentState) isState()      {}
func (ConfirmationState) isState() {}
func (AdminLoginState) isState()   {}
func (AdminPanelState) isState()   {}

type Event string

const (
	EventSubmitSearch     Event = "submit_search"
	EventSelectItinerary  Event = "select_itinerary"
	EventCloseModal       Event = "close_modal"
	EventProceedToPayment Event = "proceed_to_payment"
	EventUpdatePayment    Event = "update_payment"
	EventSubmitPayment    Event = "submit_payment"
	EventGoBack           Event = "go_back"
	EventGoToSearch       Event = "go_to_search"
	EventStartOver        Event = "start_over"
	EventOpenAdminLogin   Event = "open_admin_login"
	EventAdminLogin       Event = "admin_login"
)
