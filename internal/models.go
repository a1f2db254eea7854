package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day, serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid date %s: expected a %s string", b, DateLayout)
	}
	return d.UnmarshalText([]byte(s))
}

type FlightClass string

const (
	ClassEconomy  FlightClass = "Economy"
	ClassPremium  FlightClass = "Premium"
	ClassBusiness FlightClass = "Business"
	ClassFirst    FlightClass = "First"
)

type TripType string

const (
	TripRoundTrip TripType = "round-trip"
	TripOneWay    TripType = "one-way"
)

type SearchCriteria struct {
	Origin            string      `json:"origin" xml:"origin" validate:"required,min=2,max=64"`
	Destination       string      `json:"destination" xml:"destination" validate:"required,min=2,max=64"`
	DepartureDate     Date        `json:"departure_date" xml:"departure_date"`
	ReturnDate        *Date       `json:"return_date,omitempty" xml:"return_date,omitempty"`
	Passengers        int         `json:"passengers" xml:"passengers" validate:"min=1,max=9"`
	FlightClass       FlightClass `json:"flight_class" xml:"flight_class" validate:"required,oneof=Economy Premium Business First"`
	DirectFlightsOnly bool        `json:"direct_flights_only" xml:"direct_flights_only"`
	TripType          TripType    `json:"trip_type" xml:"trip_type" validate:"required,oneof=round-trip one-way"`
}

// Normalize trims the free-text fields and drops the return date of one-way trips.
func (c SearchCriteria) Normalize() SearchCriteria {
	c.Origin = strings.TrimSpace(c.Origin)
	c.Destination = strings.TrimSpace(c.Destination)
	if c.TripType == TripOneWay {
		c.ReturnDate = nil
	}
	if c.ReturnDate != nil {
		d := *c.ReturnDate
		c.ReturnDate = &d
	}
	return c
}

type Endpoint struct {
	Time        string `json:"time" xml:"time"`
	Airport     string `json:"airport" xml:"airport"`
	AirportCode string `json:"airport_code" xml:"airport_code"`
}

// Flight is one directional leg of an itinerary.
type Flight struct {
	ID           string   `json:"id" xml:"id"`
	Airline      string   `json:"airline" xml:"airline"`
	FlightNumber string   `json:"flight_number" xml:"flight_number"`
	Departure    Endpoint `json:"departure" xml:"departure"`
	Arrival      Endpoint `json:"arrival" xml:"arrival"`
	Duration     string   `json:"duration" xml:"duration"`
	Stops        int      `json:"stops" xml:"stops"`
}

type FlightItinerary struct {
	ID            string  `json:"id" xml:"id"`
	Outbound      Flight  `json:"outbound" xml:"outbound"`
	Inbound       Flight  `json:"inbound" xml:"inbound"`
	TotalPrice    float64 `json:"total_price" xml:"total_price"`
	TotalDuration string  `json:"total_duration" xml:"total_duration"`
}

func (i FlightItinerary) TotalStops() int {
	return i.Outbound.Stops + i.Inbound.Stops
}

type PassengerDetails struct {
	FullName string `json:"full_name" xml:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" xml:"email" validate:"required,email"`
}

type CardDetails struct {
	CardNumber string `json:"card_number" xml:"card_number" validate:"required,credit_card"`
	ExpiryDate string `json:"expiry_date" xml:"expiry_date" validate:"required,card_expiry"`
	CVV        string `json:"cvv" xml:"cvv" validate:"required,numeric,min=3,max=4"`
	CardHolder string `json:"card_holder" xml:"card_holder" validate:"required,min=2,max=100"`
}

type PaymentFormData struct {
	Passenger PassengerDetails `json:"passenger" xml:"passenger"`
	Payment   CardDetails      `json:"payment" xml:"payment"`
}

// Masked hides the card number and the CVV. The last four digits stay visible
// once at least four have been entered.
func (p PaymentFormData) Masked() PaymentFormData {
	if p.Payment.CardNumber != "" {
		p.Payment.CardNumber = "****"
		if last4 := p.CardLast4(); last4 != "" {
			p.Payment.CardNumber = "**** **** **** " + last4
		}
	}
	if p.Payment.CVV != "" {
		p.Payment.CVV = "***"
	}
	return p
}

func (p PaymentFormData) CardLast4() string {
	digits := strings.ReplaceAll(p.Payment.CardNumber, " ", "")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

type View string

const (
	ViewSearch       View = "search"
	ViewFlights      View = "flights"
	ViewPayment      View = "payment"
	ViewConfirmation View = "confirmation"
	ViewAdminLogin   View = "admin_login"
	ViewAdminPanel   View = "admin_panel"
)

type SortMode string

const (
	SortQuality  SortMode = "quality"
	SortPrice    SortMode = "price"
	SortDuration SortMode = "duration"
)

// SessionView is the read-only slice of a booking session handed to the screens.
type SessionView struct {
	SessionID   uuid.UUID         `json:"session_id" xml:"session_id"`
	View        View              `json:"view" xml:"view"`
	Loading     bool              `json:"is_loading" xml:"is_loading"`
	Error       string            `json:"error,omitempty" xml:"error,omitempty"`
	Criteria    *SearchCriteria   `json:"criteria,omitempty" xml:"criteria,omitempty"`
	Sort        SortMode          `json:"sort,omitempty" xml:"sort,omitempty"`
	Itineraries []FlightItinerary `json:"itineraries" xml:"itineraries>itinerary"`
	Selected    *FlightItinerary  `json:"selected_itinerary,omitempty" xml:"selected_itinerary,omitempty"`
	Chosen      *FlightItinerary  `json:"chosen_itinerary,omitempty" xml:"chosen_itinerary,omitempty"`
	Payment     PaymentFormData   `json:"payment" xml:"payment"`
	Reference   string            `json:"confirmation_reference,omitempty" xml:"confirmation_reference,omitempty"`
}

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "CONFIRMED"
)

// Booking is a confirmed purchase as recorded in the ledger.
type Booking struct {
	ID             uuid.UUID      `json:"id" xml:"id"`
	SessionID      uuid.UUID      `json:"session_id" xml:"session_id"`
	ItineraryID    string         `json:"itinerary_id" xml:"itinerary_id"`
	Criteria       SearchCriteria `json:"criteria" xml:"criteria"`
	PassengerName  string         `json:"passenger_name" xml:"passenger_name"`
	PassengerEmail string         `json:"passenger_email" xml:"passenger_email"`
	CardLast4      string         `json:"card_last4" xml:"card_last4"`
	TotalPrice     float64        `json:"total_price" xml:"total_price"`
	OutboundFlight string         `json:"outbound_flight" xml:"outbound_flight"`
	InboundFlight  string         `json:"inbound_flight" xml:"inbound_flight"`
	Status         BookingStatus  `json:"status" xml:"status"`
	CreatedAt      time.Time      `json:"created_at" xml:"created_at"`
}

type AllBookingsResponse struct {
	Bookings []Booking `json:"bookings" xml:"bookings>booking"`
	Limit    int       `json:"limit" xml:"limit"`
	Cursor   string    `json:"cursor" xml:"cursor"`
}

type GetBookingsRequest struct {
	Limit  int
	Cursor string
}
