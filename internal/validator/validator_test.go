package validator_test

import (
	"testing"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/chrisdamba/skybooker/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createValidCriteria() models.SearchCriteria {
	ret := models.MustParseDate("2026-01-01")
	return models.SearchCriteria{
		Origin:        "Porto",
		Destination:   "Madrid",
		DepartureDate: models.MustParseDate("2025-12-26"),
		ReturnDate:    &ret,
		Passengers:    1,
		FlightClass:   models.ClassEconomy,
		TripType:      models.TripRoundTrip,
	}
}

func createValidPayment() models.PaymentFormData {
	return models.PaymentFormData{
		Passenger: models.PassengerDetails{FullName: "Ana Silva", Email: "ana@example.com"},
		Payment: models.CardDetails{
			CardNumber: "4242424242424242",
			ExpiryDate: "12/30",
			CVV:        "123",
			CardHolder: "Ana Silva",
		},
	}
}

func TestNewCustomValidator(t *testing.T) {
	v := validator.NewCustomValidator()
	assert.NotNil(t, v)
}

func TestValidateCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria func() models.SearchCriteria
		wantErr  string
	}{
		{
			name:     "Valid round trip",
			criteria: createValidCriteria,
		},
		{
			name: "Valid one way",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.TripType = models.TripOneWay
				c.ReturnDate = nil
				return c
			},
		},
		{
			name: "Missing origin",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.Origin = ""
				return c
			},
			wantErr: "origin",
		},
		{
			name: "Same origin and destination",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.Destination = "porto"
				return c
			},
			wantErr: "destination",
		},
		{
			name: "Missing departure date",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.DepartureDate = models.Date{}
				return c
			},
			wantErr: "departure_date",
		},
		{
			name: "Round trip without return date",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.ReturnDate = nil
				return c
			},
			wantErr: "return_date",
		},
		{
			name: "One way with return date",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.TripType = models.TripOneWay
				return c
			},
			wantErr: "excluded_if",
		},
		{
			name: "Return before departure",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				d := models.MustParseDate("2025-12-01")
				c.ReturnDate = &d
				return c
			},
			wantErr: "gtefield",
		},
		{
			name: "Zero passengers",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.Passengers = 0
				return c
			},
			wantErr: "passengers",
		},
		{
			name: "Ten passengers",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.Passengers = 10
				return c
			},
			wantErr: "passengers",
		},
		{
			name: "Unknown class",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.FlightClass = "Cargo"
				return c
			},
			wantErr: "flight_class",
		},
		{
			name: "Unknown trip type",
			criteria: func() models.SearchCriteria {
				c := createValidCriteria()
				c.TripType = "multi-city"
				return c
			},
			wantErr: "trip_type",
		},
	}

	v := validator.NewCustomValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCriteria(tt.criteria())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidCriteria)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *models.PaymentFormData)
		wantErr string
	}{
		{
			name:   "Valid payment",
			mutate: func(p *models.PaymentFormData) {},
		},
		{
			name:    "Invalid email",
			mutate:  func(p *models.PaymentFormData) { p.Passenger.Email = "not-an-email" },
			wantErr: "email",
		},
		{
			name:    "Card fails checksum",
			mutate:  func(p *models.PaymentFormData) { p.Payment.CardNumber = "4242424242424241" },
			wantErr: "card_number",
		},
		{
			name:    "Expiry month out of range",
			mutate:  func(p *models.PaymentFormData) { p.Payment.ExpiryDate = "13/30" },
			wantErr: "card_expiry",
		},
		{
			name:    "Expiry wrong format",
			mutate:  func(p *models.PaymentFormData) { p.Payment.ExpiryDate = "2030-12" },
			wantErr: "card_expiry",
		},
		{
			name:    "CVV with letters",
			mutate:  func(p *models.PaymentFormData) { p.Payment.CVV = "12a" },
			wantErr: "cvv",
		},
		{
			name:    "Empty draft",
			mutate:  func(p *models.PaymentFormData) { *p = models.PaymentFormData{} },
			wantErr: "full_name",
		},
	}

	v := validator.NewCustomValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createValidPayment()
			tt.mutate(&p)
			err := v.ValidatePayment(p)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidPayment)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
