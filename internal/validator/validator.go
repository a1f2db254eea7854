package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterValidation("card_expiry", validateCardExpiry)
	v.RegisterStructValidation(validateCriteriaDates, models.SearchCriteria{})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ValidateCriteria checks normalised criteria. Failures wrap models.ErrInvalidCriteria.
func (cv *CustomValidator) ValidateCriteria(c models.SearchCriteria) error {
	if err := cv.Validate(c); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidCriteria, describe(err))
	}
	return nil
}

// ValidatePayment checks a payment draft. Failures wrap models.ErrInvalidPayment.
func (cv *CustomValidator) ValidatePayment(p models.PaymentFormData) error {
	if err := cv.Validate(p); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidPayment, describe(err))
	}
	return nil
}

func validateCriteriaDates(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.SearchCriteria)

	if c.DepartureDate.IsZero() {
		sl.ReportError(c.DepartureDate, "departure_date", "DepartureDate", "required", "")
	}
	if c.Origin != "" && strings.EqualFold(c.Origin, c.Destination) {
		sl.ReportError(c.Destination, "destination", "Destination", "nefield", "origin")
	}

	switch c.TripType {
	case models.TripRoundTrip:
		if c.ReturnDate == nil || c.ReturnDate.IsZero() {
			sl.ReportError(c.ReturnDate, "return_date", "ReturnDate", "required_if", "trip_type round-trip")
			return
		}
		if !c.DepartureDate.IsZero() && c.ReturnDate.Before(c.DepartureDate.Time) {
			sl.ReportError(c.ReturnDate, "return_date", "ReturnDate", "gtefield", "departure_date")
		}
	case models.TripOneWay:
		if c.ReturnDate != nil {
			sl.ReportError(c.ReturnDate, "return_date", "ReturnDate", "excluded_if", "trip_type one-way")
		}
	}
}

// validateCardExpiry accepts MM/YY.
func validateCardExpiry(fl validator.FieldLevel) bool {
	parts := strings.Split(fl.Field().String(), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	_, err = strconv.Atoi(parts[1])
	return err == nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}
