package models

import "errors"

var (
	ErrInvalidUUID        = errors.New("invalid uuid")
	ErrInvalidCriteria    = errors.New("invalid search criteria")
	ErrInvalidPayment     = errors.New("invalid payment details")
	ErrInvalidSortMode    = errors.New("invalid sort mode")
	ErrSearchFailed       = errors.New("flight search failed")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrBusy               = errors.New("another operation is in progress")
	ErrNoSelection        = errors.New("no itinerary selected")
	ErrItineraryNotFound  = errors.New("itinerary not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidAdminKey    = errors.New("invalid admin key")
	ErrLedgerDisabled     = errors.New("booking ledger is disabled")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrBookingNotRecorded = errors.New("booking could not be recorded")
)
