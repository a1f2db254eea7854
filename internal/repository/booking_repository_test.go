package repository_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/chrisdamba/skybooker/internal/repository"
	"github.com/chrisdamba/skybooker/internal/utils"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectColumns = `
    SELECT
        id, session_id, itinerary_id,
        origin, destination, departure_date, return_date,
        trip_type, passengers, flight_class, direct_flights_only,
        passenger_name, passenger_email, card_last4,
        total_price, outbound_flight, inbound_flight,
        status, created_at
    FROM bookings`

func TestEnsureSchema(t *testing.T) {
	t.Run("creates table", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		mockDb.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS bookings")).
			WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

		require.NoError(t, repo.EnsureSchema(context.Background()))
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		mockDb.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS bookings")).
			WillReturnError(fmt.Errorf("permission denied"))

		err := repo.EnsureSchema(context.Background())
		assert.ErrorContains(t, err, "permission denied")
	})
}

func TestCreateBooking(t *testing.T) {
	t.Run("round trip booking", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := createMockBookings(1)[0]
		booking.Status = ""

		mockDb.ExpectBegin()
		mockDb.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
			WithArgs(
				booking.ID, booking.SessionID, booking.ItineraryID,
				"Porto", "Madrid", booking.Criteria.DepartureDate.Time, pgxmock.AnyArg(),
				"round-trip", 1, "Economy", false,
				"Ana Silva", "ana@example.com", "4242",
				booking.TotalPrice, "TP123", "IB456",
				"CONFIRMED", pgxmock.AnyArg(),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		created, err := repo.CreateBooking(context.Background(), &booking)

		require.NoError(t, err)
		assert.Equal(t, booking.ID, created.ID)
		assert.Equal(t, models.StatusConfirmed, created.Status)
		assert.False(t, created.CreatedAt.IsZero())
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("assigns an id when missing", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := createMockBookings(1)[0]
		booking.ID = uuid.Nil
		booking.Criteria.TripType = models.TripOneWay
		booking.Criteria.ReturnDate = nil

		mockDb.ExpectBegin()
		mockDb.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
			WithArgs(
				pgxmock.AnyArg(), booking.SessionID, booking.ItineraryID,
				"Porto", "Madrid", booking.Criteria.DepartureDate.Time, (*time.Time)(nil),
				"one-way", 1, "Economy", false,
				"Ana Silva", "ana@example.com", "4242",
				booking.TotalPrice, "TP123", "IB456",
				"CONFIRMED", pgxmock.AnyArg(),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockDb.ExpectCommit()

		created, err := repo.CreateBooking(context.Background(), &booking)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("insert error rolls back", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		booking := createMockBookings(1)[0]

		mockDb.ExpectBegin()
		mockDb.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
			WillReturnError(fmt.Errorf("duplicate key"))
		mockDb.ExpectRollback()

		created, err := repo.CreateBooking(context.Background(), &booking)

		assert.Error(t, err)
		assert.Nil(t, created)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		mockDb.ExpectBegin().WillReturnError(fmt.Errorf("connection refused"))

		booking := createMockBookings(1)[0]
		_, err := repo.CreateBooking(context.Background(), &booking)
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestGetBookingByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		bookings := createMockBookings(1)
		mockDb.ExpectQuery(formatQueryForRegex(selectColumns + " WHERE id = $1")).
			WithArgs(bookings[0].ID).
			WillReturnRows(createMockRows(bookings))

		result, err := repo.GetBookingByID(context.Background(), bookings[0].ID.String())

		require.NoError(t, err)
		assert.Equal(t, bookings[0].ID, result.ID)
		assert.Equal(t, "2025-12-26", result.Criteria.DepartureDate.String())
		require.NotNil(t, result.Criteria.ReturnDate)
		assert.Equal(t, "2026-01-01", result.Criteria.ReturnDate.String())
		assert.Equal(t, models.ClassEconomy, result.Criteria.FlightClass)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		id := uuid.New()
		mockDb.ExpectQuery(formatQueryForRegex(selectColumns + " WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(createMockRows(nil))

		result, err := repo.GetBookingByID(context.Background(), id.String())

		assert.ErrorIs(t, err, models.ErrBookingNotFound)
		assert.Nil(t, result)
	})

	t.Run("invalid uuid", func(t *testing.T) {
		_, repo := setupMockDB(t)

		_, err := repo.GetBookingByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, models.ErrInvalidUUID)
	})
}

func TestGetBookingsPaginated(t *testing.T) {
	t.Run("successful query without cursor", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		limit := 2
		bookings := createMockBookings(2)

		mockDb.ExpectQuery(formatQueryForRegex(selectColumns + " ORDER BY created_at, id LIMIT $1")).
			WithArgs(limit).
			WillReturnRows(createMockRows(bookings))

		result, cursor, err := repo.GetBookingsPaginated(context.Background(), "", limit)

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, utils.EncodeCursor(bookings[1].CreatedAt, bookings[1].ID), cursor)
		verifyBookings(t, bookings, result)
		assert.NoError(t, mockDb.ExpectationsWereMet())
	})

	t.Run("successful query with cursor", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		limit := 3
		bookings := createMockBookings(2)
		cursorID := uuid.New()
		cursor := utils.EncodeCursor(time.Now(), cursorID)

		mockDb.ExpectQuery(formatQueryForRegex(selectColumns + " WHERE (created_at, id) > ($1, $2) ORDER BY created_at, id LIMIT $3")).
			WithArgs(pgxmock.AnyArg(), cursorID, limit).
			WillReturnRows(createMockRows(bookings))

		result, nextCursor, err := repo.GetBookingsPaginated(context.Background(), cursor, limit)

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Empty(t, nextCursor)
		verifyBookings(t, bookings, result)
	})

	t.Run("empty result", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		mockDb.ExpectQuery(formatQueryForRegex(selectColumns + " ORDER BY created_at, id LIMIT $1")).
			WithArgs(2).
			WillReturnRows(createMockRows(nil))

		result, cursor, err := repo.GetBookingsPaginated(context.Background(), "", 2)

		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
		assert.Empty(t, cursor)
	})

	t.Run("invalid cursor format", func(t *testing.T) {
		_, repo := setupMockDB(t)

		invalidCursor := base64.StdEncoding.EncodeToString([]byte("invalid"))

		_, _, err := repo.GetBookingsPaginated(context.Background(), invalidCursor, 10)
		assert.ErrorIs(t, err, models.ErrInvalidCursor)
	})

	t.Run("database error", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		mockDb.ExpectQuery(`SELECT.*FROM bookings.*`).
			WithArgs(10).
			WillReturnError(fmt.Errorf("database error"))

		_, _, err := repo.GetBookingsPaginated(context.Background(), "", 10)
		assert.Error(t, err)
	})

	t.Run("scan error", func(t *testing.T) {
		mockDb, repo := setupMockDB(t)
		defer mockDb.Close()

		rows := pgxmock.NewRows([]string{"id"}).AddRow("invalid")

		mockDb.ExpectQuery(`SELECT.*FROM bookings.*`).
			WithArgs(10).
			WillReturnRows(rows)

		_, _, err := repo.GetBookingsPaginated(context.Background(), "", 10)
		assert.Error(t, err)
	})
}

// helper functions
func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, *repository.BookingRepository) {
	mockDb, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mockDb, repository.NewBookingRepository(mockDb)
}

func createMockBookings(count int) []models.Booking {
	bookings := make([]models.Booking, count)
	for i := 0; i < count; i++ {
		ret := models.MustParseDate("2026-01-01")
		bookings[i] = models.Booking{
			ID:          uuid.New(),
			SessionID:   uuid.New(),
			ItineraryID: fmt.Sprintf("itinerary-%d", i),
			Criteria: models.SearchCriteria{
				Origin:        "Porto",
				Destination:   "Madrid",
				DepartureDate: models.MustParseDate("2025-12-26"),
				ReturnDate:    &ret,
				Passengers:    1,
				FlightClass:   models.ClassEconomy,
				TripType:      models.TripRoundTrip,
			},
			PassengerName:  "Ana Silva",
			PassengerEmail: "ana@example.com",
			CardLast4:      "4242",
			TotalPrice:     float64(120 + i*20),
			OutboundFlight: "TP123",
			InboundFlight:  "IB456",
			Status:         models.StatusConfirmed,
			CreatedAt:      time.Now().UTC().Add(time.Duration(i) * time.Hour),
		}
	}
	return bookings
}

func createMockRows(bookings []models.Booking) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "session_id", "itinerary_id",
		"origin", "destination", "departure_date", "return_date",
		"trip_type", "passengers", "flight_class", "direct_flights_only",
		"passenger_name", "passenger_email", "card_last4",
		"total_price", "outbound_flight", "inbound_flight",
		"status", "created_at",
	})

	for _, b := range bookings {
		var returnDate *time.Time
		if b.Criteria.ReturnDate != nil {
			rd := b.Criteria.ReturnDate.Time
			returnDate = &rd
		}
		rows.AddRow(
			b.ID, b.SessionID, b.ItineraryID,
			b.Criteria.Origin, b.Criteria.Destination, b.Criteria.DepartureDate.Time, returnDate,
			string(b.Criteria.TripType), b.Criteria.Passengers, string(b.Criteria.FlightClass), b.Criteria.DirectFlightsOnly,
			b.PassengerName, b.PassengerEmail, b.CardLast4,
			b.TotalPrice, b.OutboundFlight, b.InboundFlight,
			string(b.Status), b.CreatedAt,
		)
	}
	return rows
}

func verifyBookings(t *testing.T, expected, actual []models.Booking) {
	require.Equal(t, len(expected), len(actual))
	for i := range expected {
		assert.Equal(t, expected[i].ID, actual[i].ID)
		assert.Equal(t, expected[i].Status, actual[i].Status)
		assert.Equal(t, expected[i].ItineraryID, actual[i].ItineraryID)
		assert.Equal(t, expected[i].PassengerName, actual[i].PassengerName)
		assert.Equal(t, expected[i].TotalPrice, actual[i].TotalPrice)
		assert.Equal(t, expected[i].Criteria.Origin, actual[i].Criteria.Origin)
	}
}

func formatQueryForRegex(query string) string {
	// remove extra whitespace and newlines
	query = strings.Join(strings.Fields(query), " ")
	query = regexp.QuoteMeta(query)
	return fmt.Sprintf("^%s$", query)
}
