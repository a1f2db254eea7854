package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/chrisdamba/skybooker/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

const schema = `
        CREATE TABLE IF NOT EXISTS bookings (
            id UUID PRIMARY KEY,
            session_id UUID NOT NULL,
            itinerary_id TEXT NOT NULL,
            origin TEXT NOT NULL,
            destination TEXT NOT NULL,
            departure_date DATE NOT NULL,
            return_date DATE,
            trip_type TEXT NOT NULL,
            passengers INT NOT NULL,
            flight_class TEXT NOT NULL,
            direct_flights_only BOOLEAN NOT NULL DEFAULT FALSE,
            passenger_name TEXT NOT NULL,
            passenger_email TEXT NOT NULL,
            card_last4 CHAR(4) NOT NULL,
            total_price NUMERIC(10, 2) NOT NULL,
            outbound_flight TEXT NOT NULL,
            inbound_flight TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS bookings_created_at_id_idx ON bookings (created_at, id)
    `

const selectBookings = `
        SELECT
            id, session_id, itinerary_id,
            origin, destination, departure_date, return_date,
            trip_type, passengers, flight_class, direct_flights_only,
            passenger_name, passenger_email, card_last4,
            total_price, outbound_flight, inbound_flight,
            status, created_at
        FROM bookings
    `

type BookingRepository struct {
	db DBConn
}

func NewBookingRepository(db DBConn) *BookingRepository {
	return &BookingRepository{db: db}
}

// EnsureSchema creates the bookings table if it does not exist yet.
func (r *BookingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating bookings schema: %w", err)
	}
	return nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = models.StatusConfirmed
	booking.CreatedAt = time.Now().UTC()
	err = r.createBookingTx(ctx, tx, booking)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}

	rows, err := r.db.Query(ctx, selectBookings+" WHERE id = $1", bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, models.ErrBookingNotFound
	}
	booking, err := scanBooking(rows)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetBookingsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Booking, string, error) {
	query := selectBookings
	var args []interface{}
	var conditions []string

	if afterCursor != "" {
		afterTime, afterUUID, err := utils.DecodeCursor(afterCursor)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", models.ErrInvalidCursor, err)
		}
		conditions = append(conditions, "(created_at, id) > ($1, $2)")
		args = append(args, afterTime, afterUUID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at, id"
	query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	var lastBooking models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, "", err
		}
		bookings = append(bookings, booking)
		lastBooking = booking
	}
	if err = rows.Err(); err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(bookings) == limit {
		nextCursor = utils.EncodeCursor(lastBooking.CreatedAt, lastBooking.ID)
	}

	return bookings, nextCursor, nil
}

func (r *BookingRepository) createBookingTx(ctx context.Context, tx pgx.Tx, booking *models.Booking) error {
	query := `
        INSERT INTO bookings (
            id, session_id, itinerary_id,
            origin, destination, departure_date, return_date,
            trip_type, passengers, flight_class, direct_flights_only,
            passenger_name, passenger_email, card_last4,
            total_price, outbound_flight, inbound_flight,
            status, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
    `
	c := booking.Criteria
	var returnDate *time.Time
	if c.ReturnDate != nil {
		rd := c.ReturnDate.Time
		returnDate = &rd
	}
	_, err := tx.Exec(ctx, query,
		booking.ID, booking.SessionID, booking.ItineraryID,
		c.Origin, c.Destination, c.DepartureDate.Time, returnDate,
		string(c.TripType), c.Passengers, string(c.FlightClass), c.DirectFlightsOnly,
		booking.PassengerName, booking.PassengerEmail, booking.CardLast4,
		booking.TotalPrice, booking.OutboundFlight, booking.InboundFlight,
		string(booking.Status), booking.CreatedAt,
	)
	return err
}

func scanBooking(rows pgx.Rows) (models.Booking, error) {
	var (
		b          models.Booking
		departure  time.Time
		returnDate *time.Time
		tripType   string
		class      string
		status     string
	)
	err := rows.Scan(
		&b.ID, &b.SessionID, &b.ItineraryID,
		&b.Criteria.Origin, &b.Criteria.Destination, &departure, &returnDate,
		&tripType, &b.Criteria.Passengers, &class, &b.Criteria.DirectFlightsOnly,
		&b.PassengerName, &b.PassengerEmail, &b.CardLast4,
		&b.TotalPrice, &b.OutboundFlight, &b.InboundFlight,
		&status, &b.CreatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.Criteria.DepartureDate = dateOf(departure)
	if returnDate != nil {
		rd := dateOf(*returnDate)
		b.Criteria.ReturnDate = &rd
	}
	b.Criteria.TripType = models.TripType(tripType)
	b.Criteria.FlightClass = models.FlightClass(class)
	b.Status = models.BookingStatus(status)
	return b, nil
}

func dateOf(t time.Time) models.Date {
	return models.NewDate(t.Year(), t.Month(), t.Day())
}
