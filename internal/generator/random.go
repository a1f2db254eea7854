// Package generator fabricates itineraries in place of a live inventory service.
package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	models "github.com/chrisdamba/skybooker/internal"
)

const (
	DefaultDelay = 1500 * time.Millisecond

	minResults    = 15
	resultsSpread = 10
	basePrice     = 80.0
	priceSpread   = 120.0
	stopSurcharge = 20.0
)

var airlines = []string{"TAP Air Portugal", "Ryanair", "Iberia", "Air Europa", "EasyJet"}

// Source is the subset of *rand.Rand the generator draws from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

type Option func(*Random)

func WithDelay(d time.Duration) Option {
	return func(r *Random) {
		r.delay = d
	}
}

func WithSource(src Source) Option {
	return func(r *Random) {
		r.src = src
	}
}

// Random answers every search with 15 to 24 random itineraries after a fixed delay.
type Random struct {
	mu    sync.Mutex
	src   Source
	delay time.Duration
}

func NewRandom(opts ...Option) *Random {
	r := &Random{
		src:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: DefaultDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Random) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightItinerary, error) {
	if err := sleep(ctx, r.delay); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	count := minResults + r.src.Intn(resultsSpread)
	results := make([]models.FlightItinerary, 0, count)
	for i := 0; i < count; i++ {
		outbound := r.flight(i*2, criteria, true)
		inbound := r.flight(i*2+1, criteria, false)
		price := basePrice + r.src.Float64()*priceSpread +
			float64(outbound.Stops)*stopSurcharge + float64(inbound.Stops)*stopSurcharge

		results = append(results, models.FlightItinerary{
			ID:            fmt.Sprintf("itinerary-%d", i),
			Outbound:      outbound,
			Inbound:       inbound,
			TotalPrice:    math.Round(price),
			TotalDuration: fmt.Sprintf("%dh %dm", 4+r.src.Intn(5), r.src.Intn(59)),
		})
	}
	return results, nil
}

func (r *Random) flight(id int, criteria models.SearchCriteria, outbound bool) models.Flight {
	airline := airlines[r.src.Intn(len(airlines))]

	departureHour := 6 + r.src.Intn(15)
	departureMinute := "05"
	if r.src.Float64() <= 0.5 {
		departureMinute = "45"
		if r.src.Float64() > 0.5 {
			departureMinute = "30"
		}
	}
	durationHours := 1 + r.src.Intn(2)
	durationMinutes := r.src.Intn(59)
	arrivalHour := (departureHour + durationHours) % 24

	stops := 0
	if r.src.Float64() > 0.7 && !criteria.DirectFlightsOnly {
		stops = 1
	}

	from, to := criteria.Origin, criteria.Destination
	if !outbound {
		from, to = to, from
	}

	return models.Flight{
		ID:           fmt.Sprintf("flight-%d", id),
		Airline:      airline,
		FlightNumber: fmt.Sprintf("%s%d", strings.ToUpper(prefix(airline, 2)), 100+r.src.Intn(899)),
		Departure: models.Endpoint{
			Time:        fmt.Sprintf("%02d:%s", departureHour, departureMinute),
			Airport:     from,
			AirportCode: strings.ToUpper(prefix(from, 3)),
		},
		Arrival: models.Endpoint{
			Time:        fmt.Sprintf("%02d:%02d", arrivalHour, r.src.Intn(59)),
			Airport:     to,
			AirportCode: strings.ToUpper(prefix(to, 3)),
		},
		Duration: fmt.Sprintf("%dh %dm", durationHours, durationMinutes),
		Stops:    stops,
	}
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) < n {
		return s
	}
	return string(runes[:n])
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
