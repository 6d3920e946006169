//go:build integration

package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/repository"
	"github.com/iliyamo/travel-reservations/internal/service"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	var err error
	testDB, err = database.Open(
		getEnv("TEST_DB_USER", "root"),
		getEnv("TEST_DB_PASS", "root"),
		getEnv("TEST_DB_HOST", "127.0.0.1"),
		getEnv("TEST_DB_PORT", "3307"),
		getEnv("TEST_DB_NAME", "travel_test"),
	)
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}
	if err := database.Migrate(context.Background(), testDB); err != nil {
		log.Fatalf("failed to migrate test database: %v", err)
	}
	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func cleanTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"flight_reservations", "hotel_reservations", "payments",
		"hotel_amenities", "hotels", "flights", "refresh_tokens", "users"} {
		_, err := testDB.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
}

func stores() service.Stores {
	return service.Stores{
		Tx:                 database.NewTransactor(testDB, 5, nil),
		Users:              repository.NewUserRepo(testDB),
		Flights:            repository.NewFlightRepo(testDB),
		Hotels:             repository.NewHotelRepo(testDB),
		FlightReservations: repository.NewFlightReservationRepo(testDB),
		HotelReservations:  repository.NewHotelReservationRepo(testDB),
		Payments:           repository.NewPaymentRepo(testDB),
		Stats:              repository.NewStatsRepo(testDB),
	}
}

func createClients(t *testing.T, n int) []uint64 {
	t.Helper()
	users := repository.NewUserRepo(testDB)
	ids := make([]uint64, n)
	for i := range ids {
		id, err := users.Create(context.Background(), fmt.Sprintf("Client %d", i),
			fmt.Sprintf("client-%03d@example.com", i), "password123", model.RoleClient, 4)
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func createFlight(t *testing.T, number, origin, dest string, dep time.Time, seats int) *model.Flight {
	t.Helper()
	f := &model.Flight{
		FlightNumber: number, Airline: "Atlas", Origin: origin, Destination: dest,
		DepartureAt: dep, ArrivalAt: dep.Add(3 * time.Hour),
		BasePriceCents: 10000, AvailableSeats: seats, Status: model.FlightAvailable,
	}
	require.NoError(t, repository.NewFlightRepo(testDB).Create(context.Background(), f))
	return f
}

// 20 clients race for 5 seats: exactly 5 bookings succeed and the
// counter ends at zero.
func TestConcurrentFlightBooking(t *testing.T) {
	cleanTables(t)
	clients := createClients(t, 20)
	f := createFlight(t, "AT-100", "CMN", "CDG", time.Now().Add(48*time.Hour).UTC().Truncate(time.Second), 5)
	svc := service.NewReservationService(stores(), nil, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	booked, rejected := 0, 0
	for _, cid := range clients {
		wg.Add(1)
		go func(cid uint64) {
			defer wg.Done()
			_, err := svc.BookFlight(context.Background(), cid, service.BookFlightInput{FlightID: f.ID, Seats: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, service.ErrInsufficientInventory):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(cid)
	}
	wg.Wait()

	assert.Equal(t, 5, booked)
	assert.Equal(t, 15, rejected)

	after, err := repository.NewFlightRepo(testDB).GetByID(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.AvailableSeats)
	assert.Equal(t, model.FlightFull, after.Status)
}

// Round trips compete with one-way bookings for the return leg.  No
// booking may fail with anything but insufficient inventory, and the
// counters must match the reservations that were made.
func TestConcurrentRoundTripsAndOneWays(t *testing.T) {
	cleanTables(t)
	clients := createClients(t, 12)
	dep := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	out := createFlight(t, "AT-200", "CMN", "CDG", dep, 4)
	back := createFlight(t, "AT-201", "CDG", "CMN", dep.Add(72*time.Hour), 4)
	svc := service.NewReservationService(stores(), nil, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	roundTrips, oneWays := 0, 0
	var unexpected []error
	for i, cid := range clients {
		in := service.BookFlightInput{FlightID: out.ID, ReturnFlightID: &back.ID, Seats: 1}
		if i%2 == 1 {
			in = service.BookFlightInput{FlightID: back.ID, Seats: 1}
		}
		wg.Add(1)
		go func(cid uint64, in service.BookFlightInput) {
			defer wg.Done()
			_, err := svc.BookFlight(context.Background(), cid, in)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && in.ReturnFlightID != nil:
				roundTrips++
			case err == nil:
				oneWays++
			case !errors.Is(err, service.ErrInsufficientInventory):
				unexpected = append(unexpected, err)
			}
		}(cid, in)
	}
	wg.Wait()
	require.Empty(t, unexpected)
	assert.Equal(t, 4, roundTrips+oneWays, "the return leg sells out exactly")

	repo := repository.NewFlightRepo(testDB)
	o, err := repo.GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	b, err := repo.GetByID(context.Background(), back.ID)
	require.NoError(t, err)
	assert.Equal(t, 4-roundTrips, o.AvailableSeats)
	assert.Equal(t, 0, b.AvailableSeats)
}
