package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/repository"
)

// ReservationView is the client-facing shape of either reservation kind.
// Kind-specific fields are omitted for the other kind.
type ReservationView struct {
	ID              uint64                  `json:"id"`
	Kind            model.Kind              `json:"kind"`
	Status          model.ReservationStatus `json:"status"`
	TotalPriceCents int64                   `json:"total_price_cents"`
	CreatedAt       time.Time               `json:"created_at"`

	FlightID         uint64         `json:"flight_id,omitempty"`
	FlightInfo       string         `json:"flight_info,omitempty"`
	Seats            int            `json:"seats,omitempty"`
	ReturnFlightID   *uint64        `json:"return_flight_id,omitempty"`
	ReturnFlightInfo string         `json:"return_flight_info,omitempty"`
	TripType         model.TripType `json:"trip_type,omitempty"`

	HotelID   uint64 `json:"hotel_id,omitempty"`
	HotelName string `json:"hotel_name,omitempty"`
	CheckIn   string `json:"check_in,omitempty"`  // YYYY-MM-DD
	CheckOut  string `json:"check_out,omitempty"` // YYYY-MM-DD
	Rooms     int    `json:"rooms,omitempty"`
}

const dateLayout = "2006-01-02"

// labels resolves flight and hotel display labels, reading each row at
// most once.  A row deleted since the reservation was made renders as
// "#<id>".
type labels struct {
	st      Stores
	flights map[uint64]string
	hotels  map[uint64]string
}

func newLabels(st Stores) *labels {
	return &labels{st: st, flights: map[uint64]string{}, hotels: map[uint64]string{}}
}

func (l *labels) flight(ctx context.Context, id uint64) (string, error) {
	if s, ok := l.flights[id]; ok {
		return s, nil
	}
	f, err := l.st.Flights.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		l.flights[id] = fmt.Sprintf("#%d", id)
	case err != nil:
		return "", fmt.Errorf("load flight %d: %w", id, err)
	default:
		l.flights[id] = f.Info()
	}
	return l.flights[id], nil
}

func (l *labels) hotel(ctx context.Context, id uint64) (string, error) {
	if s, ok := l.hotels[id]; ok {
		return s, nil
	}
	h, err := l.st.Hotels.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		l.hotels[id] = fmt.Sprintf("#%d", id)
	case err != nil:
		return "", fmt.Errorf("load hotel %d: %w", id, err)
	default:
		l.hotels[id] = h.Name
	}
	return l.hotels[id], nil
}

func (l *labels) flightView(ctx context.Context, r *model.FlightReservation) (*ReservationView, error) {
	info, err := l.flight(ctx, r.FlightID)
	if err != nil {
		return nil, err
	}
	v := &ReservationView{
		ID:              r.ID,
		Kind:            model.KindFlight,
		Status:          r.Status,
		TotalPriceCents: r.TotalPriceCents,
		CreatedAt:       r.CreatedAt,
		FlightID:        r.FlightID,
		FlightInfo:      info,
		Seats:           r.Seats,
		ReturnFlightID:  r.ReturnFlightID,
		TripType:        r.TripType,
	}
	if r.ReturnFlightID != nil {
		if v.ReturnFlightInfo, err = l.flight(ctx, *r.ReturnFlightID); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (l *labels) hotelView(ctx context.Context, r *model.HotelReservation) (*ReservationView, error) {
	name, err := l.hotel(ctx, r.HotelID)
	if err != nil {
		return nil, err
	}
	return &ReservationView{
		ID:              r.ID,
		Kind:            model.KindHotel,
		Status:          r.Status,
		TotalPriceCents: r.TotalPriceCents,
		CreatedAt:       r.CreatedAt,
		HotelID:         r.HotelID,
		HotelName:       name,
		CheckIn:         r.CheckIn.Format(dateLayout),
		CheckOut:        r.CheckOut.Format(dateLayout),
		Rooms:           r.Rooms,
	}, nil
}

// merge wraps both kinds and orders them newest first.  Ties on
// created_at fall back to the higher id, flights before hotels.
func merge(flights []model.FlightReservation, hotels []model.HotelReservation) []model.Reservation {
	out := make([]model.Reservation, 0, len(flights)+len(hotels))
	for i := range flights {
		out = append(out, model.FromFlight(&flights[i]))
	}
	for i := range hotels {
		out = append(out, model.FromHotel(&hotels[i]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		if a.ID() != b.ID() {
			return a.ID() > b.ID()
		}
		return a.Kind == model.KindFlight && b.Kind == model.KindHotel
	})
	return out
}
