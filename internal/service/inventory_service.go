package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/repository"
)

// FlightInput carries the editable fields of a flight.
type FlightInput struct {
	FlightNumber   string
	Airline        string
	Origin         string
	Destination    string
	DepartureAt    time.Time
	ArrivalAt      time.Time
	BasePriceCents int64
	AvailableSeats int
	Status         string
}

// HotelInput carries the editable fields of a hotel.  On create an
// AvailableRooms of zero or less means "all rooms".
type HotelInput struct {
	Name               string
	Address            string
	City               string
	Country            string
	Stars              int
	PricePerNightCents int64
	TotalRooms         int
	AvailableRooms     int
	Description        string
	Amenities          []string
}

// InventoryService manages flights and hotels for administrators and
// serves client search.
type InventoryService struct {
	st  Stores
	log *zap.Logger
}

func NewInventoryService(st Stores, log *zap.Logger) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryService{st: st, log: log}
}

func (in *FlightInput) normalize() error {
	in.FlightNumber = strings.ToUpper(strings.TrimSpace(in.FlightNumber))
	in.Airline = strings.TrimSpace(in.Airline)
	in.Origin = strings.ToUpper(strings.TrimSpace(in.Origin))
	in.Destination = strings.ToUpper(strings.TrimSpace(in.Destination))
	in.Status = strings.ToUpper(strings.TrimSpace(in.Status))
	switch {
	case in.FlightNumber == "" || in.Airline == "" || in.Origin == "" || in.Destination == "":
		return invalidRequest("flight number, airline, origin and destination are required")
	case in.Origin == in.Destination:
		return invalidRequest("origin and destination must differ")
	case in.BasePriceCents <= 0:
		return invalidRequest("base price must be positive")
	case in.AvailableSeats < 0:
		return invalidRequest("available seats must not be negative")
	case !in.DepartureAt.IsZero() && !in.ArrivalAt.IsZero() && !in.ArrivalAt.After(in.DepartureAt):
		return invalidRequest("arrival must be after departure")
	}
	switch in.Status {
	case "":
		in.Status = model.FlightAvailable
		if in.AvailableSeats == 0 {
			in.Status = model.FlightFull
		}
	case model.FlightAvailable, model.FlightFull, model.FlightCanceled:
	default:
		return invalidRequest("unknown flight status %q", in.Status)
	}
	return nil
}

func (in FlightInput) apply(f *model.Flight) {
	f.FlightNumber = in.FlightNumber
	f.Airline = in.Airline
	f.Origin = in.Origin
	f.Destination = in.Destination
	f.DepartureAt = in.DepartureAt.UTC()
	f.ArrivalAt = in.ArrivalAt.UTC()
	f.BasePriceCents = in.BasePriceCents
	f.AvailableSeats = in.AvailableSeats
	f.Status = in.Status
}

// ListFlights searches flights.  Results may lag behind concurrent
// bookings.
func (s *InventoryService) ListFlights(ctx context.Context, f repository.FlightFilter) ([]model.Flight, int64, error) {
	items, total, err := s.st.Flights.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list flights: %w", err)
	}
	return items, total, nil
}

func (s *InventoryService) GetFlight(ctx context.Context, id uint64) (*model.Flight, error) {
	f, err := s.st.Flights.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("flight %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return f, nil
}

func (s *InventoryService) CreateFlight(ctx context.Context, in FlightInput) (*model.Flight, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	f := &model.Flight{}
	in.apply(f)
	err := s.st.Flights.Create(ctx, f)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, newError(KindConflict, "flight number %s already exists", in.FlightNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("create flight: %w", err)
	}
	s.log.Info("flight created", zap.Uint64("flight_id", f.ID), zap.String("flight_number", f.FlightNumber))
	return f, nil
}

// UpdateFlight overwrites a flight under its row lock, so the seat
// count cannot interleave with a booking.
func (s *InventoryService) UpdateFlight(ctx context.Context, id uint64, in FlightInput) (*model.Flight, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	var updated *model.Flight
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		f, err := s.st.Flights.LockTx(ctx, tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("flight %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("lock flight: %w", err)
		}
		in.apply(f)
		err = s.st.Flights.UpdateTx(ctx, tx, f)
		if errors.Is(err, repository.ErrDuplicate) {
			return newError(KindConflict, "flight number %s already exists", in.FlightNumber)
		}
		if err != nil {
			return fmt.Errorf("update flight: %w", err)
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("flight updated", zap.Uint64("flight_id", id))
	return updated, nil
}

func (s *InventoryService) DeleteFlight(ctx context.Context, id uint64) error {
	err := s.st.Flights.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound("flight %d not found", id)
	case errors.Is(err, repository.ErrReferenced):
		return newError(KindConflict, "flight %d has reservations and cannot be deleted", id)
	case err != nil:
		return fmt.Errorf("delete flight: %w", err)
	}
	s.log.Info("flight deleted", zap.Uint64("flight_id", id))
	return nil
}

func (in *HotelInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Name == "" || in.Address == "" || in.City == "" || in.Country == "":
		return invalidRequest("name, address, city and country are required")
	case in.Stars < 1 || in.Stars > 5:
		return invalidRequest("stars must be between 1 and 5")
	case in.PricePerNightCents <= 0:
		return invalidRequest("price per night must be positive")
	case in.TotalRooms < 1:
		return invalidRequest("total rooms must be at least 1")
	}
	if in.Amenities == nil {
		in.Amenities = []string{}
	}
	return nil
}

func (in HotelInput) apply(h *model.Hotel) {
	h.Name = in.Name
	h.Address = in.Address
	h.City = in.City
	h.Country = in.Country
	h.Stars = in.Stars
	h.PricePerNightCents = in.PricePerNightCents
	h.Description = in.Description
	h.Amenities = in.Amenities
}

func (s *InventoryService) ListHotels(ctx context.Context, f repository.HotelFilter) ([]model.Hotel, int64, error) {
	items, total, err := s.st.Hotels.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list hotels: %w", err)
	}
	return items, total, nil
}

func (s *InventoryService) GetHotel(ctx context.Context, id uint64) (*model.Hotel, error) {
	h, err := s.st.Hotels.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("hotel %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get hotel: %w", err)
	}
	return h, nil
}

// CreateHotel inserts a hotel.  Available rooms default to the total
// and never exceed it.
func (s *InventoryService) CreateHotel(ctx context.Context, in HotelInput) (*model.Hotel, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	h := &model.Hotel{TotalRooms: in.TotalRooms, AvailableRooms: in.AvailableRooms}
	in.apply(h)
	if h.AvailableRooms <= 0 || h.AvailableRooms > h.TotalRooms {
		h.AvailableRooms = h.TotalRooms
	}
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		return s.st.Hotels.CreateTx(ctx, tx, h)
	})
	if err != nil {
		return nil, fmt.Errorf("create hotel: %w", err)
	}
	s.log.Info("hotel created", zap.Uint64("hotel_id", h.ID), zap.String("name", h.Name))
	return s.GetHotel(ctx, h.ID)
}

// UpdateHotel overwrites a hotel under its row lock.  Rooms currently
// held by reservations stay held: the new available count is the new
// total minus the held rooms, floored at zero.
func (s *InventoryService) UpdateHotel(ctx context.Context, id uint64, in HotelInput) (*model.Hotel, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		h, err := s.st.Hotels.LockTx(ctx, tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("hotel %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("lock hotel: %w", err)
		}
		held := h.TotalRooms - h.AvailableRooms
		in.apply(h)
		h.TotalRooms = in.TotalRooms
		h.AvailableRooms = max(0, in.TotalRooms-held)
		if err := s.st.Hotels.UpdateTx(ctx, tx, h); err != nil {
			return fmt.Errorf("update hotel: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("hotel updated", zap.Uint64("hotel_id", id))
	return s.GetHotel(ctx, id)
}

func (s *InventoryService) DeleteHotel(ctx context.Context, id uint64) error {
	err := s.st.Hotels.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound("hotel %d not found", id)
	case errors.Is(err, repository.ErrReferenced):
		return newError(KindConflict, "hotel %d has reservations and cannot be deleted", id)
	case err != nil:
		return fmt.Errorf("delete hotel: %w", err)
	}
	s.log.Info("hotel deleted", zap.Uint64("hotel_id", id))
	return nil
}
