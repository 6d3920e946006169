package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/queue"
	"github.com/iliyamo/travel-reservations/internal/repository"
)

// BookFlightInput requests Seats seats on FlightID and, for a round
// trip, on ReturnFlightID as well.
type BookFlightInput struct {
	FlightID       uint64
	ReturnFlightID *uint64
	Seats          int
}

// BookHotelInput requests Rooms rooms for the nights between CheckIn
// and CheckOut.
type BookHotelInput struct {
	HotelID  uint64
	CheckIn  time.Time
	CheckOut time.Time
	Rooms    int
}

// ReservationService implements the client side of the reservation
// lifecycle: booking, cancellation and listing.
type ReservationService struct {
	lifecycle
}

func NewReservationService(st Stores, events EventPublisher, log *zap.Logger) *ReservationService {
	return &ReservationService{lifecycle: newLifecycle(st, events, log)}
}

// requireClient fails with NotFound unless the client exists and is
// enabled.
func (s *ReservationService) requireClient(ctx context.Context, clientID uint64) error {
	u, err := s.st.Users.GetByID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !u.Enabled) {
		return notFound("client %d not found", clientID)
	}
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}
	return nil
}

// BookFlight reserves seats on one flight or on both legs of a round
// trip, in a single transaction.  Seats are held until the reservation
// is paid or canceled.
func (s *ReservationService) BookFlight(ctx context.Context, clientID uint64, in BookFlightInput) (*ReservationView, error) {
	if in.Seats < 1 {
		return nil, invalidRequest("seats must be at least 1")
	}
	if err := s.requireClient(ctx, clientID); err != nil {
		return nil, err
	}

	var created *model.FlightReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		locked, err := s.lockFlights(ctx, tx, in)
		if err != nil {
			return err
		}
		out, ok := locked[in.FlightID]
		if !ok {
			return notFound("flight %d not found", in.FlightID)
		}
		if out.AvailableSeats < in.Seats {
			return newError(KindInsufficientInventory, "flight %s has %d seats left, %d requested",
				out.FlightNumber, out.AvailableSeats, in.Seats)
		}
		total := out.BasePriceCents * int64(in.Seats)
		trip := model.OneWay

		var back *model.Flight
		if in.ReturnFlightID != nil {
			if *in.ReturnFlightID == in.FlightID {
				return invalidRequest("return flight must differ from the outbound flight")
			}
			if back, ok = locked[*in.ReturnFlightID]; !ok {
				return notFound("return flight %d not found", *in.ReturnFlightID)
			}
			if back.AvailableSeats < in.Seats {
				return newError(KindInsufficientInventory, "return flight %s has %d seats left, %d requested",
					back.FlightNumber, back.AvailableSeats, in.Seats)
			}
			if !back.IsReverseOf(out) {
				return newError(KindInvalidRoute, "return flight %s must fly %s→%s",
					back.FlightNumber, out.Destination, out.Origin)
			}
			if !out.DepartureAt.IsZero() && !back.DepartureAt.IsZero() && !back.DepartureAt.After(out.DepartureAt) {
				return newError(KindInvalidSchedule, "return flight %s must depart after the outbound flight",
					back.FlightNumber)
			}
			total += back.BasePriceCents * int64(in.Seats)
			trip = model.RoundTrip
		}

		if err := s.takeSeats(ctx, tx, out, in.Seats); err != nil {
			return err
		}
		if back != nil {
			if err := s.takeSeats(ctx, tx, back, in.Seats); err != nil {
				return err
			}
		}

		r := &model.FlightReservation{
			ClientID:        clientID,
			FlightID:        in.FlightID,
			ReturnFlightID:  in.ReturnFlightID,
			TripType:        trip,
			Seats:           in.Seats,
			TotalPriceCents: total,
			Status:          model.StatusPendingPayment,
		}
		if err := s.st.FlightReservations.CreateTx(ctx, tx, r); err != nil {
			return fmt.Errorf("create flight reservation: %w", err)
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("flight reservation created",
		zap.Uint64("reservation_id", created.ID),
		zap.Uint64("client_id", clientID),
		zap.Int("seats", created.Seats),
		zap.String("trip_type", string(created.TripType)),
		zap.Int64("total_price_cents", created.TotalPriceCents))
	s.publish(ctx, flightEvent(queue.EventCreated, actorClient, created))
	return newLabels(s.st).flightView(ctx, created)
}

// lockFlights row-locks the outbound flight and, when given and
// distinct, the return flight.  Rows are locked in ascending id order so
// two opposite round trips cannot deadlock.  Missing flights are absent
// from the result.
func (s *ReservationService) lockFlights(ctx context.Context, tx database.DBTX, in BookFlightInput) (map[uint64]*model.Flight, error) {
	ids := []uint64{in.FlightID}
	if in.ReturnFlightID != nil && *in.ReturnFlightID != in.FlightID {
		ids = append(ids, *in.ReturnFlightID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[uint64]*model.Flight, len(ids))
	for _, id := range ids {
		f, err := s.st.Flights.LockTx(ctx, tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock flight %d: %w", id, err)
		}
		locked[id] = f
	}
	return locked, nil
}

func (s *ReservationService) takeSeats(ctx context.Context, tx database.DBTX, f *model.Flight, n int) error {
	err := s.st.Flights.DecrementSeatsTx(ctx, tx, f.ID, n)
	if errors.Is(err, repository.ErrInsufficientInventory) {
		return newError(KindInsufficientInventory, "flight %s has not enough seats left", f.FlightNumber)
	}
	if err != nil {
		return fmt.Errorf("take seats on flight %d: %w", f.ID, err)
	}
	return nil
}

// BookHotel reserves rooms in a hotel for the requested nights.
func (s *ReservationService) BookHotel(ctx context.Context, clientID uint64, in BookHotelInput) (*ReservationView, error) {
	if in.Rooms < 1 {
		return nil, invalidRequest("rooms must be at least 1")
	}
	nights := model.NightsBetween(in.CheckIn, in.CheckOut)
	if nights <= 0 {
		return nil, invalidRequest("check-out must be after check-in")
	}
	if err := s.requireClient(ctx, clientID); err != nil {
		return nil, err
	}

	var created *model.HotelReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		h, err := s.st.Hotels.LockTx(ctx, tx, in.HotelID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("hotel %d not found", in.HotelID)
		}
		if err != nil {
			return fmt.Errorf("lock hotel: %w", err)
		}
		if h.AvailableRooms < in.Rooms {
			return newError(KindInsufficientInventory, "hotel %s has %d rooms left, %d requested",
				h.Name, h.AvailableRooms, in.Rooms)
		}
		err = s.st.Hotels.DecrementRoomsTx(ctx, tx, h.ID, in.Rooms)
		if errors.Is(err, repository.ErrInsufficientInventory) {
			return newError(KindInsufficientInventory, "hotel %s has not enough rooms left", h.Name)
		}
		if err != nil {
			return fmt.Errorf("take rooms: %w", err)
		}

		r := &model.HotelReservation{
			ClientID:        clientID,
			HotelID:         h.ID,
			CheckIn:         dateOnly(in.CheckIn),
			CheckOut:        dateOnly(in.CheckOut),
			Rooms:           in.Rooms,
			TotalPriceCents: h.PricePerNightCents * int64(nights) * int64(in.Rooms),
			Status:          model.StatusPendingPayment,
		}
		if err := s.st.HotelReservations.CreateTx(ctx, tx, r); err != nil {
			return fmt.Errorf("create hotel reservation: %w", err)
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("hotel reservation created",
		zap.Uint64("reservation_id", created.ID),
		zap.Uint64("client_id", clientID),
		zap.Int("rooms", created.Rooms),
		zap.Int("nights", nights),
		zap.Int64("total_price_cents", created.TotalPriceCents))
	s.publish(ctx, hotelEvent(queue.EventCreated, actorClient, created))
	return newLabels(s.st).hotelView(ctx, created)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CancelFlight cancels the client's own pending flight reservation and
// restores its seats.
func (s *ReservationService) CancelFlight(ctx context.Context, clientID, id uint64) (*ReservationView, error) {
	var canceled *model.FlightReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockFlightReservation(ctx, tx, id, clientID)
		if err != nil {
			return err
		}
		if err := s.cancelFlightTx(ctx, tx, r); err != nil {
			return err
		}
		canceled = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("flight reservation canceled", zap.Uint64("reservation_id", id), zap.Uint64("client_id", clientID))
	s.publish(ctx, flightEvent(queue.EventCanceled, actorClient, canceled))
	return newLabels(s.st).flightView(ctx, canceled)
}

// CancelHotel cancels the client's own pending hotel reservation and
// restores its rooms.
func (s *ReservationService) CancelHotel(ctx context.Context, clientID, id uint64) (*ReservationView, error) {
	var canceled *model.HotelReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockHotelReservation(ctx, tx, id, clientID)
		if err != nil {
			return err
		}
		if err := s.cancelHotelTx(ctx, tx, r); err != nil {
			return err
		}
		canceled = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("hotel reservation canceled", zap.Uint64("reservation_id", id), zap.Uint64("client_id", clientID))
	s.publish(ctx, hotelEvent(queue.EventCanceled, actorClient, canceled))
	return newLabels(s.st).hotelView(ctx, canceled)
}

// MyReservations lists both kinds of the client's reservations, newest
// first.
func (s *ReservationService) MyReservations(ctx context.Context, clientID uint64) ([]ReservationView, error) {
	flights, err := s.st.FlightReservations.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list flight reservations: %w", err)
	}
	hotels, err := s.st.HotelReservations.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list hotel reservations: %w", err)
	}

	lb := newLabels(s.st)
	views := make([]ReservationView, 0, len(flights)+len(hotels))
	for _, r := range merge(flights, hotels) {
		var (
			v   *ReservationView
			err error
		)
		if r.Kind == model.KindFlight {
			v, err = lb.flightView(ctx, r.Flight)
		} else {
			v, err = lb.hotelView(ctx, r.Hotel)
		}
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}
