package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/queue"
	"github.com/iliyamo/travel-reservations/internal/repository"
)

// Actors recorded on published events.
const (
	actorClient = model.RoleClient
	actorAdmin  = model.RoleAdmin
)

// lifecycle holds the stores and the reservation rules shared by the
// client and admin paths: cancellation, deletion and inventory
// restitution.
type lifecycle struct {
	st     Stores
	events EventPublisher
	log    *zap.Logger
}

func newLifecycle(st Stores, events EventPublisher, log *zap.Logger) lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return lifecycle{st: st, events: events, log: log}
}

// cancelFlightTx cancels a locked flight reservation and gives its seats
// back on every leg.
func (l lifecycle) cancelFlightTx(ctx context.Context, tx database.DBTX, r *model.FlightReservation) error {
	switch r.Status {
	case model.StatusCanceled:
		return newError(KindAlreadyCanceled, "flight reservation %d is already canceled", r.ID)
	case model.StatusConfirmed:
		return newError(KindImmutable, "flight reservation %d is confirmed and cannot be canceled", r.ID)
	}
	if err := l.restoreFlightTx(ctx, tx, r); err != nil {
		return err
	}
	if err := l.st.FlightReservations.SetStatusTx(ctx, tx, r.ID, model.StatusCanceled); err != nil {
		return fmt.Errorf("cancel flight reservation: %w", err)
	}
	r.Status = model.StatusCanceled
	return nil
}

func (l lifecycle) restoreFlightTx(ctx context.Context, tx database.DBTX, r *model.FlightReservation) error {
	if err := l.st.Flights.IncrementSeatsTx(ctx, tx, r.FlightID, r.Seats); err != nil {
		return fmt.Errorf("restore outbound seats: %w", err)
	}
	if r.ReturnFlightID != nil {
		if err := l.st.Flights.IncrementSeatsTx(ctx, tx, *r.ReturnFlightID, r.Seats); err != nil {
			return fmt.Errorf("restore return seats: %w", err)
		}
	}
	return nil
}

// cancelHotelTx cancels a locked hotel reservation and gives its rooms
// back.
func (l lifecycle) cancelHotelTx(ctx context.Context, tx database.DBTX, r *model.HotelReservation) error {
	switch r.Status {
	case model.StatusCanceled:
		return newError(KindAlreadyCanceled, "hotel reservation %d is already canceled", r.ID)
	case model.StatusConfirmed:
		return newError(KindImmutable, "hotel reservation %d is confirmed and cannot be canceled", r.ID)
	}
	if err := l.restoreHotelTx(ctx, tx, r); err != nil {
		return err
	}
	if err := l.st.HotelReservations.SetStatusTx(ctx, tx, r.ID, model.StatusCanceled); err != nil {
		return fmt.Errorf("cancel hotel reservation: %w", err)
	}
	r.Status = model.StatusCanceled
	return nil
}

func (l lifecycle) restoreHotelTx(ctx context.Context, tx database.DBTX, r *model.HotelReservation) error {
	if err := l.st.Hotels.IncrementRoomsTx(ctx, tx, r.HotelID, r.Rooms); err != nil {
		return fmt.Errorf("restore rooms: %w", err)
	}
	return nil
}

// lockFlightReservation locks by id, adding the ownership predicate when
// clientID is non-zero.
func (l lifecycle) lockFlightReservation(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.FlightReservation, error) {
	var (
		r   *model.FlightReservation
		err error
	)
	if clientID == 0 {
		r, err = l.st.FlightReservations.LockTx(ctx, tx, id)
	} else {
		r, err = l.st.FlightReservations.LockForClientTx(ctx, tx, id, clientID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("flight reservation %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock flight reservation: %w", err)
	}
	return r, nil
}

func (l lifecycle) lockHotelReservation(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.HotelReservation, error) {
	var (
		r   *model.HotelReservation
		err error
	)
	if clientID == 0 {
		r, err = l.st.HotelReservations.LockTx(ctx, tx, id)
	} else {
		r, err = l.st.HotelReservations.LockForClientTx(ctx, tx, id, clientID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("hotel reservation %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock hotel reservation: %w", err)
	}
	return r, nil
}

// publish sends ev after commit.  Failures are logged and dropped: the
// reservation change is already durable.
func (l lifecycle) publish(ctx context.Context, ev queue.ReservationEvent) {
	if l.events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := l.events.PublishReservationEvent(pctx, ev); err != nil {
		l.log.Warn("publish reservation event failed",
			zap.String("type", ev.Type),
			zap.String("kind", ev.Kind),
			zap.Uint64("reservation_id", ev.ReservationID),
			zap.Error(err))
	}
}

func flightEvent(typ, actor string, r *model.FlightReservation) queue.ReservationEvent {
	return queue.ReservationEvent{
		Type:            typ,
		Kind:            string(model.KindFlight),
		ReservationID:   r.ID,
		ClientID:        r.ClientID,
		Status:          string(r.Status),
		TotalPriceCents: r.TotalPriceCents,
		Actor:           actor,
	}
}

func hotelEvent(typ, actor string, r *model.HotelReservation) queue.ReservationEvent {
	return queue.ReservationEvent{
		Type:            typ,
		Kind:            string(model.KindHotel),
		ReservationID:   r.ID,
		ClientID:        r.ClientID,
		Status:          string(r.Status),
		TotalPriceCents: r.TotalPriceCents,
		Actor:           actor,
	}
}
