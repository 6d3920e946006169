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

// AdminReservationRow is one line of the admin reservation listing.
type AdminReservationRow struct {
	Ref         string                  `json:"ref"` // FLIGHT-12 | HOTEL-7
	ID          uint64                  `json:"id"`
	Kind        model.Kind              `json:"kind"`
	ClientID    uint64                  `json:"client_id"`
	ClientName  string                  `json:"client_name"`
	ClientEmail string                  `json:"client_email"`
	CreatedAt   time.Time               `json:"created_at"`
	AmountCents int64                   `json:"amount_cents"`
	Status      model.ReservationStatus `json:"status"`
}

// AdminReservationService lets administrators see, cancel and delete any
// reservation.  Cancellation and restitution follow the same rules as
// the client path, without the ownership check.
type AdminReservationService struct {
	lifecycle
}

func NewAdminReservationService(st Stores, events EventPublisher, log *zap.Logger) *AdminReservationService {
	return &AdminReservationService{lifecycle: newLifecycle(st, events, log)}
}

// List returns every reservation of both kinds, newest first.
func (s *AdminReservationService) List(ctx context.Context) ([]AdminReservationRow, error) {
	flights, err := s.st.FlightReservations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flight reservations: %w", err)
	}
	hotels, err := s.st.HotelReservations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotel reservations: %w", err)
	}

	users := map[uint64]*model.User{}
	rows := make([]AdminReservationRow, 0, len(flights)+len(hotels))
	for _, r := range merge(flights, hotels) {
		u, ok := users[r.ClientID()]
		if !ok {
			u, err = s.st.Users.GetByID(ctx, r.ClientID())
			if errors.Is(err, repository.ErrNotFound) {
				u, err = &model.User{ID: r.ClientID()}, nil
			}
			if err != nil {
				return nil, fmt.Errorf("load client %d: %w", r.ClientID(), err)
			}
			users[r.ClientID()] = u
		}
		rows = append(rows, AdminReservationRow{
			Ref:         fmt.Sprintf("%s-%d", r.Kind, r.ID()),
			ID:          r.ID(),
			Kind:        r.Kind,
			ClientID:    r.ClientID(),
			ClientName:  u.FullName,
			ClientEmail: u.Email,
			CreatedAt:   r.CreatedAt(),
			AmountCents: r.TotalPriceCents(),
			Status:      r.Status(),
		})
	}
	return rows, nil
}

// CancelFlight cancels any pending flight reservation.
func (s *AdminReservationService) CancelFlight(ctx context.Context, id uint64) (*ReservationView, error) {
	var canceled *model.FlightReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockFlightReservation(ctx, tx, id, 0)
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
	s.log.Info("flight reservation canceled by admin", zap.Uint64("reservation_id", id))
	s.publish(ctx, flightEvent(queue.EventCanceled, actorAdmin, canceled))
	return newLabels(s.st).flightView(ctx, canceled)
}

// CancelHotel cancels any pending hotel reservation.
func (s *AdminReservationService) CancelHotel(ctx context.Context, id uint64) (*ReservationView, error) {
	var canceled *model.HotelReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockHotelReservation(ctx, tx, id, 0)
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
	s.log.Info("hotel reservation canceled by admin", zap.Uint64("reservation_id", id))
	s.publish(ctx, hotelEvent(queue.EventCanceled, actorAdmin, canceled))
	return newLabels(s.st).hotelView(ctx, canceled)
}

// DeleteFlight removes a flight reservation.  A pending reservation gives
// its seats back first; a confirmed one cannot be deleted.
func (s *AdminReservationService) DeleteFlight(ctx context.Context, id uint64) error {
	var deleted *model.FlightReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockFlightReservation(ctx, tx, id, 0)
		if err != nil {
			return err
		}
		if r.Status == model.StatusConfirmed {
			return newError(KindImmutable, "flight reservation %d is confirmed and cannot be deleted", r.ID)
		}
		if r.Status != model.StatusCanceled {
			if err := s.restoreFlightTx(ctx, tx, r); err != nil {
				return err
			}
		}
		if err := s.st.FlightReservations.DeleteTx(ctx, tx, r.ID); err != nil {
			return fmt.Errorf("delete flight reservation: %w", err)
		}
		deleted = r
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("flight reservation deleted by admin", zap.Uint64("reservation_id", id))
	s.publish(ctx, flightEvent(queue.EventDeleted, actorAdmin, deleted))
	return nil
}

// DeleteHotel removes a hotel reservation, restoring rooms when it was
// still pending.
func (s *AdminReservationService) DeleteHotel(ctx context.Context, id uint64) error {
	var deleted *model.HotelReservation
	err := s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockHotelReservation(ctx, tx, id, 0)
		if err != nil {
			return err
		}
		if r.Status == model.StatusConfirmed {
			return newError(KindImmutable, "hotel reservation %d is confirmed and cannot be deleted", r.ID)
		}
		if r.Status != model.StatusCanceled {
			if err := s.restoreHotelTx(ctx, tx, r); err != nil {
				return err
			}
		}
		if err := s.st.HotelReservations.DeleteTx(ctx, tx, r.ID); err != nil {
			return fmt.Errorf("delete hotel reservation: %w", err)
		}
		deleted = r
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("hotel reservation deleted by admin", zap.Uint64("reservation_id", id))
	s.publish(ctx, hotelEvent(queue.EventDeleted, actorAdmin, deleted))
	return nil
}
