package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/queue"
	"github.com/iliyamo/travel-reservations/internal/repository"
)

// PaymentView is returned by a successful payment.
type PaymentView struct {
	ID          uint64    `json:"id"`
	Reference   string    `json:"reference"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	Method      string    `json:"method"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentService confirms reservations with a mocked payment that always
// succeeds once the reservation is payable.
type PaymentService struct {
	lifecycle
}

func NewPaymentService(st Stores, events EventPublisher, log *zap.Logger) *PaymentService {
	return &PaymentService{lifecycle: newLifecycle(st, events, log)}
}

// checkPayable applies the payment preconditions to a locked
// reservation, in order.
func (s *PaymentService) checkPayable(ctx context.Context, tx database.DBTX, status model.ReservationStatus, paymentID *uint64) error {
	if status == model.StatusCanceled {
		return newError(KindImmutable, "reservation is canceled and cannot be paid")
	}
	if status != model.StatusPendingPayment {
		return newError(KindInvalidState, "reservation is %s, only PENDING_PAYMENT can be paid", status)
	}
	if paymentID != nil {
		p, err := s.st.Payments.GetByIDTx(ctx, tx, *paymentID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("load linked payment: %w", err)
		}
		if err == nil && p.Status == model.PaymentPaid {
			return newError(KindAlreadyPaid, "reservation is already paid (%s)", p.Reference)
		}
	}
	return nil
}

func (s *PaymentService) newPayment(ctx context.Context, tx database.DBTX, clientID uint64, amount int64, method string) (*model.Payment, error) {
	p := &model.Payment{
		Reference:   "PAY-" + uuid.NewString(),
		AmountCents: amount,
		Status:      model.PaymentPaid,
		Method:      method,
		ClientID:    clientID,
	}
	if err := s.st.Payments.CreateTx(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return p, nil
}

func normalizeMethod(method string) (string, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "", invalidRequest("payment method is required")
	}
	return method, nil
}

// PayFlight pays the client's pending flight reservation and confirms
// it.  The payment row, the link and the status change commit together.
func (s *PaymentService) PayFlight(ctx context.Context, clientID, reservationID uint64, method string) (*PaymentView, error) {
	method, err := normalizeMethod(method)
	if err != nil {
		return nil, err
	}
	var (
		paid *model.Payment
		res  *model.FlightReservation
	)
	err = s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockFlightReservation(ctx, tx, reservationID, clientID)
		if err != nil {
			return err
		}
		if err := s.checkPayable(ctx, tx, r.Status, r.PaymentID); err != nil {
			return err
		}
		p, err := s.newPayment(ctx, tx, clientID, r.TotalPriceCents, method)
		if err != nil {
			return err
		}
		err = s.st.FlightReservations.ConfirmTx(ctx, tx, r.ID, p.ID)
		if errors.Is(err, repository.ErrConflict) {
			return newError(KindInvalidState, "flight reservation %d is no longer payable", r.ID)
		}
		if err != nil {
			return fmt.Errorf("confirm flight reservation: %w", err)
		}
		r.Status = model.StatusConfirmed
		r.PaymentID = &p.ID
		paid, res = p, r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("flight reservation paid",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("payment_id", paid.ID),
		zap.String("reference", paid.Reference))
	ev := flightEvent(queue.EventConfirmed, actorClient, res)
	ev.PaymentRef = paid.Reference
	s.publish(ctx, ev)
	return paymentView(paid), nil
}

// PayHotel pays the client's pending hotel reservation and confirms it.
func (s *PaymentService) PayHotel(ctx context.Context, clientID, reservationID uint64, method string) (*PaymentView, error) {
	method, err := normalizeMethod(method)
	if err != nil {
		return nil, err
	}
	var (
		paid *model.Payment
		res  *model.HotelReservation
	)
	err = s.st.Tx.InTx(ctx, func(tx database.DBTX) error {
		r, err := s.lockHotelReservation(ctx, tx, reservationID, clientID)
		if err != nil {
			return err
		}
		if err := s.checkPayable(ctx, tx, r.Status, r.PaymentID); err != nil {
			return err
		}
		p, err := s.newPayment(ctx, tx, clientID, r.TotalPriceCents, method)
		if err != nil {
			return err
		}
		err = s.st.HotelReservations.ConfirmTx(ctx, tx, r.ID, p.ID)
		if errors.Is(err, repository.ErrConflict) {
			return newError(KindInvalidState, "hotel reservation %d is no longer payable", r.ID)
		}
		if err != nil {
			return fmt.Errorf("confirm hotel reservation: %w", err)
		}
		r.Status = model.StatusConfirmed
		r.PaymentID = &p.ID
		paid, res = p, r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("hotel reservation paid",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("payment_id", paid.ID),
		zap.String("reference", paid.Reference))
	ev := hotelEvent(queue.EventConfirmed, actorClient, res)
	ev.PaymentRef = paid.Reference
	s.publish(ctx, ev)
	return paymentView(paid), nil
}

func paymentView(p *model.Payment) *PaymentView {
	return &PaymentView{
		ID:          p.ID,
		Reference:   p.Reference,
		AmountCents: p.AmountCents,
		Status:      p.Status,
		Method:      p.Method,
		CreatedAt:   p.CreatedAt,
	}
}
