package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/queue"
)

type paymentFixture struct {
	m      *memStore
	pub    *recordingPublisher
	book   *ReservationService
	pay    *PaymentService
	client uint64
	flight uint64
	hotel  uint64
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	m := newMemStore()
	pub := &recordingPublisher{}
	return &paymentFixture{
		m:      m,
		pub:    pub,
		book:   NewReservationService(m.stores(), pub, nil),
		pay:    NewPaymentService(m.stores(), pub, nil),
		client: m.addClient("amina"),
		flight: m.addFlight("AT-204", "CMN", "CDG", departure, 12500, 10),
		hotel:  m.addHotel("Riad Atlas", 8000, 5, 5),
	}
}

func (f *paymentFixture) bookFlight(t *testing.T) *ReservationView {
	t.Helper()
	v, err := f.book.BookFlight(context.Background(), f.client, BookFlightInput{FlightID: f.flight, Seats: 2})
	require.NoError(t, err)
	return v
}

func (f *paymentFixture) bookHotel(t *testing.T) *ReservationView {
	t.Helper()
	in := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	v, err := f.book.BookHotel(context.Background(), f.client,
		BookHotelInput{HotelID: f.hotel, CheckIn: in, CheckOut: in.AddDate(0, 0, 2), Rooms: 1})
	require.NoError(t, err)
	return v
}

func TestPayFlight_ConfirmsAndLinks(t *testing.T) {
	f := newPaymentFixture(t)
	v := f.bookFlight(t)

	p, err := f.pay.PayFlight(context.Background(), f.client, v.ID, "  card ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.Reference, "PAY-"))
	assert.Equal(t, int64(25000), p.AmountCents)
	assert.Equal(t, model.PaymentPaid, p.Status)
	assert.Equal(t, "CARD", p.Method)

	r, ok := f.m.flightReservation(v.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	require.NotNil(t, r.PaymentID)
	assert.Equal(t, p.ID, *r.PaymentID)
	assert.Equal(t, 8, f.m.flight(f.flight).AvailableSeats, "payment must not touch inventory")

	ev := f.pub.last()
	assert.Equal(t, queue.EventConfirmed, ev.Type)
	assert.Equal(t, p.Reference, ev.PaymentRef)
	assert.Equal(t, "CONFIRMED", ev.Status)
}

func TestPayHotel_ConfirmsAndLinks(t *testing.T) {
	f := newPaymentFixture(t)
	v := f.bookHotel(t)

	p, err := f.pay.PayHotel(context.Background(), f.client, v.ID, "wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(16000), p.AmountCents)
	assert.Equal(t, "WALLET", p.Method)

	r, ok := f.m.hotelReservation(v.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	require.NotNil(t, r.PaymentID)
	assert.Equal(t, p.ID, *r.PaymentID)
}

func TestPay_SecondAttemptAfterConfirmed(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	fv := f.bookFlight(t)
	hv := f.bookHotel(t)

	_, err := f.pay.PayFlight(ctx, f.client, fv.ID, "card")
	require.NoError(t, err)
	_, err = f.pay.PayFlight(ctx, f.client, fv.ID, "card")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.pay.PayHotel(ctx, f.client, hv.ID, "card")
	require.NoError(t, err)
	_, err = f.pay.PayHotel(ctx, f.client, hv.ID, "card")
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, 2, f.m.paymentCount())
}

func TestPay_LinkedPaidPaymentIsAlreadyPaid(t *testing.T) {
	f := newPaymentFixture(t)
	v := f.bookFlight(t)

	// a pending reservation that already carries a paid payment
	f.m.mu.Lock()
	pid := f.m.id()
	f.m.payments[pid] = model.Payment{ID: pid, Reference: "PAY-seeded", AmountCents: 25000, Status: model.PaymentPaid, Method: "CARD", ClientID: f.client}
	r := f.m.flightRes[v.ID]
	r.PaymentID = &pid
	f.m.flightRes[v.ID] = r
	f.m.mu.Unlock()

	_, err := f.pay.PayFlight(context.Background(), f.client, v.ID, "card")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, 1, f.m.paymentCount())
}

func TestPay_Rejections(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	v := f.bookFlight(t)
	other := f.m.addClient("other")

	_, err := f.pay.PayFlight(ctx, f.client, v.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.pay.PayFlight(ctx, other, v.ID, "card")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.pay.PayHotel(ctx, f.client, 9999, "card")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.book.CancelFlight(ctx, f.client, v.ID)
	require.NoError(t, err)
	_, err = f.pay.PayFlight(ctx, f.client, v.ID, "card")
	assert.ErrorIs(t, err, ErrImmutable)

	assert.Equal(t, 0, f.m.paymentCount(), "failed payments must roll back")
}

func TestPay_ConcurrentExactlyOnce(t *testing.T) {
	f := newPaymentFixture(t)
	v := f.bookFlight(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pay.PayFlight(context.Background(), f.client, v.ID, "card")
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInvalidState)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, f.m.paymentCount())
}

func TestPay_PublishFailureDoesNotFailPayment(t *testing.T) {
	f := newPaymentFixture(t)
	v := f.bookFlight(t)
	f.pub.err = errBroker

	_, err := f.pay.PayFlight(context.Background(), f.client, v.ID, "card")
	require.NoError(t, err)

	r, _ := f.m.flightReservation(v.ID)
	assert.Equal(t, model.StatusConfirmed, r.Status)
}

func TestPay_NilPublisher(t *testing.T) {
	m := newMemStore()
	client := m.addClient("amina")
	fid := m.addFlight("AT-204", "CMN", "CDG", departure, 12500, 10)
	book := NewReservationService(m.stores(), nil, nil)
	pay := NewPaymentService(m.stores(), nil, nil)

	v, err := book.BookFlight(context.Background(), client, BookFlightInput{FlightID: fid, Seats: 1})
	require.NoError(t, err)
	_, err = pay.PayFlight(context.Background(), client, v.ID, "cash")
	require.NoError(t, err)
}
