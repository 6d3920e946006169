package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/queue"
	"github.com/iliyamo/travel-reservations/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories.  InTx
// serialises transactions and restores a snapshot when the closure
// fails, which gives the services the same all-or-nothing behaviour
// they get from the database.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users     map[uint64]model.User
	flights   map[uint64]model.Flight
	hotels    map[uint64]model.Hotel
	flightRes map[uint64]model.FlightReservation
	hotelRes  map[uint64]model.HotelReservation
	payments  map[uint64]model.Payment
	nextID    uint64
	clock     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint64]model.User{},
		flights:   map[uint64]model.Flight{},
		hotels:    map[uint64]model.Hotel{},
		flightRes: map[uint64]model.FlightReservation{},
		hotelRes:  map[uint64]model.HotelReservation{},
		payments:  map[uint64]model.Payment{},
		nextID:    100,
		clock:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) stores() Stores {
	return Stores{
		Tx:                 m,
		Users:              memUsers{m},
		Flights:            memFlights{m},
		Hotels:             memHotels{m},
		FlightReservations: memFlightRes{m},
		HotelReservations:  memHotelRes{m},
		Payments:           memPayments{m},
	}
}

// id and tick must be called with mu held.
func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

type memSnapshot struct {
	flights   map[uint64]model.Flight
	hotels    map[uint64]model.Hotel
	flightRes map[uint64]model.FlightReservation
	hotelRes  map[uint64]model.HotelReservation
	payments  map[uint64]model.Payment
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memStore) InTx(ctx context.Context, fn func(tx database.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := memSnapshot{
		flights:   copyMap(m.flights),
		hotels:    copyMap(m.hotels),
		flightRes: copyMap(m.flightRes),
		hotelRes:  copyMap(m.hotelRes),
		payments:  copyMap(m.payments),
	}
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.flights, m.hotels = snap.flights, snap.hotels
		m.flightRes, m.hotelRes = snap.flightRes, snap.hotelRes
		m.payments = snap.payments
		m.mu.Unlock()
		return err
	}
	return nil
}

// seeding helpers

func (m *memStore) addClient(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.users[id] = model.User{ID: id, FullName: name, Email: name + "@example.com", Role: model.RoleClient, Enabled: true}
	return id
}

func (m *memStore) addFlight(number, origin, dest string, dep time.Time, priceCents int64, seats int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.flights[id] = model.Flight{
		ID: id, FlightNumber: number, Airline: "Atlas", Origin: origin, Destination: dest,
		DepartureAt: dep, ArrivalAt: dep.Add(3 * time.Hour),
		BasePriceCents: priceCents, AvailableSeats: seats, Status: model.FlightAvailable,
	}
	return id
}

func (m *memStore) addHotel(name string, priceCents int64, total, available int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.hotels[id] = model.Hotel{
		ID: id, Name: name, Address: "1 Main St", City: "Paris", Country: "France", Stars: 4,
		PricePerNightCents: priceCents, TotalRooms: total, AvailableRooms: available, Amenities: []string{},
	}
	return id
}

func (m *memStore) flight(id uint64) model.Flight {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flights[id]
}

func (m *memStore) hotel(id uint64) model.Hotel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hotels[id]
}

func (m *memStore) flightReservation(id uint64) (model.FlightReservation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.flightRes[id]
	return r, ok
}

func (m *memStore) hotelReservation(id uint64) (model.HotelReservation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.hotelRes[id]
	return r, ok
}

func (m *memStore) paymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

// users

type memUsers struct{ m *memStore }

func (s memUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// flights

type memFlights struct{ m *memStore }

func (s memFlights) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.flights[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s memFlights) List(ctx context.Context, filter repository.FlightFilter) ([]model.Flight, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.Flight{}
	for _, f := range s.m.flights {
		if filter.Origin != "" && f.Origin != filter.Origin {
			continue
		}
		if filter.Destination != "" && f.Destination != filter.Destination {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureAt.Before(out[j].DepartureAt) })
	return out, int64(len(out)), nil
}

func (s memFlights) Create(ctx context.Context, f *model.Flight) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.flights {
		if other.FlightNumber == f.FlightNumber {
			return repository.ErrDuplicate
		}
	}
	f.ID = s.m.id()
	f.CreatedAt = s.m.tick()
	f.UpdatedAt = f.CreatedAt
	s.m.flights[f.ID] = *f
	return nil
}

func (s memFlights) Delete(ctx context.Context, id uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.flights[id]; !ok {
		return repository.ErrNotFound
	}
	for _, r := range s.m.flightRes {
		if r.FlightID == id || (r.ReturnFlightID != nil && *r.ReturnFlightID == id) {
			return repository.ErrReferenced
		}
	}
	delete(s.m.flights, id)
	return nil
}

func (s memFlights) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Flight, error) {
	return s.GetByID(ctx, id)
}

func (s memFlights) UpdateTx(ctx context.Context, tx database.DBTX, f *model.Flight) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.flights {
		if other.ID != f.ID && other.FlightNumber == f.FlightNumber {
			return repository.ErrDuplicate
		}
	}
	s.m.flights[f.ID] = *f
	return nil
}

func (s memFlights) DecrementSeatsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.flights[id]
	if !ok || f.AvailableSeats < n {
		return repository.ErrInsufficientInventory
	}
	f.AvailableSeats -= n
	s.m.flights[id] = f
	return nil
}

func (s memFlights) IncrementSeatsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.flights[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.AvailableSeats += n
	s.m.flights[id] = f
	return nil
}

// hotels

type memHotels struct{ m *memStore }

func (s memHotels) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	h, ok := s.m.hotels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &h, nil
}

func (s memHotels) List(ctx context.Context, filter repository.HotelFilter) ([]model.Hotel, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.Hotel{}
	for _, h := range s.m.hotels {
		if filter.City != "" && h.City != filter.City {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (s memHotels) Delete(ctx context.Context, id uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.hotels[id]; !ok {
		return repository.ErrNotFound
	}
	for _, r := range s.m.hotelRes {
		if r.HotelID == id {
			return repository.ErrReferenced
		}
	}
	delete(s.m.hotels, id)
	return nil
}

func (s memHotels) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Hotel, error) {
	return s.GetByID(ctx, id)
}

func (s memHotels) CreateTx(ctx context.Context, tx database.DBTX, h *model.Hotel) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	h.ID = s.m.id()
	h.CreatedAt = s.m.tick()
	h.UpdatedAt = h.CreatedAt
	s.m.hotels[h.ID] = *h
	return nil
}

func (s memHotels) UpdateTx(ctx context.Context, tx database.DBTX, h *model.Hotel) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.hotels[h.ID] = *h
	return nil
}

func (s memHotels) DecrementRoomsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	h, ok := s.m.hotels[id]
	if !ok || h.AvailableRooms < n {
		return repository.ErrInsufficientInventory
	}
	h.AvailableRooms -= n
	s.m.hotels[id] = h
	return nil
}

func (s memHotels) IncrementRoomsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	h, ok := s.m.hotels[id]
	if !ok {
		return repository.ErrNotFound
	}
	h.AvailableRooms = min(h.TotalRooms, h.AvailableRooms+n)
	s.m.hotels[id] = h
	return nil
}

// flight reservations

type memFlightRes struct{ m *memStore }

func (s memFlightRes) CreateTx(ctx context.Context, tx database.DBTX, r *model.FlightReservation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r.ID = s.m.id()
	r.CreatedAt = s.m.tick()
	s.m.flightRes[r.ID] = *r
	return nil
}

func (s memFlightRes) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.FlightReservation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.flightRes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s memFlightRes) LockForClientTx(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.FlightReservation, error) {
	r, err := s.LockTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if r.ClientID != clientID {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (s memFlightRes) SetStatusTx(ctx context.Context, tx database.DBTX, id uint64, status model.ReservationStatus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r := s.m.flightRes[id]
	r.Status = status
	s.m.flightRes[id] = r
	return nil
}

func (s memFlightRes) ConfirmTx(ctx context.Context, tx database.DBTX, id, paymentID uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.flightRes[id]
	if !ok || r.Status != model.StatusPendingPayment || r.PaymentID != nil {
		return repository.ErrConflict
	}
	r.Status = model.StatusConfirmed
	r.PaymentID = &paymentID
	s.m.flightRes[id] = r
	return nil
}

func (s memFlightRes) DeleteTx(ctx context.Context, tx database.DBTX, id uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.flightRes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.m.flightRes, id)
	return nil
}

func (s memFlightRes) ListByClient(ctx context.Context, clientID uint64) ([]model.FlightReservation, error) {
	all, _ := s.ListAll(ctx)
	out := []model.FlightReservation{}
	for _, r := range all {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s memFlightRes) ListAll(ctx context.Context) ([]model.FlightReservation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.FlightReservation{}
	for _, r := range s.m.flightRes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// hotel reservations

type memHotelRes struct{ m *memStore }

func (s memHotelRes) CreateTx(ctx context.Context, tx database.DBTX, r *model.HotelReservation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r.ID = s.m.id()
	r.CreatedAt = s.m.tick()
	s.m.hotelRes[r.ID] = *r
	return nil
}

func (s memHotelRes) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.HotelReservation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.hotelRes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s memHotelRes) LockForClientTx(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.HotelReservation, error) {
	r, err := s.LockTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if r.ClientID != clientID {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (s memHotelRes) SetStatusTx(ctx context.Context, tx database.DBTX, id uint64, status model.ReservationStatus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r := s.m.hotelRes[id]
	r.Status = status
	s.m.hotelRes[id] = r
	return nil
}

func (s memHotelRes) ConfirmTx(ctx context.Context, tx database.DBTX, id, paymentID uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.hotelRes[id]
	if !ok || r.Status != model.StatusPendingPayment || r.PaymentID != nil {
		return repository.ErrConflict
	}
	r.Status = model.StatusConfirmed
	r.PaymentID = &paymentID
	s.m.hotelRes[id] = r
	return nil
}

func (s memHotelRes) DeleteTx(ctx context.Context, tx database.DBTX, id uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.hotelRes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.m.hotelRes, id)
	return nil
}

func (s memHotelRes) ListByClient(ctx context.Context, clientID uint64) ([]model.HotelReservation, error) {
	all, _ := s.ListAll(ctx)
	out := []model.HotelReservation{}
	for _, r := range all {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s memHotelRes) ListAll(ctx context.Context) ([]model.HotelReservation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.HotelReservation{}
	for _, r := range s.m.hotelRes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// payments

type memPayments struct{ m *memStore }

func (s memPayments) CreateTx(ctx context.Context, tx database.DBTX, p *model.Payment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p.ID = s.m.id()
	p.CreatedAt = s.m.tick()
	s.m.payments[p.ID] = *p
	return nil
}

func (s memPayments) GetByIDTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Payment, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// recordingPublisher collects published events; err, when set, is
// returned from every publish.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func (p *recordingPublisher) last() queue.ReservationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

var errBroker = errors.New("broker unavailable")
