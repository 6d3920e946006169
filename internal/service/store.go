package service

import (
	"context"
	"time"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
	"github.com/iliyamo/travel-reservations/internal/queue"
	"github.com/iliyamo/travel-reservations/internal/repository"
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx database.DBTX) error) error
}

// EventPublisher receives reservation lifecycle events after commit.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error
}

type UserReader interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

type FlightStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Flight, error)
	List(ctx context.Context, f repository.FlightFilter) ([]model.Flight, int64, error)
	Create(ctx context.Context, f *model.Flight) error
	Delete(ctx context.Context, id uint64) error
	LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Flight, error)
	UpdateTx(ctx context.Context, tx database.DBTX, f *model.Flight) error
	DecrementSeatsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error
	IncrementSeatsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error
}

type HotelStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Hotel, error)
	List(ctx context.Context, f repository.HotelFilter) ([]model.Hotel, int64, error)
	Delete(ctx context.Context, id uint64) error
	LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Hotel, error)
	CreateTx(ctx context.Context, tx database.DBTX, h *model.Hotel) error
	UpdateTx(ctx context.Context, tx database.DBTX, h *model.Hotel) error
	DecrementRoomsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error
	IncrementRoomsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error
}

type FlightReservationStore interface {
	CreateTx(ctx context.Context, tx database.DBTX, r *model.FlightReservation) error
	LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.FlightReservation, error)
	LockForClientTx(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.FlightReservation, error)
	SetStatusTx(ctx context.Context, tx database.DBTX, id uint64, status model.ReservationStatus) error
	ConfirmTx(ctx context.Context, tx database.DBTX, id, paymentID uint64) error
	DeleteTx(ctx context.Context, tx database.DBTX, id uint64) error
	ListByClient(ctx context.Context, clientID uint64) ([]model.FlightReservation, error)
	ListAll(ctx context.Context) ([]model.FlightReservation, error)
}

type HotelReservationStore interface {
	CreateTx(ctx context.Context, tx database.DBTX, r *model.HotelReservation) error
	LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.HotelReservation, error)
	LockForClientTx(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.HotelReservation, error)
	SetStatusTx(ctx context.Context, tx database.DBTX, id uint64, status model.ReservationStatus) error
	ConfirmTx(ctx context.Context, tx database.DBTX, id, paymentID uint64) error
	DeleteTx(ctx context.Context, tx database.DBTX, id uint64) error
	ListByClient(ctx context.Context, clientID uint64) ([]model.HotelReservation, error)
	ListAll(ctx context.Context) ([]model.HotelReservation, error)
}

type PaymentStore interface {
	CreateTx(ctx context.Context, tx database.DBTX, p *model.Payment) error
	GetByIDTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Payment, error)
}

type StatsStore interface {
	Reservations(ctx context.Context, from, to time.Time) (*model.ReservationStats, error)
}

// Stores bundles the persistence dependencies shared by the services.
type Stores struct {
	Tx                 Transactor
	Users              UserReader
	Flights            FlightStore
	Hotels             HotelStore
	FlightReservations FlightReservationStore
	HotelReservations  HotelReservationStore
	Payments           PaymentStore
	Stats              StatsStore
}
