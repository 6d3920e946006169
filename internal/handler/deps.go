package handler

import (
    "context"
    "time"

    "github.com/iliyamo/travel-reservations/internal/model"
    "github.com/iliyamo/travel-reservations/internal/repository"
    "github.com/iliyamo/travel-reservations/internal/service"
)

// The handlers depend on these narrow views of the services so they can be
// exercised with fakes.

type Accounts interface {
    Register(ctx context.Context, fullName, email, password string) (*model.User, error)
    Authenticate(ctx context.Context, email, password string) (*model.User, error)
    GetUser(ctx context.Context, id uint64) (*model.User, error)
}

type RefreshTokens interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

type Bookings interface {
    BookFlight(ctx context.Context, clientID uint64, in service.BookFlightInput) (*service.ReservationView, error)
    BookHotel(ctx context.Context, clientID uint64, in service.BookHotelInput) (*service.ReservationView, error)
    CancelFlight(ctx context.Context, clientID, id uint64) (*service.ReservationView, error)
    CancelHotel(ctx context.Context, clientID, id uint64) (*service.ReservationView, error)
    MyReservations(ctx context.Context, clientID uint64) ([]service.ReservationView, error)
}

type Payments interface {
    PayFlight(ctx context.Context, clientID, reservationID uint64, method string) (*service.PaymentView, error)
    PayHotel(ctx context.Context, clientID, reservationID uint64, method string) (*service.PaymentView, error)
}

type AdminReservations interface {
    List(ctx context.Context) ([]service.AdminReservationRow, error)
    CancelFlight(ctx context.Context, id uint64) (*service.ReservationView, error)
    CancelHotel(ctx context.Context, id uint64) (*service.ReservationView, error)
    DeleteFlight(ctx context.Context, id uint64) error
    DeleteHotel(ctx context.Context, id uint64) error
}

type Stats interface {
    Reservations(ctx context.Context, from, to time.Time) (*model.ReservationStats, error)
}

type Inventory interface {
    ListFlights(ctx context.Context, f repository.FlightFilter) ([]model.Flight, int64, error)
    GetFlight(ctx context.Context, id uint64) (*model.Flight, error)
    CreateFlight(ctx context.Context, in service.FlightInput) (*model.Flight, error)
    UpdateFlight(ctx context.Context, id uint64, in service.FlightInput) (*model.Flight, error)
    DeleteFlight(ctx context.Context, id uint64) error
    ListHotels(ctx context.Context, f repository.HotelFilter) ([]model.Hotel, int64, error)
    GetHotel(ctx context.Context, id uint64) (*model.Hotel, error)
    CreateHotel(ctx context.Context, in service.HotelInput) (*model.Hotel, error)
    UpdateHotel(ctx context.Context, id uint64, in service.HotelInput) (*model.Hotel, error)
    DeleteHotel(ctx context.Context, id uint64) error
}
