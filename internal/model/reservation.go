package model

import "time"

// ReservationStatus is the lifecycle shared by flight and hotel
// reservations.  PENDING_PAYMENT is the only non-terminal state.
type ReservationStatus string

const (
    StatusPendingPayment ReservationStatus = "PENDING_PAYMENT"
    StatusConfirmed      ReservationStatus = "CONFIRMED"
    StatusCanceled       ReservationStatus = "CANCELED"
)

// IsTerminal reports whether no transition can leave s.
func (s ReservationStatus) IsTerminal() bool {
    return s == StatusConfirmed || s == StatusCanceled
}

// CanTransitionTo reports whether the lifecycle allows s -> next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
    return s == StatusPendingPayment && (next == StatusConfirmed || next == StatusCanceled)
}

// TripType distinguishes one-way from round-trip flight reservations.
type TripType string

const (
    OneWay    TripType = "ONE_WAY"
    RoundTrip TripType = "ROUND_TRIP"
)

// Kind discriminates the two reservation variants.
type Kind string

const (
    KindFlight Kind = "FLIGHT"
    KindHotel  Kind = "HOTEL"
)

// FlightReservation books Seats seats on an outbound flight and, for a
// round trip, the same number of seats on the return flight.
//
// Fields:
//  ID              – primary key identifier.
//  ClientID        – user who owns the reservation.
//  FlightID        – outbound flight.
//  ReturnFlightID  – return flight (nil for one-way trips).
//  TripType        – ONE_WAY or ROUND_TRIP.
//  Seats           – seats held on each leg.
//  TotalPriceCents – price computed at booking time.
//  Status          – lifecycle state.
//  PaymentID       – linked payment (nil until paid).
//  CreatedAt       – creation timestamp.
type FlightReservation struct {
    ID              uint64            // flight_reservations.id
    ClientID        uint64            // flight_reservations.client_id
    FlightID        uint64            // flight_reservations.flight_id
    ReturnFlightID  *uint64           // flight_reservations.return_flight_id (nullable)
    TripType        TripType          // flight_reservations.trip_type
    Seats           int               // flight_reservations.seats
    TotalPriceCents int64             // flight_reservations.total_price_cents
    Status          ReservationStatus // flight_reservations.status
    PaymentID       *uint64           // flight_reservations.payment_id (nullable)
    CreatedAt       time.Time         // flight_reservations.created_at
}

// HotelReservation books Rooms rooms in a hotel for the nights between
// CheckIn and CheckOut.
type HotelReservation struct {
    ID              uint64            // hotel_reservations.id
    ClientID        uint64            // hotel_reservations.client_id
    HotelID         uint64            // hotel_reservations.hotel_id
    CheckIn         time.Time         // hotel_reservations.check_in (DATE)
    CheckOut        time.Time         // hotel_reservations.check_out (DATE)
    Rooms           int               // hotel_reservations.rooms
    TotalPriceCents int64             // hotel_reservations.total_price_cents
    Status          ReservationStatus // hotel_reservations.status
    PaymentID       *uint64           // hotel_reservations.payment_id (nullable)
    CreatedAt       time.Time         // hotel_reservations.created_at
}

// Nights returns the number of nights between CheckIn and CheckOut.
func (r *HotelReservation) Nights() int {
    return NightsBetween(r.CheckIn, r.CheckOut)
}

// NightsBetween counts calendar days from checkIn to checkOut, ignoring
// the time of day.  The result is negative when checkOut is earlier.
func NightsBetween(checkIn, checkOut time.Time) int {
    in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
    out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
    return int(out.Sub(in).Hours() / 24)
}

// Reservation wraps exactly one of the two variants.  It is used where
// both kinds are listed or reported together; the variants themselves
// share no base type.
type Reservation struct {
    Kind   Kind
    Flight *FlightReservation
    Hotel  *HotelReservation
}

// FromFlight wraps a flight reservation.
func FromFlight(r *FlightReservation) Reservation {
    return Reservation{Kind: KindFlight, Flight: r}
}

// FromHotel wraps a hotel reservation.
func FromHotel(r *HotelReservation) Reservation {
    return Reservation{Kind: KindHotel, Hotel: r}
}

func (r Reservation) ID() uint64 {
    if r.Kind == KindFlight {
        return r.Flight.ID
    }
    return r.Hotel.ID
}

func (r Reservation) ClientID() uint64 {
    if r.Kind == KindFlight {
        return r.Flight.ClientID
    }
    return r.Hotel.ClientID
}

func (r Reservation) Status() ReservationStatus {
    if r.Kind == KindFlight {
        return r.Flight.Status
    }
    return r.Hotel.Status
}

func (r Reservation) TotalPriceCents() int64 {
    if r.Kind == KindFlight {
        return r.Flight.TotalPriceCents
    }
    return r.Hotel.TotalPriceCents
}

func (r Reservation) CreatedAt() time.Time {
    if r.Kind == KindFlight {
        return r.Flight.CreatedAt
    }
    return r.Hotel.CreatedAt
}

func (r Reservation) PaymentID() *uint64 {
    if r.Kind == KindFlight {
        return r.Flight.PaymentID
    }
    return r.Hotel.PaymentID
}
