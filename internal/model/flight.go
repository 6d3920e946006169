package model

import (
    "fmt"
    "time"
)

// Flight status values.  The status is informational only; booking
// decisions are made on AvailableSeats alone.
const (
    FlightAvailable = "AVAILABLE"
    FlightFull      = "FULL"
    FlightCanceled  = "CANCELED"
)

// Flight represents a scheduled flight and its seat inventory.
// AvailableSeats is the contended counter decremented by bookings and
// restored by cancellations; it never drops below zero.
//
// Fields:
//  ID             – primary key identifier.
//  FlightNumber   – unique carrier flight number (e.g. AT-204).
//  Airline        – operating airline.
//  Origin         – departure airport code.
//  Destination    – arrival airport code.
//  DepartureAt    – scheduled departure (UTC).
//  ArrivalAt      – scheduled arrival (UTC).
//  BasePriceCents – price of one seat in cents.
//  AvailableSeats – seats that can still be booked.
//  Status         – AVAILABLE, FULL or CANCELED.
type Flight struct {
    ID             uint64    `json:"id"`              // flights.id
    FlightNumber   string    `json:"flight_number"`   // flights.flight_number
    Airline        string    `json:"airline"`         // flights.airline
    Origin         string    `json:"origin"`          // flights.origin
    Destination    string    `json:"destination"`     // flights.destination
    DepartureAt    time.Time `json:"departure_at"`    // flights.departure_at
    ArrivalAt      time.Time `json:"arrival_at"`      // flights.arrival_at
    BasePriceCents int64     `json:"base_price_cents"` // flights.base_price_cents
    AvailableSeats int       `json:"available_seats"` // flights.available_seats
    Status         string    `json:"status"`          // flights.status
    CreatedAt      time.Time `json:"created_at"`      // flights.created_at
    UpdatedAt      time.Time `json:"updated_at"`      // flights.updated_at
}

// Info renders the short label used in reservation responses,
// e.g. "AT-204 - CMN→CDG".
func (f *Flight) Info() string {
    return fmt.Sprintf("%s - %s→%s", f.FlightNumber, f.Origin, f.Destination)
}

// IsReverseOf reports whether f flies the route of other backwards
// (other A→B, f B→A).
func (f *Flight) IsReverseOf(other *Flight) bool {
    return f.Origin == other.Destination && f.Destination == other.Origin
}
