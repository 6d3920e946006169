// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "fmt"
    "time"
)

// ReservationsQueue is the durable queue carrying ReservationEvent messages.
const ReservationsQueue = "reservation.events"

// Event types published over the reservation lifecycle.
const (
    EventCreated   = "reservation.created"
    EventConfirmed = "reservation.confirmed"
    EventCanceled  = "reservation.canceled"
    EventDeleted   = "reservation.deleted"
)

// ReservationEvent is published after a reservation transaction commits.
// It carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database.
type ReservationEvent struct {
    Type            string    `json:"type"`
    Kind            string    `json:"kind"` // FLIGHT | HOTEL
    ReservationID   uint64    `json:"reservation_id"`
    ClientID        uint64    `json:"client_id"`
    Status          string    `json:"status"`
    TotalPriceCents int64     `json:"total_price_cents"`
    Actor           string    `json:"actor"` // CLIENT | ADMIN
    PaymentRef      string    `json:"payment_ref,omitempty"`
    OccurredAt      time.Time `json:"occurred_at"`
}

// LogLine renders the event as one line of the audit log.
func (e ReservationEvent) LogLine() string {
    line := fmt.Sprintf("[%s] %s | kind=%s | reservation_id=%d | client_id=%d | status=%s | total=%d cents | actor=%s",
        e.OccurredAt.UTC().Format(time.RFC3339), e.Type, e.Kind, e.ReservationID, e.ClientID,
        e.Status, e.TotalPriceCents, e.Actor)
    if e.PaymentRef != "" {
        line += " | payment=" + e.PaymentRef
    }
    return line + "\n"
}
