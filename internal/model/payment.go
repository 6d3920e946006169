package model

import "time"

// PaymentPaid is the only payment status produced: the mock payment
// always succeeds once its preconditions hold.
const PaymentPaid = "PAID"

// Payment records money received for exactly one reservation.  Once
// linked to a reservation it is never mutated or unlinked.
//
// Fields:
//  ID          – primary key identifier.
//  Reference   – human-facing reference code (PAY-…).
//  AmountCents – amount charged in cents.
//  Status      – always PAID.
//  Method      – free text supplied by the client (CARD, CASH, WALLET…).
//  ClientID    – user who paid.
//  CreatedAt   – creation timestamp.
type Payment struct {
    ID          uint64    // payments.id
    Reference   string    // payments.reference
    AmountCents int64     // payments.amount_cents
    Status      string    // payments.status
    Method      string    // payments.method
    ClientID    uint64    // payments.client_id
    CreatedAt   time.Time // payments.created_at
}
