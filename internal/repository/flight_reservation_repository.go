package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// FlightReservationRepo persists flight reservations.  State changes
// are expected to run on rows locked with LockTx or LockForClientTx in
// the same transaction.
type FlightReservationRepo struct {
	db *sql.DB
}

// NewFlightReservationRepo returns a new FlightReservationRepo bound to
// the given database.
func NewFlightReservationRepo(db *sql.DB) *FlightReservationRepo {
	return &FlightReservationRepo{db: db}
}

const flightReservationColumns = `id, client_id, flight_id, return_flight_id, trip_type, seats,
	total_price_cents, status, payment_id, created_at`

func scanFlightReservation(s rowScanner) (*model.FlightReservation, error) {
	var res model.FlightReservation
	var returnID, paymentID sql.NullInt64
	if err := s.Scan(&res.ID, &res.ClientID, &res.FlightID, &returnID, &res.TripType, &res.Seats,
		&res.TotalPriceCents, &res.Status, &paymentID, &res.CreatedAt); err != nil {
		return nil, err
	}
	res.ReturnFlightID = nullID(returnID)
	res.PaymentID = nullID(paymentID)
	return &res, nil
}

func nullID(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	id := uint64(v.Int64)
	return &id
}

func idArg(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It populates the generated ID and created_at on the
// provided record.
func (r *FlightReservationRepo) CreateTx(ctx context.Context, tx database.DBTX, res *model.FlightReservation) error {
	const q = `INSERT INTO flight_reservations (client_id, flight_id, return_flight_id, trip_type, seats,
	           total_price_cents, status) VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.ClientID, res.FlightID, idArg(res.ReturnFlightID),
		res.TripType, res.Seats, res.TotalPriceCents, res.Status)
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	// Query back the full row to populate defaults
	created, err := scanFlightReservation(tx.QueryRowContext(ctx,
		`SELECT `+flightReservationColumns+` FROM flight_reservations WHERE id = ?`, id))
	if err != nil {
		return translate(err)
	}
	*res = *created
	return nil
}

// LockTx reads and row-locks a reservation regardless of its owner.
func (r *FlightReservationRepo) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.FlightReservation, error) {
	res, err := scanFlightReservation(tx.QueryRowContext(ctx,
		`SELECT `+flightReservationColumns+` FROM flight_reservations WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// LockForClientTx reads and row-locks a reservation owned by clientID.
// A reservation owned by someone else is reported as ErrNotFound.
func (r *FlightReservationRepo) LockForClientTx(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.FlightReservation, error) {
	res, err := scanFlightReservation(tx.QueryRowContext(ctx,
		`SELECT `+flightReservationColumns+` FROM flight_reservations WHERE id = ? AND client_id = ? FOR UPDATE`,
		id, clientID))
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// SetStatusTx overwrites the status of a locked reservation.
func (r *FlightReservationRepo) SetStatusTx(ctx context.Context, tx database.DBTX, id uint64, status model.ReservationStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE flight_reservations SET status = ? WHERE id = ?`, status, id)
	return translate(err)
}

// ConfirmTx links the payment and flips the reservation to CONFIRMED in
// one statement.  It only matches a reservation that is still pending
// and unpaid; otherwise ErrConflict is returned.
func (r *FlightReservationRepo) ConfirmTx(ctx context.Context, tx database.DBTX, id, paymentID uint64) error {
	const q = `UPDATE flight_reservations SET payment_id = ?, status = 'CONFIRMED'
	           WHERE id = ? AND status = 'PENDING_PAYMENT' AND payment_id IS NULL`
	result, err := tx.ExecContext(ctx, q, paymentID, id)
	if err != nil {
		return translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteTx removes a reservation row.
func (r *FlightReservationRepo) DeleteTx(ctx context.Context, tx database.DBTX, id uint64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM flight_reservations WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByClient returns the client's reservations, newest first.
func (r *FlightReservationRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.FlightReservation, error) {
	return r.list(ctx, `SELECT `+flightReservationColumns+` FROM flight_reservations
		WHERE client_id = ? ORDER BY created_at DESC, id DESC`, clientID)
}

// ListAll returns every reservation, newest first.
func (r *FlightReservationRepo) ListAll(ctx context.Context) ([]model.FlightReservation, error) {
	return r.list(ctx, `SELECT `+flightReservationColumns+` FROM flight_reservations
		ORDER BY created_at DESC, id DESC`)
}

func (r *FlightReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.FlightReservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.FlightReservation, 0)
	for rows.Next() {
		res, err := scanFlightReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
