package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// HotelReservationRepo persists hotel reservations.  check_in and
// check_out are DATE columns and come back as midnight UTC.
type HotelReservationRepo struct {
	db *sql.DB
}

// NewHotelReservationRepo returns a new HotelReservationRepo bound to the
// given database.
func NewHotelReservationRepo(db *sql.DB) *HotelReservationRepo {
	return &HotelReservationRepo{db: db}
}

const hotelReservationColumns = `id, client_id, hotel_id, check_in, check_out, rooms,
	total_price_cents, status, payment_id, created_at`

func scanHotelReservation(s rowScanner) (*model.HotelReservation, error) {
	var res model.HotelReservation
	var paymentID sql.NullInt64
	if err := s.Scan(&res.ID, &res.ClientID, &res.HotelID, &res.CheckIn, &res.CheckOut, &res.Rooms,
		&res.TotalPriceCents, &res.Status, &paymentID, &res.CreatedAt); err != nil {
		return nil, err
	}
	res.PaymentID = nullID(paymentID)
	return &res, nil
}

const dateLayout = "2006-01-02"

// CreateTx inserts a new reservation in the caller's transaction and
// populates the generated ID and created_at.
func (r *HotelReservationRepo) CreateTx(ctx context.Context, tx database.DBTX, res *model.HotelReservation) error {
	const q = `INSERT INTO hotel_reservations (client_id, hotel_id, check_in, check_out, rooms,
	           total_price_cents, status) VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.ClientID, res.HotelID,
		res.CheckIn.Format(dateLayout), res.CheckOut.Format(dateLayout),
		res.Rooms, res.TotalPriceCents, res.Status)
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanHotelReservation(tx.QueryRowContext(ctx,
		`SELECT `+hotelReservationColumns+` FROM hotel_reservations WHERE id = ?`, id))
	if err != nil {
		return translate(err)
	}
	*res = *created
	return nil
}

// LockTx reads and row-locks a reservation regardless of its owner.
func (r *HotelReservationRepo) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.HotelReservation, error) {
	res, err := scanHotelReservation(tx.QueryRowContext(ctx,
		`SELECT `+hotelReservationColumns+` FROM hotel_reservations WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// LockForClientTx reads and row-locks a reservation owned by clientID.
func (r *HotelReservationRepo) LockForClientTx(ctx context.Context, tx database.DBTX, id, clientID uint64) (*model.HotelReservation, error) {
	res, err := scanHotelReservation(tx.QueryRowContext(ctx,
		`SELECT `+hotelReservationColumns+` FROM hotel_reservations WHERE id = ? AND client_id = ? FOR UPDATE`,
		id, clientID))
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// SetStatusTx overwrites the status of a locked reservation.
func (r *HotelReservationRepo) SetStatusTx(ctx context.Context, tx database.DBTX, id uint64, status model.ReservationStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE hotel_reservations SET status = ? WHERE id = ?`, status, id)
	return translate(err)
}

// ConfirmTx links the payment and confirms a pending, unpaid
// reservation; ErrConflict when no such row matches.
func (r *HotelReservationRepo) ConfirmTx(ctx context.Context, tx database.DBTX, id, paymentID uint64) error {
	const q = `UPDATE hotel_reservations SET payment_id = ?, status = 'CONFIRMED'
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
func (r *HotelReservationRepo) DeleteTx(ctx context.Context, tx database.DBTX, id uint64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM hotel_reservations WHERE id = ?`, id)
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
func (r *HotelReservationRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.HotelReservation, error) {
	return r.list(ctx, `SELECT `+hotelReservationColumns+` FROM hotel_reservations
		WHERE client_id = ? ORDER BY created_at DESC, id DESC`, clientID)
}

// ListAll returns every reservation, newest first.
func (r *HotelReservationRepo) ListAll(ctx context.Context) ([]model.HotelReservation, error) {
	return r.list(ctx, `SELECT `+hotelReservationColumns+` FROM hotel_reservations
		ORDER BY created_at DESC, id DESC`)
}

func (r *HotelReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.HotelReservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.HotelReservation, 0)
	for rows.Next() {
		res, err := scanHotelReservation(rows)
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
