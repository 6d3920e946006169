package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// FlightRepo manages persistence for flights.  Methods with a Tx suffix
// run on the caller's transaction; the others use the pool directly.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo constructs a FlightRepo with the given DB handle.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// FlightFilter defines filters and pagination for flight search.  Empty
// fields are ignored.
type FlightFilter struct {
	Origin        string
	Destination   string
	DepartureDate *time.Time
	Page          int
	PageSize      int
}

const flightColumns = `id, flight_number, airline, origin, destination, departure_at, arrival_at,
	base_price_cents, available_seats, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(s rowScanner) (*model.Flight, error) {
	var f model.Flight
	var dep, arr sql.NullTime
	if err := s.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination, &dep, &arr,
		&f.BasePriceCents, &f.AvailableSeats, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if dep.Valid {
		f.DepartureAt = dep.Time
	}
	if arr.Valid {
		f.ArrivalAt = arr.Time
	}
	return &f, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// GetByID returns the flight with the given id or ErrNotFound.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// LockTx reads a flight and takes a row lock held until the transaction
// ends.  Every seat counter change goes through a row locked here.
func (r *FlightRepo) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Flight, error) {
	f, err := scanFlight(tx.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// DecrementSeatsTx removes n seats from the flight.  The update is
// conditional on enough seats being left so the counter can never go
// negative; when it matches no row ErrInsufficientInventory is returned.
func (r *FlightRepo) DecrementSeatsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	const q = `UPDATE flights
	           SET available_seats = available_seats - ?,
	               status = IF(available_seats = 0, 'FULL', status)
	           WHERE id = ? AND available_seats >= ?`
	res, err := tx.ExecContext(ctx, q, n, id, n)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientInventory
	}
	return nil
}

// IncrementSeatsTx gives n seats back to the flight.
func (r *FlightRepo) IncrementSeatsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	const q = `UPDATE flights
	           SET available_seats = available_seats + ?,
	               status = IF(status = 'FULL', 'AVAILABLE', status)
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, n, id)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns flights matching the filter ordered by departure, along
// with the total number of matches.
func (r *FlightRepo) List(ctx context.Context, f FlightFilter) ([]model.Flight, int64, error) {
	where := []string{}
	args := []any{}
	if f.Origin != "" {
		where = append(where, "UPPER(origin) = ?")
		args = append(args, strings.ToUpper(f.Origin))
	}
	if f.Destination != "" {
		where = append(where, "UPPER(destination) = ?")
		args = append(args, strings.ToUpper(f.Destination))
	}
	if f.DepartureDate != nil {
		day := time.Date(f.DepartureDate.Year(), f.DepartureDate.Month(), f.DepartureDate.Day(), 0, 0, 0, 0, time.UTC)
		where = append(where, "departure_at >= ? AND departure_at < ?")
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	dataSQL := `SELECT ` + flightColumns + ` FROM flights WHERE ` + cond + `
		ORDER BY departure_at ASC, id ASC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, dataSQL, append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Flight, 0, limit)
	for rows.Next() {
		fl, err := scanFlight(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *fl)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Create inserts a new flight and populates ID and DB defaults.
// A second flight with the same number yields ErrDuplicate.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	const q = `INSERT INTO flights (flight_number, airline, origin, destination, departure_at, arrival_at,
	           base_price_cents, available_seats, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.FlightNumber, f.Airline, f.Origin, f.Destination,
		nullTime(f.DepartureAt), nullTime(f.ArrivalAt), f.BasePriceCents, f.AvailableSeats, f.Status)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*f = *created
	return nil
}

// UpdateTx overwrites every editable column of a flight previously
// locked with LockTx.
func (r *FlightRepo) UpdateTx(ctx context.Context, tx database.DBTX, f *model.Flight) error {
	const q = `UPDATE flights SET flight_number = ?, airline = ?, origin = ?, destination = ?,
	           departure_at = ?, arrival_at = ?, base_price_cents = ?, available_seats = ?, status = ?
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, f.FlightNumber, f.Airline, f.Origin, f.Destination,
		nullTime(f.DepartureAt), nullTime(f.ArrivalAt), f.BasePriceCents, f.AvailableSeats, f.Status, f.ID)
	return translate(err)
}

// Delete removes a flight.  Flights referenced by reservations cannot
// be deleted (ErrReferenced).
func (r *FlightRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flights WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// pageBounds turns a 1-based page and page size into LIMIT/OFFSET,
// defaulting to 20 rows and capping at 100.
func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}
