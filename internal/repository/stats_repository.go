package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/travel-reservations/internal/model"
)

// StatsRepo runs the read-only reporting queries.  Flight and hotel
// reservations are merged with UNION ALL; the two tables share the
// status, price and created_at columns used here.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// both selects cols from the two reservation tables for reservations
// created in [from, to).  The caller binds from, to twice.
func both(cols string) string {
	return `SELECT 'FLIGHT' AS kind, ` + cols + ` FROM flight_reservations WHERE created_at >= ? AND created_at < ?
		UNION ALL
		SELECT 'HOTEL' AS kind, ` + cols + ` FROM hotel_reservations WHERE created_at >= ? AND created_at < ?`
}

const topLimit = 5

// Reservations fills the counters, monthly series and top lists for
// reservations created in [from, to).  Derived fields (cancel rate,
// by-type and by-status buckets) are left to the caller.
func (r *StatsRepo) Reservations(ctx context.Context, from, to time.Time) (*model.ReservationStats, error) {
	window := []any{from, to, from, to}
	out := &model.ReservationStats{
		Monthly:    []model.MonthPoint{},
		TopClients: []model.TopClient{},
		TopFlights: []model.TopItem{},
		TopHotels:  []model.TopItem{},
	}

	// counts by kind and status
	countQ := `SELECT ar.kind, ar.status, COUNT(*),
			COALESCE(SUM(CASE WHEN ar.status = 'CONFIRMED' THEN ar.total_price_cents ELSE 0 END), 0)
		FROM (` + both("status, total_price_cents") + `) ar
		GROUP BY ar.kind, ar.status`
	rows, err := r.db.QueryContext(ctx, countQ, window...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var kind, status string
		var cnt, revenue int64
		if err := rows.Scan(&kind, &status, &cnt, &revenue); err != nil {
			rows.Close()
			return nil, err
		}
		out.TotalCount += cnt
		out.RevenueConfirmed += revenue
		switch model.Kind(kind) {
		case model.KindFlight:
			out.FlightCount += cnt
		case model.KindHotel:
			out.HotelCount += cnt
		}
		switch model.ReservationStatus(status) {
		case model.StatusPendingPayment:
			out.PendingCount += cnt
		case model.StatusConfirmed:
			out.ConfirmedCount += cnt
		case model.StatusCanceled:
			out.CanceledCount += cnt
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	// monthly series
	monthQ := `SELECT DATE_FORMAT(ar.created_at, '%Y-%m') AS month, COUNT(*),
			COALESCE(SUM(CASE WHEN ar.status = 'CONFIRMED' THEN ar.total_price_cents ELSE 0 END), 0)
		FROM (` + both("status, total_price_cents, created_at") + `) ar
		GROUP BY month
		ORDER BY month`
	rows, err = r.db.QueryContext(ctx, monthQ, window...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p model.MonthPoint
		if err := rows.Scan(&p.Month, &p.Count, &p.RevenueCents); err != nil {
			rows.Close()
			return nil, err
		}
		out.Monthly = append(out.Monthly, p)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	// top clients
	clientQ := `SELECT u.id, u.full_name, u.email, COUNT(*) AS cnt,
			COALESCE(SUM(CASE WHEN ar.status = 'CONFIRMED' THEN ar.total_price_cents ELSE 0 END), 0) AS revenue
		FROM (` + both("client_id, status, total_price_cents") + `) ar
		JOIN users u ON u.id = ar.client_id
		GROUP BY u.id, u.full_name, u.email
		ORDER BY cnt DESC, revenue DESC, u.id ASC
		LIMIT ?`
	rows, err = r.db.QueryContext(ctx, clientQ, append(window, topLimit)...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c model.TopClient
		if err := rows.Scan(&c.ClientID, &c.ClientName, &c.ClientEmail, &c.ReservationsCount, &c.RevenueCents); err != nil {
			rows.Close()
			return nil, err
		}
		out.TopClients = append(out.TopClients, c)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	// top flights, labelled by flight number
	out.TopFlights, err = r.topItems(ctx, `SELECT f.id, f.flight_number, COUNT(*) AS cnt
		FROM flight_reservations fr
		JOIN flights f ON f.id = fr.flight_id
		WHERE fr.created_at >= ? AND fr.created_at < ?
		GROUP BY f.id, f.flight_number
		ORDER BY cnt DESC, f.id ASC
		LIMIT ?`, from, to)
	if err != nil {
		return nil, err
	}

	// top hotels, labelled by name
	out.TopHotels, err = r.topItems(ctx, `SELECT h.id, h.name, COUNT(*) AS cnt
		FROM hotel_reservations hr
		JOIN hotels h ON h.id = hr.hotel_id
		WHERE hr.created_at >= ? AND hr.created_at < ?
		GROUP BY h.id, h.name
		ORDER BY cnt DESC, h.id ASC
		LIMIT ?`, from, to)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StatsRepo) topItems(ctx context.Context, q string, from, to time.Time) ([]model.TopItem, error) {
	rows, err := r.db.QueryContext(ctx, q, from, to, topLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.TopItem, 0, topLimit)
	for rows.Next() {
		var it model.TopItem
		if err := rows.Scan(&it.ItemID, &it.Label, &it.Count); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
