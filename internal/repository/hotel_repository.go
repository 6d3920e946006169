package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// HotelRepo manages persistence for hotels and their amenities.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo constructs a HotelRepo with the given DB handle.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// HotelFilter defines filters and pagination for hotel search.
type HotelFilter struct {
	City     string
	Country  string
	Page     int
	PageSize int
}

const hotelColumns = `id, name, address, city, country, stars, price_per_night_cents,
	total_rooms, available_rooms, COALESCE(description, ''), created_at, updated_at`

func scanHotel(s rowScanner) (*model.Hotel, error) {
	var h model.Hotel
	if err := s.Scan(&h.ID, &h.Name, &h.Address, &h.City, &h.Country, &h.Stars, &h.PricePerNightCents,
		&h.TotalRooms, &h.AvailableRooms, &h.Description, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.Amenities = []string{}
	return &h, nil
}

// GetByID returns the hotel with its amenities or ErrNotFound.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	if err := r.loadAmenities(ctx, r.db, []*model.Hotel{h}); err != nil {
		return nil, err
	}
	return h, nil
}

// LockTx reads a hotel and takes a row lock held until the transaction
// ends.  Amenities are not loaded.
func (r *HotelRepo) LockTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Hotel, error) {
	h, err := scanHotel(tx.QueryRowContext(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err)
	}
	return h, nil
}

// DecrementRoomsTx removes n rooms from the hotel, failing with
// ErrInsufficientInventory instead of going negative.
func (r *HotelRepo) DecrementRoomsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	const q = `UPDATE hotels SET available_rooms = available_rooms - ?
	           WHERE id = ? AND available_rooms >= ?`
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

// IncrementRoomsTx gives n rooms back, never exceeding total_rooms.
func (r *HotelRepo) IncrementRoomsTx(ctx context.Context, tx database.DBTX, id uint64, n int) error {
	const q = `UPDATE hotels SET available_rooms = LEAST(total_rooms, available_rooms + ?) WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, n, id)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// A capped row may already be at total_rooms and report 0 changed
	// rows; only a missing hotel is an error.
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM hotels WHERE id = ?`, id).Scan(&exists); err != nil {
			return translate(err)
		}
	}
	return nil
}

// List returns hotels matching the filter ordered by name, with the
// total number of matches.
func (r *HotelRepo) List(ctx context.Context, f HotelFilter) ([]model.Hotel, int64, error) {
	where := []string{}
	args := []any{}
	if f.City != "" {
		where = append(where, "LOWER(city) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.City)+"%")
	}
	if f.Country != "" {
		where = append(where, "LOWER(country) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Country)+"%")
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	rows, err := r.db.QueryContext(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE `+cond+`
		ORDER BY name ASC, id ASC
		LIMIT ? OFFSET ?`, append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	hotels := make([]*model.Hotel, 0, limit)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, 0, err
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadAmenities(ctx, r.db, hotels); err != nil {
		return nil, 0, err
	}
	out := make([]model.Hotel, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, *h)
	}
	return out, total, nil
}

// loadAmenities fills Amenities for all given hotels in one query.
func (r *HotelRepo) loadAmenities(ctx context.Context, q database.DBTX, hotels []*model.Hotel) error {
	if len(hotels) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Hotel, len(hotels))
	ids := make([]any, 0, len(hotels))
	placeholders := make([]string, 0, len(hotels))
	for _, h := range hotels {
		index[h.ID] = h
		ids = append(ids, h.ID)
		placeholders = append(placeholders, "?")
	}
	rows, err := q.QueryContext(ctx, `SELECT hotel_id, amenity FROM hotel_amenities
		WHERE hotel_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY hotel_id, amenity`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var hid uint64
		var amenity string
		if err := rows.Scan(&hid, &amenity); err != nil {
			return err
		}
		if h, ok := index[hid]; ok {
			h.Amenities = append(h.Amenities, amenity)
		}
	}
	return rows.Err()
}

// CreateTx inserts a hotel with its amenities and populates the ID.
func (r *HotelRepo) CreateTx(ctx context.Context, tx database.DBTX, h *model.Hotel) error {
	const q = `INSERT INTO hotels (name, address, city, country, stars, price_per_night_cents,
	           total_rooms, available_rooms, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, h.Name, h.Address, h.City, h.Country, h.Stars,
		h.PricePerNightCents, h.TotalRooms, h.AvailableRooms, h.Description)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return r.replaceAmenitiesTx(ctx, tx, h.ID, h.Amenities)
}

// UpdateTx overwrites the editable columns and the amenity set of a
// hotel previously locked with LockTx.
func (r *HotelRepo) UpdateTx(ctx context.Context, tx database.DBTX, h *model.Hotel) error {
	const q = `UPDATE hotels SET name = ?, address = ?, city = ?, country = ?, stars = ?,
	           price_per_night_cents = ?, total_rooms = ?, available_rooms = ?, description = ?
	           WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, h.Name, h.Address, h.City, h.Country, h.Stars,
		h.PricePerNightCents, h.TotalRooms, h.AvailableRooms, h.Description, h.ID); err != nil {
		return translate(err)
	}
	return r.replaceAmenitiesTx(ctx, tx, h.ID, h.Amenities)
}

func (r *HotelRepo) replaceAmenitiesTx(ctx context.Context, tx database.DBTX, hotelID uint64, amenities []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM hotel_amenities WHERE hotel_id = ?`, hotelID); err != nil {
		return err
	}
	seen := make(map[string]bool, len(amenities))
	query := `INSERT INTO hotel_amenities (hotel_id, amenity) VALUES `
	args := make([]any, 0, len(amenities)*2)
	for _, a := range amenities {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		if len(args) > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, hotelID, a)
	}
	if len(args) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a hotel and its amenities.  Hotels referenced by
// reservations cannot be deleted (ErrReferenced).
func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, id)
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
