package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// HotelRepo provides read access to the hotels table.  Hotels and their
// rooms are managed by an external administrative surface; this service
// never mutates them.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo returns a new HotelRepo bound to the given database.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// HotelQuery defines the catalog filters for searching hotels.
// Destination matches the city, Type matches the hotel category.  Both
// are optional; an empty query returns every hotel.
type HotelQuery struct {
	Destination string
	Type        string
}

// cheapestExpr derives a hotel's lowest nightly price from its room
// types.  Hotels without room types price at zero and sort last.
const cheapestExpr = `COALESCE((SELECT MIN(rt.price_cents) FROM room_types rt WHERE rt.hotel_id = h.id), 0)`

// Search returns hotels matching the query ordered by cheapest nightly
// price ascending.  Destination matching is a case-insensitive substring
// match on the city; type matching is exact.  A type filter with no
// destination matches on type alone.
func (r *HotelRepo) Search(ctx context.Context, q HotelQuery) ([]model.Hotel, error) {
	where := []string{}
	args := []any{}

	if q.Destination != "" {
		where = append(where, "LOWER(h.city) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Destination)+"%")
	}
	if q.Type != "" {
		where = append(where, "LOWER(h.hotel_type) = ?")
		args = append(args, strings.ToLower(q.Type))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	query := `SELECT h.id, h.name, h.city, h.hotel_type, ` + cheapestExpr + ` AS cheapest_cents,
                     h.created_at, h.updated_at
              FROM hotels h
              WHERE ` + cond + `
              ORDER BY cheapest_cents ASC, h.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Hotel, 0)
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.City, &h.HotelType, &h.CheapestCents, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a single hotel or ErrHotelNotFound.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	const q = `SELECT h.id, h.name, h.city, h.hotel_type, ` + cheapestExpr + `,
                      h.created_at, h.updated_at
               FROM hotels h
               WHERE h.id = ?`
	var h model.Hotel
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.City, &h.HotelType, &h.CheapestCents, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}
