package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomTypeRepo provides read access to room_types and room_units.  Unit
// counts are derived with a COUNT over room_units; unit rows carry no
// availability state of their own.
type RoomTypeRepo struct {
	db *sql.DB
}

// NewRoomTypeRepo returns a new RoomTypeRepo bound to the given database.
func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

// ListByHotel returns every room type of a hotel together with its unit
// count, ordered by price ascending so callers can iterate cheapest-first.
func (r *RoomTypeRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.RoomType, error) {
	const q = `SELECT rt.id, rt.hotel_id, rt.title, rt.price_cents, rt.max_people,
                      (SELECT COUNT(*) FROM room_units ru WHERE ru.room_type_id = rt.id) AS unit_count,
                      rt.created_at, rt.updated_at
               FROM room_types rt
               WHERE rt.hotel_id = ?
               ORDER BY rt.price_cents ASC, rt.id ASC`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.RoomType, 0)
	for rows.Next() {
		var rt model.RoomType
		if err := rows.Scan(&rt.ID, &rt.HotelID, &rt.Title, &rt.PriceCents, &rt.MaxPeople, &rt.UnitCount, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UnitsByType returns the physical units of a room type ordered by room
// number.  Used only for display; bookings never reference units.
func (r *RoomTypeRepo) UnitsByType(ctx context.Context, roomTypeID uint64) ([]model.RoomUnit, error) {
	const q = `SELECT id, room_type_id, room_number, created_at
               FROM room_units
               WHERE room_type_id = ?
               ORDER BY room_number ASC`
	rows, err := r.db.QueryContext(ctx, q, roomTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.RoomUnit, 0)
	for rows.Next() {
		var u model.RoomUnit
		if err := rows.Scan(&u.ID, &u.RoomTypeID, &u.RoomNumber, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
