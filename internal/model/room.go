package model

import "time"

// RoomType groups identical rooms within a hotel.  Price and capacity are
// attributes of the type, not of individual units.  A booking references a
// room type together with a quantity; specific units are never assigned.
//
// Fields:
//  ID         – primary key identifier.
//  HotelID    – hotel that owns this room type.
//  Title      – display name such as "Deluxe Double".
//  PriceCents – nightly price in minor currency units.
//  MaxPeople  – maximum occupancy per unit.
//  UnitCount  – number of physical units of this type.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type RoomType struct {
	ID         uint64    `json:"id"`          // room_types.id
	HotelID    uint64    `json:"hotel_id"`    // room_types.hotel_id
	Title      string    `json:"title"`       // room_types.title
	PriceCents uint64    `json:"price_cents"` // room_types.price_cents
	MaxPeople  uint32    `json:"max_people"`  // room_types.max_people
	UnitCount  uint32    `json:"unit_count"`  // COUNT(room_units) for this type
	CreatedAt  time.Time `json:"-"`           // room_types.created_at
	UpdatedAt  time.Time `json:"-"`           // room_types.updated_at
}

// RoomUnit is one physical room belonging to a room type.  Occupancy is a
// derived view computed from overlapping bookings, so the unit row itself
// carries no mutable availability state.
type RoomUnit struct {
	ID         uint64    `json:"id"`           // room_units.id
	RoomTypeID uint64    `json:"room_type_id"` // room_units.room_type_id
	RoomNumber string    `json:"room_number"`  // room_units.room_number
	CreatedAt  time.Time `json:"-"`            // room_units.created_at
}
