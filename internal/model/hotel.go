package model

import "time"

// Hotel represents a property that offers rooms for booking.  Hotels are
// managed by an external administrative surface; this service only reads
// them when searching and pricing.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – display name of the hotel.
//  City           – city used for destination matching.
//  HotelType      – category such as "hotel", "apartment" or "resort".
//  CheapestCents  – derived lowest nightly price across the hotel's room
//                   types; zero when the hotel has no room types.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Hotel struct {
	ID            uint64    `json:"id"`             // hotels.id
	Name          string    `json:"name"`           // hotels.name
	City          string    `json:"city"`           // hotels.city
	HotelType     string    `json:"type"`           // hotels.hotel_type
	CheapestCents uint64    `json:"cheapest_cents"` // derived from room_types.price_cents
	CreatedAt     time.Time `json:"-"`              // hotels.created_at
	UpdatedAt     time.Time `json:"-"`              // hotels.updated_at
}
