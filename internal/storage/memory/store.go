// Package memory provides an in-process implementation of the booking
// engine's storage interfaces.  It backs the service tests and can serve
// as a throwaway store for local experiments.  A single mutex guards the
// whole store, which makes Reserve's check-then-insert naturally atomic.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// Store holds hotels, room types and bookings in maps.  Its Hotels,
// Rooms and Bookings views satisfy the catalog and booking store
// interfaces consumed by the service layer, one view per entity to match
// the SQL repository layout.
type Store struct {
	mu        sync.Mutex
	hotels    map[uint64]model.Hotel
	roomTypes map[uint64]model.RoomType
	bookings  map[uint64]*model.Booking
	nextID    uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		hotels:    make(map[uint64]model.Hotel),
		roomTypes: make(map[uint64]model.RoomType),
		bookings:  make(map[uint64]*model.Booking),
	}
}

// Hotels returns the hotel catalog view.
func (s *Store) Hotels() *HotelView { return &HotelView{s: s} }

// Rooms returns the room type catalog view.
func (s *Store) Rooms() *RoomView { return &RoomView{s: s} }

// Bookings returns the booking store view.
func (s *Store) Bookings() *BookingView { return &BookingView{s: s} }

func (s *Store) nextSeq() uint64 {
	s.nextID++
	return s.nextID
}

// AddHotel seeds a hotel and returns its ID.
func (s *Store) AddHotel(name, city, hotelType string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSeq()
	s.hotels[id] = model.Hotel{ID: id, Name: name, City: city, HotelType: hotelType}
	return id
}

// AddRoomType seeds a room type with the given number of units and
// returns its ID.
func (s *Store) AddRoomType(hotelID uint64, title string, priceCents uint64, maxPeople, unitCount uint32) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSeq()
	s.roomTypes[id] = model.RoomType{
		ID:         id,
		HotelID:    hotelID,
		Title:      title,
		PriceCents: priceCents,
		MaxPeople:  maxPeople,
		UnitCount:  unitCount,
	}
	return id
}

func (s *Store) cheapestLocked(hotelID uint64) uint64 {
	var cheapest uint64
	for _, rt := range s.roomTypes {
		if rt.HotelID != hotelID {
			continue
		}
		if cheapest == 0 || rt.PriceCents < cheapest {
			cheapest = rt.PriceCents
		}
	}
	return cheapest
}

func (s *Store) claimsLocked(hotelID uint64, rng inventory.DateRange) []inventory.Claim {
	claims := make([]inventory.Claim, 0)
	for _, b := range s.bookings {
		if b.HotelID != hotelID || !b.Active() {
			continue
		}
		brng := inventory.DateRange{Start: b.StartDate, End: b.EndDate}
		if !brng.Overlaps(rng) {
			continue
		}
		for _, line := range b.Rooms {
			claims = append(claims, inventory.Claim{
				RoomTypeID: line.RoomTypeID,
				Quantity:   line.Quantity,
				Range:      brng,
			})
		}
	}
	return claims
}

func copyBooking(b *model.Booking) *model.Booking {
	cp := *b
	cp.Rooms = append([]model.BookingRoom(nil), b.Rooms...)
	return &cp
}

// HotelView is the hotel catalog over a Store.
type HotelView struct {
	s *Store
}

// Search filters hotels by destination substring and exact type, ordered
// by cheapest nightly price ascending with ID as tiebreaker.
func (v *HotelView) Search(_ context.Context, q repository.HotelQuery) ([]model.Hotel, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]model.Hotel, 0)
	for _, h := range v.s.hotels {
		if q.Destination != "" && !strings.Contains(strings.ToLower(h.City), strings.ToLower(q.Destination)) {
			continue
		}
		if q.Type != "" && !strings.EqualFold(h.HotelType, q.Type) {
			continue
		}
		h.CheapestCents = v.s.cheapestLocked(h.ID)
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheapestCents != out[j].CheapestCents {
			return out[i].CheapestCents < out[j].CheapestCents
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetByID returns a hotel or repository.ErrHotelNotFound.
func (v *HotelView) GetByID(_ context.Context, id uint64) (*model.Hotel, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	h, ok := v.s.hotels[id]
	if !ok {
		return nil, repository.ErrHotelNotFound
	}
	h.CheapestCents = v.s.cheapestLocked(id)
	return &h, nil
}

// RoomView is the room type catalog over a Store.
type RoomView struct {
	s *Store
}

// ListByHotel returns the room types of a hotel cheapest first.
func (v *RoomView) ListByHotel(_ context.Context, hotelID uint64) ([]model.RoomType, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]model.RoomType, 0)
	for _, rt := range v.s.roomTypes {
		if rt.HotelID == hotelID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriceCents != out[j].PriceCents {
			return out[i].PriceCents < out[j].PriceCents
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UnitsByType synthesizes unit rows from the type's unit count.  The
// store tracks counts only, so room numbers are generated sequentially.
func (v *RoomView) UnitsByType(_ context.Context, roomTypeID uint64) ([]model.RoomUnit, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rt, ok := v.s.roomTypes[roomTypeID]
	if !ok {
		return nil, repository.ErrRoomTypeNotFound
	}
	out := make([]model.RoomUnit, rt.UnitCount)
	for i := range out {
		out[i] = model.RoomUnit{
			ID:         uint64(i + 1),
			RoomTypeID: roomTypeID,
			RoomNumber: strconv.Itoa(i + 1),
		}
	}
	return out, nil
}

// BookingView is the booking store over a Store.
type BookingView struct {
	s *Store
}

// Reserve checks availability and inserts the booking under one lock, so
// concurrent reservations for the last free unit cannot both succeed.
func (v *BookingView) Reserve(_ context.Context, b *model.Booking) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	rng := inventory.DateRange{Start: b.StartDate, End: b.EndDate}
	claims := v.s.claimsLocked(b.HotelID, rng)
	for _, line := range b.Rooms {
		rt, ok := v.s.roomTypes[line.RoomTypeID]
		if !ok || rt.HotelID != b.HotelID {
			return repository.ErrRoomTypeNotFound
		}
		if inventory.FreeCount(rt.UnitCount, claims, rt.ID, rng) < line.Quantity {
			return repository.ErrRoomUnavailable
		}
	}

	b.ID = v.s.nextSeq()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	for i := range b.Rooms {
		b.Rooms[i].BookingID = b.ID
	}
	v.s.bookings[b.ID] = copyBooking(b)
	return nil
}

// GetByID returns a copy of the booking or repository.ErrBookingNotFound.
func (v *BookingView) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	b, ok := v.s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

// ListByUser returns the bookings of a user, newest first.
func (v *BookingView) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range v.s.bookings {
		if b.UserID != userID {
			continue
		}
		out = append(out, *copyBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// OverlapClaims returns the active claims at a hotel overlapping the
// range.
func (v *BookingView) OverlapClaims(_ context.Context, hotelID uint64, rng inventory.DateRange) ([]inventory.Claim, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.claimsLocked(hotelID, rng), nil
}

// Cancel applies the terminal cancel transition atomically under the
// store lock: status, payment status and cancel date change together.
func (v *BookingView) Cancel(_ context.Context, id uint64, now time.Time) (*model.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	b, ok := v.s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status == model.BookingStatusCancelled {
		return nil, repository.ErrAlreadyCancelled
	}
	t := now.UTC()
	b.Status = model.BookingStatusCancelled
	b.PaymentStatus = model.PaymentStatusRefunded
	b.CancelDate = &t
	b.UpdatedAt = t
	return copyBooking(b), nil
}

// UpdateStatus moves the booking to newStatus when its current status is
// among allowedFrom.
func (v *BookingView) UpdateStatus(_ context.Context, id uint64, newStatus string, allowedFrom ...string) (*model.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	b, ok := v.s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	permitted := false
	for _, from := range allowedFrom {
		if b.Status == from {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, repository.ErrInvalidTransition
	}
	b.Status = newStatus
	b.UpdatedAt = time.Now().UTC()
	return copyBooking(b), nil
}

// CompletePast transitions confirmed bookings whose checkout has passed.
func (v *BookingView) CompletePast(_ context.Context, today time.Time) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	day := inventory.Day(today)
	var n int64
	for _, b := range v.s.bookings {
		if b.Status == model.BookingStatusConfirmed && !b.EndDate.After(day) {
			b.Status = model.BookingStatusCompleted
			b.UpdatedAt = today.UTC()
			n++
		}
	}
	return n, nil
}

// Delete removes a booking entirely.
func (v *BookingView) Delete(_ context.Context, id uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(v.s.bookings, id)
	return nil
}
