package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// ErrNoRoomsRequested is returned when a booking names no room type with
// a positive quantity.
var ErrNoRoomsRequested = errors.New("no rooms requested")

// ErrCancelWindowClosed is returned when a configured cancellation cutoff
// forbids cancelling this close to check-in.  The cutoff is disabled by
// default; the reference behavior allows cancelling any non-cancelled
// booking at any time with a full refund.
var ErrCancelWindowClosed = errors.New("cancellation window closed")

// HotelCatalog reads hotels.  Implemented by repository.HotelRepo and by
// the in-memory store used in tests.
type HotelCatalog interface {
	Search(ctx context.Context, q repository.HotelQuery) ([]model.Hotel, error)
	GetByID(ctx context.Context, id uint64) (*model.Hotel, error)
}

// RoomCatalog reads room types with derived unit counts, plus the
// physical units behind a type for display purposes.
type RoomCatalog interface {
	ListByHotel(ctx context.Context, hotelID uint64) ([]model.RoomType, error)
	UnitsByType(ctx context.Context, roomTypeID uint64) ([]model.RoomUnit, error)
}

// BookingStore owns the durable booking state.  Reserve must perform the
// availability check and the insert atomically: under concurrent calls
// requesting the last free unit, exactly one may succeed.
type BookingStore interface {
	Reserve(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	OverlapClaims(ctx context.Context, hotelID uint64, rng inventory.DateRange) ([]inventory.Claim, error)
	Cancel(ctx context.Context, id uint64, now time.Time) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, newStatus string, allowedFrom ...string) (*model.Booking, error)
	CompletePast(ctx context.Context, today time.Time) (int64, error)
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher pushes booking events to the broker.  Failures must never
// fail the booking operation itself.
type EventPublisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingService implements the room inventory and booking lifecycle
// engine: availability search, atomic reservation, cancellation with
// refund and the auto-complete sweep.
type BookingService struct {
	hotels    HotelCatalog
	rooms     RoomCatalog
	bookings  BookingStore
	clock     inventory.Clock
	publisher EventPublisher // nil disables event publishing

	// CancelCutoff, when positive, rejects cancellations made less than
	// this long before check-in.  Zero keeps the legacy behavior of
	// cancel-any-time with a full refund.
	CancelCutoff time.Duration
}

// NewBookingService constructs the engine.  All dependencies except the
// publisher must be non-nil.
func NewBookingService(hotels HotelCatalog, rooms RoomCatalog, bookings BookingStore, clock inventory.Clock, publisher EventPublisher) *BookingService {
	if hotels == nil || rooms == nil || bookings == nil || clock == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		hotels:    hotels,
		rooms:     rooms,
		bookings:  bookings,
		clock:     clock,
		publisher: publisher,
	}
}

// SearchInput holds the filters of an availability search.  Destination
// and Type are optional; a type filter with no destination matches on
// type alone.  A nil Range means browsing mode: inventory filtering is
// skipped entirely and results must not be used to confirm a booking.
type SearchInput struct {
	Destination string
	Type        string
	Range       *inventory.DateRange
	Requests    []inventory.RoomRequest
}

// SearchAvailableHotels returns the hotels where every room request can be
// placed.  Requests are assigned greedily, largest party first, each to
// the cheapest room type with sufficient capacity and a free unit left
// for the range.  Hotels where any request cannot be placed are excluded.
// Zero matches is an empty slice, not an error.
func (s *BookingService) SearchAvailableHotels(ctx context.Context, in SearchInput) ([]model.Hotel, error) {
	s.sweepQuietly(ctx)

	hotels, err := s.hotels.Search(ctx, repository.HotelQuery{Destination: in.Destination, Type: in.Type})
	if err != nil {
		return nil, err
	}
	if in.Range == nil && len(in.Requests) == 0 {
		return hotels, nil
	}

	out := make([]model.Hotel, 0, len(hotels))
	for _, h := range hotels {
		ok, err := s.hotelFeasible(ctx, h.ID, in)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// hotelFeasible builds the per-type free budgets for one hotel and runs
// the greedy assignment against them.
func (s *BookingService) hotelFeasible(ctx context.Context, hotelID uint64, in SearchInput) (bool, error) {
	types, err := s.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return false, err
	}
	if len(types) == 0 {
		return false, nil
	}

	var claims []inventory.Claim
	if in.Range != nil {
		claims, err = s.bookings.OverlapClaims(ctx, hotelID, *in.Range)
		if err != nil {
			return false, err
		}
	}

	budgets := make([]inventory.TypeBudget, 0, len(types))
	for _, rt := range types {
		free := rt.UnitCount
		if in.Range != nil {
			free = inventory.FreeCount(rt.UnitCount, claims, rt.ID, *in.Range)
		}
		budgets = append(budgets, inventory.TypeBudget{
			RoomTypeID: rt.ID,
			MaxPeople:  rt.MaxPeople,
			PriceCents: rt.PriceCents,
			Free:       free,
		})
	}

	if len(in.Requests) == 0 {
		// Date range without explicit requests: the hotel qualifies when
		// any unit at all is free for the stay.
		for _, b := range budgets {
			if b.Free > 0 {
				return true, nil
			}
		}
		return false, nil
	}
	return inventory.AssignRequests(in.Requests, budgets), nil
}

// CheckAvailability returns the IDs of room types with zero free units
// for the range, i.e. the types a client must not offer for those dates.
func (s *BookingService) CheckAvailability(ctx context.Context, hotelID uint64, rng inventory.DateRange) ([]uint64, error) {
	s.sweepQuietly(ctx)

	if _, err := s.hotels.GetByID(ctx, hotelID); err != nil {
		return nil, err
	}
	types, err := s.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	claims, err := s.bookings.OverlapClaims(ctx, hotelID, rng)
	if err != nil {
		return nil, err
	}

	booked := make([]uint64, 0)
	for _, rt := range types {
		if inventory.FreeCount(rt.UnitCount, claims, rt.ID, rng) == 0 {
			booked = append(booked, rt.ID)
		}
	}
	sort.Slice(booked, func(i, j int) bool { return booked[i] < booked[j] })
	return booked, nil
}

// UnitOccupancy pairs a physical room with the stay intervals projected
// onto it for a queried range.
type UnitOccupancy struct {
	Unit   model.RoomUnit        `json:"unit"`
	Booked []inventory.DateRange `json:"booked"`
}

// UnitOccupancy returns a per-unit occupancy view of one room type for a
// range.  Bookings claim quantities, not units, so the claims are spread
// across the units first-fit; the result is one valid assignment, meant
// for display rather than allocation.
func (s *BookingService) UnitOccupancy(ctx context.Context, hotelID, roomTypeID uint64, rng inventory.DateRange) ([]UnitOccupancy, error) {
	s.sweepQuietly(ctx)

	if _, err := s.hotels.GetByID(ctx, hotelID); err != nil {
		return nil, err
	}
	types, err := s.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, rt := range types {
		if rt.ID == roomTypeID {
			found = true
			break
		}
	}
	if !found {
		return nil, repository.ErrRoomTypeNotFound
	}

	units, err := s.rooms.UnitsByType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	claims, err := s.bookings.OverlapClaims(ctx, hotelID, rng)
	if err != nil {
		return nil, err
	}

	calendars := inventory.ProjectUnits(uint32(len(units)), claims, roomTypeID, rng)
	out := make([]UnitOccupancy, len(units))
	for i, u := range units {
		booked := calendars[i].Booked()
		if booked == nil {
			booked = []inventory.DateRange{}
		}
		out[i] = UnitOccupancy{Unit: u, Booked: booked}
	}
	return out, nil
}

// CreateBookingInput carries everything needed to reserve a stay.  Rooms
// maps room type IDs to unit quantities; zero quantities are ignored.
type CreateBookingInput struct {
	HotelID        uint64
	UserID         uint64
	Rooms          map[uint64]uint32
	StartDate      time.Time
	EndDate        time.Time
	CardholderName string
}

// CreateBooking validates the stay, prices it, captures payment and
// reserves the units atomically.  The stay must start today or later and
// span at least one night.  Each requested type must have freeCount at
// least the requested quantity at commit time, else
// repository.ErrRoomUnavailable is returned and nothing is written.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	rng, err := inventory.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if rng.Start.Before(inventory.Day(now)) {
		return nil, inventory.ErrInvalidDateRange
	}

	hotel, err := s.hotels.GetByID(ctx, in.HotelID)
	if err != nil {
		return nil, err
	}
	types, err := s.rooms.ListByHotel(ctx, in.HotelID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.RoomType, len(types))
	for _, rt := range types {
		byID[rt.ID] = rt
	}

	nights := uint64(rng.Nights())
	lines := make([]model.BookingRoom, 0, len(in.Rooms))
	eventRooms := make([]queue.BookedRoomLine, 0, len(in.Rooms))
	var total uint64
	for typeID, qty := range in.Rooms {
		if qty == 0 {
			continue
		}
		rt, ok := byID[typeID]
		if !ok {
			return nil, repository.ErrRoomTypeNotFound
		}
		lines = append(lines, model.BookingRoom{
			RoomTypeID: rt.ID,
			Quantity:   qty,
			PriceCents: rt.PriceCents,
		})
		eventRooms = append(eventRooms, queue.BookedRoomLine{
			RoomTypeID: rt.ID,
			Title:      rt.Title,
			Quantity:   qty,
			PriceCents: rt.PriceCents,
		})
		total += rt.PriceCents * uint64(qty) * nights
	}
	if len(lines) == 0 {
		return nil, ErrNoRoomsRequested
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].RoomTypeID < lines[j].RoomTypeID })
	sort.Slice(eventRooms, func(i, j int) bool { return eventRooms[i].RoomTypeID < eventRooms[j].RoomTypeID })

	// Payment capture is an opaque synchronous success in this engine, so
	// the booking is born CONFIRMED with the payment completed.
	paymentDate := now
	b := &model.Booking{
		Reference:        uuid.NewString(),
		HotelID:          in.HotelID,
		UserID:           in.UserID,
		StartDate:        rng.Start,
		EndDate:          rng.End,
		Status:           model.BookingStatusConfirmed,
		PaymentStatus:    model.PaymentStatusCompleted,
		TotalAmountCents: total,
		CardholderName:   in.CardholderName,
		PaymentDate:      &paymentDate,
		Rooms:            lines,
	}
	if err := s.bookings.Reserve(ctx, b); err != nil {
		return nil, err
	}

	s.publishConfirmed(ctx, hotel, b, eventRooms)
	return b, nil
}

// CancelBooking cancels a booking and refunds the full amount.  When
// userID is non-zero the booking must belong to that user.  Confirmed and
// completed bookings are both cancellable; a second cancel fails
// repository.ErrAlreadyCancelled and never refunds twice.  The returned
// amount is the refund.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uint64) (*model.Booking, uint64, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, 0, err
	}
	if userID != 0 && current.UserID != userID {
		return nil, 0, repository.ErrForbidden
	}
	now := s.clock.Now()
	if s.CancelCutoff > 0 && now.After(current.StartDate.Add(-s.CancelCutoff)) {
		return nil, 0, ErrCancelWindowClosed
	}

	cancelled, err := s.bookings.Cancel(ctx, bookingID, now)
	if err != nil {
		return nil, 0, err
	}
	refund := cancelled.TotalAmountCents

	s.publishCancelled(ctx, cancelled, refund)
	return cancelled, refund, nil
}

// UpdateBookingStatus applies an explicit forward transition: PENDING may
// confirm, CONFIRMED may complete, and CONFIRMED or COMPLETED may cancel
// (routed through the refunding cancel path).  Everything else fails
// repository.ErrInvalidTransition.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID uint64, newStatus string) (*model.Booking, error) {
	switch newStatus {
	case model.BookingStatusConfirmed:
		return s.bookings.UpdateStatus(ctx, bookingID, newStatus, model.BookingStatusPending)
	case model.BookingStatusCompleted:
		return s.bookings.UpdateStatus(ctx, bookingID, newStatus, model.BookingStatusConfirmed)
	case model.BookingStatusCancelled:
		b, _, err := s.CancelBooking(ctx, bookingID, 0)
		if errors.Is(err, repository.ErrAlreadyCancelled) {
			return nil, repository.ErrInvalidTransition
		}
		return b, err
	default:
		return nil, repository.ErrInvalidTransition
	}
}

// AutoCompletePastBookings transitions confirmed bookings whose checkout
// date has passed to COMPLETED and returns how many changed.  The
// operation is idempotent.
func (s *BookingService) AutoCompletePastBookings(ctx context.Context) (int64, error) {
	return s.bookings.CompletePast(ctx, s.clock.Now())
}

// sweepQuietly runs the auto-complete sweep on behalf of a read path.
// Errors are logged and suppressed: the sweep must never fail the read
// that triggered it.
func (s *BookingService) sweepQuietly(ctx context.Context) {
	if _, err := s.bookings.CompletePast(ctx, s.clock.Now()); err != nil {
		log.Printf("booking sweep failed: %v", err)
	}
}

// GetBooking returns one booking.  When userID is non-zero the booking
// must belong to that user.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID uint64) (*model.Booking, error) {
	s.sweepQuietly(ctx)
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && b.UserID != userID {
		return nil, repository.ErrForbidden
	}
	return b, nil
}

// ListUserBookings returns all bookings of a user, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	s.sweepQuietly(ctx)
	return s.bookings.ListByUser(ctx, userID)
}

// DeleteBooking hard-deletes a booking.  Administrative override: no
// refund bookkeeping, excluded from the engine's consistency guarantees.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID uint64) error {
	return s.bookings.Delete(ctx, bookingID)
}

func (s *BookingService) publishConfirmed(ctx context.Context, hotel *model.Hotel, b *model.Booking, rooms []queue.BookedRoomLine) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		Reference:        b.Reference,
		UserID:           b.UserID,
		HotelID:          b.HotelID,
		HotelName:        hotel.Name,
		City:             hotel.City,
		StartDate:        b.StartDate.Format("2006-01-02"),
		EndDate:          b.EndDate.Format("2006-01-02"),
		Nights:           inventory.DateRange{Start: b.StartDate, End: b.EndDate}.Nights(),
		Rooms:            rooms,
		TotalAmountCents: b.TotalAmountCents,
		ConfirmedAt:      s.clock.Now().Format(time.RFC3339),
	}
	if err := s.publisher.BookingConfirmed(ctx, ev); err != nil {
		log.Printf("publish booking.confirmed failed: %v", err)
	}
}

func (s *BookingService) publishCancelled(ctx context.Context, b *model.Booking, refund uint64) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingCancelledEvent{
		BookingID:   b.ID,
		Reference:   b.Reference,
		UserID:      b.UserID,
		HotelID:     b.HotelID,
		RefundCents: refund,
		CancelledAt: s.clock.Now().Format(time.RFC3339),
	}
	if err := s.publisher.BookingCancelled(ctx, ev); err != nil {
		log.Printf("publish booking.cancelled failed: %v", err)
	}
}
