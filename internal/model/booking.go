package model

import "time"

// Booking status values.  CONFIRMED is the state a booking is created in
// once payment has been captured.  COMPLETED is reached when the checkout
// date has passed.  CANCELLED is terminal: no transition may leave it.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// Payment status values.  Payment is captured synchronously at creation, so
// confirmed bookings carry PaymentCompleted.  Cancellation refunds the full
// amount and moves the payment to PaymentRefunded.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusRefunded  = "REFUNDED"
)

// Booking records a user's stay at a hotel.  It claims quantities of room
// types for a half-open date range [StartDate, EndDate); the checkout day
// is never an occupied night.  Only bookings in CONFIRMED or COMPLETED
// status count against inventory.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – opaque UUID exposed to clients alongside the ID.
//  HotelID          – hotel being booked.
//  UserID           – user who made the booking.
//  StartDate        – check-in date (inclusive), midnight UTC.
//  EndDate          – check-out date (exclusive), midnight UTC.
//  Status           – booking lifecycle state.
//  PaymentStatus    – payment lifecycle state.
//  TotalAmountCents – sum(price × quantity) × nights, fixed at creation.
//  CardholderName   – name captured with the payment.
//  PaymentDate      – when payment was captured (nullable).
//  CancelDate       – when the booking was cancelled (nullable).
//  Rooms            – room type quantities claimed by this booking.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
	ID               uint64        `json:"id"`                     // bookings.id
	Reference        string        `json:"reference"`              // bookings.reference
	HotelID          uint64        `json:"hotel_id"`               // bookings.hotel_id
	UserID           uint64        `json:"user_id"`                // bookings.user_id
	StartDate        time.Time     `json:"start_date"`             // bookings.start_date
	EndDate          time.Time     `json:"end_date"`               // bookings.end_date
	Status           string        `json:"status"`                 // bookings.status
	PaymentStatus    string        `json:"payment_status"`         // bookings.payment_status
	TotalAmountCents uint64        `json:"total_amount_cents"`     // bookings.total_amount_cents
	CardholderName   string        `json:"cardholder_name"`        // bookings.cardholder_name
	PaymentDate      *time.Time    `json:"payment_date,omitempty"` // bookings.payment_date (nullable)
	CancelDate       *time.Time    `json:"cancel_date,omitempty"`  // bookings.cancel_date (nullable)
	Rooms            []BookingRoom `json:"rooms"`                  // booking_rooms rows
	CreatedAt        time.Time     `json:"created_at"`             // bookings.created_at
	UpdatedAt        time.Time     `json:"updated_at"`             // bookings.updated_at
}

// BookingRoom links a booking to a room type with the quantity of units
// claimed.  PriceCents snapshots the nightly price at booking time so the
// total stays stable if the room type is later repriced.
type BookingRoom struct {
	ID         uint64 `json:"-"`            // booking_rooms.id
	BookingID  uint64 `json:"-"`            // booking_rooms.booking_id
	RoomTypeID uint64 `json:"room_type_id"` // booking_rooms.room_type_id
	Quantity   uint32 `json:"quantity"`     // booking_rooms.quantity
	PriceCents uint64 `json:"price_cents"`  // booking_rooms.price_cents
}

// Active reports whether the booking currently counts against room
// inventory.  Cancelled bookings free their units immediately; completed
// bookings still block the nights they covered.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusCompleted
}
