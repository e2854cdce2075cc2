// Package queue defines message payloads exchanged over the message broker.
package queue

// BookedRoomLine describes one room type line inside a booking event.
type BookedRoomLine struct {
	RoomTypeID uint64 `json:"room_type_id"`
	Title      string `json:"title"`
	Quantity   uint32 `json:"quantity"`
	PriceCents uint64 `json:"price_cents"`
}

// BookingConfirmedEvent is published when a booking is successfully
// reserved and paid.  It carries enough information for downstream
// consumers to log, notify or feed analytics without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64           `json:"booking_id"`
	Reference        string           `json:"reference"`
	UserID           uint64           `json:"user_id"`
	HotelID          uint64           `json:"hotel_id"`
	HotelName        string           `json:"hotel_name"`
	City             string           `json:"city"`
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date"`
	Nights           int              `json:"nights"`
	Rooms            []BookedRoomLine `json:"rooms"`
	TotalAmountCents uint64           `json:"total_amount_cents"`
	ConfirmedAt      string           `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and the
// payment refunded in full.
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	Reference   string `json:"reference"`
	UserID      uint64 `json:"user_id"`
	HotelID     uint64 `json:"hotel_id"`
	RefundCents uint64 `json:"refund_cents"`
	CancelledAt string `json:"cancelled_at"`
}
