// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them to HTTP responses. ErrRoomUnavailable in particular must stay
// distinguishable from generic failures so clients can offer
// alternative dates instead of a plain error page.
package repository

import "errors"

// ErrHotelNotFound is returned when a hotel ID does not exist.
var ErrHotelNotFound = errors.New("hotel not found")

// ErrBookingNotFound is returned when a booking ID does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRoomTypeNotFound is returned when a referenced room type does not
// exist or does not belong to the hotel being booked.
var ErrRoomTypeNotFound = errors.New("room type not found")

// ErrRoomUnavailable is returned when the requested quantity of a room
// type exceeds the free units for the stay range at write time.
var ErrRoomUnavailable = errors.New("room unavailable")

// ErrAlreadyCancelled is returned when cancelling a booking that is
// already cancelled. The refund is never applied twice.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrInvalidTransition is returned when a status update would move a
// booking backwards, e.g. out of CANCELLED or COMPLETED.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrForbidden is returned when the caller attempts an operation on a
// booking they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
