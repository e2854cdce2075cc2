package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // time parses stay dates

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/hotel-reservation/internal/inventory"
)

// stayDateFormat is the wire format for check-in and check-out dates.
const stayDateFormat = "2006-01-02"

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseStayDate parses a YYYY-MM-DD date string into a midnight-UTC
// timestamp.
func parseStayDate(s string) (time.Time, error) {
	t, err := time.Parse(stayDateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return inventory.Day(t), nil
}

// parseStayRange parses optional start/end date strings into a validated
// DateRange.  Both empty yields (nil, nil); exactly one present or an
// unparseable or zero-night pair yields an error.
func parseStayRange(startStr, endStr string) (*inventory.DateRange, error) {
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, inventory.ErrInvalidDateRange
	}
	start, err := parseStayDate(startStr)
	if err != nil {
		return nil, inventory.ErrInvalidDateRange
	}
	end, err := parseStayDate(endStr)
	if err != nil {
		return nil, inventory.ErrInvalidDateRange
	}
	rng, err := inventory.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return &rng, nil
}
