package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/storage/memory"
)

func testService(now time.Time) (*service.BookingService, *memory.Store) {
	store := memory.New()
	svc := service.NewBookingService(store.Hotels(), store.Rooms(), store.Bookings(), inventory.FixedClock{T: now}, nil)
	return svc, store
}

func jsonCtx(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestBookingCreateAndErrorMapping(t *testing.T) {
	svc, store := testService(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	hotelID := store.AddHotel("Grand Plaza", "Istanbul", "hotel")
	deluxeID := store.AddRoomType(hotelID, "Deluxe", 1_000_000, 2, 2)
	h := NewBookingHandler(svc)
	e := echo.New()

	createBody := func(qty uint32, start, end string) string {
		return `{"hotel_id":` + strconv.FormatUint(hotelID, 10) +
			`,"rooms":{"` + strconv.FormatUint(deluxeID, 10) + `":` + strconv.FormatUint(uint64(qty), 10) + `}` +
			`,"start_date":"` + start + `","end_date":"` + end + `","cardholder_name":"A. Guest"}`
	}

	t.Run("created", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodPost, "/v1/bookings", createBody(2, "2026-01-10", "2026-01-12"))
		c.Set("user_id", uint64(7))
		require.NoError(t, h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		item := decodeBody(t, rec)["item"].(map[string]any)
		assert.Equal(t, float64(4_000_000), item["total_amount_cents"])
		assert.Equal(t, "CONFIRMED", item["status"])
	})

	t.Run("conflict when sold out", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodPost, "/v1/bookings", createBody(1, "2026-01-11", "2026-01-13"))
		c.Set("user_id", uint64(8))
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "room unavailable", decodeBody(t, rec)["error"])
	})

	t.Run("invalid range", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodPost, "/v1/bookings", createBody(1, "2026-01-12", "2026-01-10"))
		c.Set("user_id", uint64(8))
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unparseable date", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodPost, "/v1/bookings", createBody(1, "Jan 10", "2026-01-12"))
		c.Set("user_id", uint64(8))
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodPost, "/v1/bookings", createBody(1, "2026-01-20", "2026-01-22"))
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBookingCancelFlow(t *testing.T) {
	svc, store := testService(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	hotelID := store.AddHotel("Grand Plaza", "Istanbul", "hotel")
	deluxeID := store.AddRoomType(hotelID, "Deluxe", 1_000_000, 2, 2)
	h := NewBookingHandler(svc)
	e := echo.New()

	b, err := svc.CreateBooking(context.Background(), service.CreateBookingInput{
		HotelID:   hotelID,
		UserID:    7,
		Rooms:     map[uint64]uint32{deluxeID: 2},
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	idParam := strconv.FormatUint(b.ID, 10)

	cancel := func(userID uint64) *httptest.ResponseRecorder {
		c, rec := jsonCtx(e, http.MethodPost, "/v1/bookings/"+idParam+"/cancel", "")
		c.SetParamNames("id")
		c.SetParamValues(idParam)
		c.Set("user_id", userID)
		require.NoError(t, h.Cancel(c))
		return rec
	}

	rec := cancel(42)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = cancel(7)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4_000_000), decodeBody(t, rec)["refund_cents"])

	rec = cancel(7)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "booking already cancelled", decodeBody(t, rec)["error"])
}

func TestBookingGetAndList(t *testing.T) {
	svc, store := testService(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	hotelID := store.AddHotel("Grand Plaza", "Istanbul", "hotel")
	deluxeID := store.AddRoomType(hotelID, "Deluxe", 1_000_000, 2, 2)
	h := NewBookingHandler(svc)
	e := echo.New()

	b, err := svc.CreateBooking(context.Background(), service.CreateBookingInput{
		HotelID:   hotelID,
		UserID:    7,
		Rooms:     map[uint64]uint32{deluxeID: 1},
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	t.Run("get own booking", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/bookings/1", "")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(b.ID, 10))
		c.Set("user_id", uint64(7))
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("foreign booking is forbidden", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/bookings/1", "")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(b.ID, 10))
		c.Set("user_id", uint64(42))
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/bookings/999", "")
		c.SetParamNames("id")
		c.SetParamValues("999")
		c.Set("user_id", uint64(7))
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/my-bookings", "")
		c.Set("user_id", uint64(7))
		require.NoError(t, h.List(c))
		require.Equal(t, http.StatusOK, rec.Code)
		items := decodeBody(t, rec)["items"].([]any)
		assert.Len(t, items, 1)
	})
}

func TestPublicSearchAndAvailability(t *testing.T) {
	svc, store := testService(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	hotelID := store.AddHotel("Grand Plaza", "Istanbul", "hotel")
	deluxeID := store.AddRoomType(hotelID, "Deluxe", 1_000_000, 2, 1)
	h := NewPublicHandler(svc)
	e := echo.New()

	_, err := svc.CreateBooking(context.Background(), service.CreateBookingInput{
		HotelID:   hotelID,
		UserID:    7,
		Rooms:     map[uint64]uint32{deluxeID: 1},
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	t.Run("search browsing mode", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/hotels/search?destination=istanbul", "")
		require.NoError(t, h.SearchHotels(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody(t, rec)["items"].([]any), 1)
	})

	t.Run("search rejects half a range", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/hotels/search?start_date=2026-01-10", "")
		require.NoError(t, h.SearchHotels(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search with rooms filters sold-out hotel", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet,
			"/v1/hotels/search?destination=istanbul&start_date=2026-01-10&end_date=2026-01-12&rooms=2-0", "")
		require.NoError(t, h.SearchHotels(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeBody(t, rec)["items"])
	})

	t.Run("availability lists full types", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/hotels/1/availability?start_date=2026-01-10&end_date=2026-01-12", "")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(hotelID, 10))
		require.NoError(t, h.CheckAvailability(c))
		require.Equal(t, http.StatusOK, rec.Code)
		ids := decodeBody(t, rec)["booked_room_type_ids"].([]any)
		require.Len(t, ids, 1)
		assert.Equal(t, float64(deluxeID), ids[0])
	})

	t.Run("availability requires dates", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/hotels/1/availability", "")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(hotelID, 10))
		require.NoError(t, h.CheckAvailability(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("availability for unknown hotel is 404", func(t *testing.T) {
		c, rec := jsonCtx(e, http.MethodGet, "/v1/hotels/999/availability?start_date=2026-01-10&end_date=2026-01-12", "")
		c.SetParamNames("id")
		c.SetParamValues("999")
		require.NoError(t, h.CheckAvailability(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestParseRoomRequests(t *testing.T) {
	reqs, err := parseRoomRequests("2-1,2-0")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, uint32(2), reqs[0].Adults)
	assert.Equal(t, uint32(1), reqs[0].Children)
	assert.Equal(t, uint32(0), reqs[1].Children)

	reqs, err = parseRoomRequests("3")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, uint32(3), reqs[0].Adults)

	reqs, err = parseRoomRequests("  ")
	require.NoError(t, err)
	assert.Nil(t, reqs)

	_, err = parseRoomRequests("0-1")
	assert.Error(t, err, "a room with no adults is rejected")

	_, err = parseRoomRequests("two-1")
	assert.Error(t, err)
}
