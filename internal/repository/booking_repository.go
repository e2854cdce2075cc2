package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BookingRepo provides CRUD operations for bookings and their room lines.
// The bookings table is the single source of truth for inventory: per-unit
// occupancy is derived at read time from bookings in CONFIRMED or
// COMPLETED status.  All date columns are DATE and all timestamps UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose their
// own transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const dateFormat = "2006-01-02"

// activeStatuses filters bookings that count against inventory.
const activeStatuses = `('CONFIRMED','COMPLETED')`

// Reserve atomically checks availability and inserts the booking.  The
// room_types rows of every requested type are locked FOR UPDATE first, so
// concurrent reservations for the same types serialize on those rows and
// the availability check always observes committed bookings: under N
// concurrent calls for the last free unit exactly one insert succeeds and
// the rest fail ErrRoomUnavailable.
//
// On success the booking's ID and timestamps are populated.  The caller
// must supply a booking with at least one room line and a validated date
// range.
func (r *BookingRepo) Reserve(ctx context.Context, b *model.Booking) error {
	if len(b.Rooms) == 0 {
		return ErrRoomTypeNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	units, err := r.lockRoomTypesTx(ctx, tx, b.HotelID, b.Rooms)
	if err != nil {
		return err
	}
	occupied, err := r.overlapQuantitiesTx(ctx, tx, roomTypeIDs(b.Rooms), b.StartDate, b.EndDate)
	if err != nil {
		return err
	}
	for _, line := range b.Rooms {
		free := int64(units[line.RoomTypeID]) - int64(occupied[line.RoomTypeID])
		if free < int64(line.Quantity) {
			return ErrRoomUnavailable
		}
	}

	if err := r.insertTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// lockRoomTypesTx locks the room_types rows of every requested type and
// returns their unit counts.  It fails ErrRoomTypeNotFound when a type is
// missing or belongs to a different hotel.  The FOR UPDATE lock is what
// closes the check-then-insert race: the lock is held until commit.
func (r *BookingRepo) lockRoomTypesTx(ctx context.Context, tx *sql.Tx, hotelID uint64, lines []model.BookingRoom) (map[uint64]uint64, error) {
	ids := roomTypeIDs(lines)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT rt.id, rt.hotel_id,
                     (SELECT COUNT(*) FROM room_units ru WHERE ru.room_type_id = rt.id)
              FROM room_types rt
              WHERE rt.id IN (` + placeholders + `)
              FOR UPDATE`
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make(map[uint64]uint64, len(ids))
	hotels := make(map[uint64]uint64, len(ids))
	for rows.Next() {
		var id, hid, count uint64
		if err := rows.Scan(&id, &hid, &count); err != nil {
			return nil, err
		}
		units[id] = count
		hotels[id] = hid
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if hid, ok := hotels[id]; !ok || hid != hotelID {
			return nil, ErrRoomTypeNotFound
		}
	}
	return units, nil
}

// overlapQuantitiesTx computes, per room type, how many units the active
// bookings overlapping [start, end) actually need: the peak per-night
// claimed quantity over the range.  Overlap uses the half-open test
// s1 < e2 AND s2 < e1, so a stay ending on a day never blocks one
// starting that day, and back-to-back stays inside the range share a
// unit.  The claim rows are fetched inside the transaction (after the
// room-type locks) and the peak is derived in Go by the inventory
// package so the SQL and in-memory paths count identically.
func (r *BookingRepo) overlapQuantitiesTx(ctx context.Context, tx *sql.Tx, ids []uint64, start, end time.Time) (map[uint64]uint64, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT br.room_type_id, br.quantity, b.start_date, b.end_date
              FROM booking_rooms br
              JOIN bookings b ON b.id = br.booking_id
              WHERE br.room_type_id IN (` + placeholders + `)
                AND b.status IN ` + activeStatuses + `
                AND b.start_date < ? AND ? < b.end_date`
	args := make([]any, 0, len(ids)+2)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, end.Format(dateFormat), start.Format(dateFormat))
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]inventory.Claim, 0)
	for rows.Next() {
		var c inventory.Claim
		var s, e time.Time
		if err := rows.Scan(&c.RoomTypeID, &c.Quantity, &s, &e); err != nil {
			return nil, err
		}
		c.Range = inventory.DateRange{Start: inventory.Day(s), End: inventory.Day(e)}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rng := inventory.DateRange{Start: inventory.Day(start), End: inventory.Day(end)}
	occupied := make(map[uint64]uint64, len(ids))
	for _, id := range ids {
		occupied[id] = uint64(inventory.OccupiedCount(claims, id, rng))
	}
	return occupied, nil
}

// insertTx writes the booking row and its room lines inside the
// transaction and queries back the generated ID and timestamps.
func (r *BookingRepo) insertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (reference, hotel_id, user_id, start_date, end_date, status, payment_status,
                total_amount_cents, cardholder_name, payment_date)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var payDate any
	if b.PaymentDate != nil {
		payDate = b.PaymentDate.UTC().Format("2006-01-02 15:04:05")
	}
	result, err := tx.ExecContext(ctx, q,
		b.Reference, b.HotelID, b.UserID,
		b.StartDate.Format(dateFormat), b.EndDate.Format(dateFormat),
		b.Status, b.PaymentStatus, b.TotalAmountCents, b.CardholderName, payDate,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	query := `INSERT INTO booking_rooms (booking_id, room_type_id, quantity, price_cents) VALUES `
	args := make([]any, 0, len(b.Rooms)*4)
	for i := range b.Rooms {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		b.Rooms[i].BookingID = b.ID
		args = append(args, b.ID, b.Rooms[i].RoomTypeID, b.Rooms[i].Quantity, b.Rooms[i].PriceCents)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

const bookingColumns = `id, reference, hotel_id, user_id, start_date, end_date, status,
                        payment_status, total_amount_cents, cardholder_name,
                        payment_date, cancel_date, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var payDate, cancelDate sql.NullTime
	err := row.Scan(
		&b.ID, &b.Reference, &b.HotelID, &b.UserID, &b.StartDate, &b.EndDate, &b.Status,
		&b.PaymentStatus, &b.TotalAmountCents, &b.CardholderName,
		&payDate, &cancelDate, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if payDate.Valid {
		t := payDate.Time.UTC()
		b.PaymentDate = &t
	}
	if cancelDate.Valid {
		t := cancelDate.Time.UTC()
		b.CancelDate = &t
	}
	b.StartDate = inventory.Day(b.StartDate)
	b.EndDate = inventory.Day(b.EndDate)
	return &b, nil
}

// GetByID returns a single booking with its room lines, or
// ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadRooms(ctx, []*model.Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// ListByUser returns all bookings of a user, newest first, with room
// lines populated in a single follow-up query.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*model.Booking, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := r.loadRooms(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

// loadRooms populates the room lines of the given bookings with one
// IN (...) query.
func (r *BookingRepo) loadRooms(ctx context.Context, bookings []*model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Booking, len(bookings))
	ids := make([]any, 0, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	for _, b := range bookings {
		b.Rooms = []model.BookingRoom{}
		index[b.ID] = b
		ids = append(ids, b.ID)
		placeholders = append(placeholders, "?")
	}
	query := `SELECT id, booking_id, room_type_id, quantity, price_cents
              FROM booking_rooms
              WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY booking_id, room_type_id`
	rows, err := r.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var line model.BookingRoom
		if err := rows.Scan(&line.ID, &line.BookingID, &line.RoomTypeID, &line.Quantity, &line.PriceCents); err != nil {
			return err
		}
		if b, ok := index[line.BookingID]; ok {
			b.Rooms = append(b.Rooms, line)
		}
	}
	return rows.Err()
}

// OverlapClaims returns the room-type claims of every active booking at a
// hotel whose stay overlaps the range.  The result feeds the pure
// free-count computation in the inventory package.
func (r *BookingRepo) OverlapClaims(ctx context.Context, hotelID uint64, rng inventory.DateRange) ([]inventory.Claim, error) {
	const q = `SELECT br.room_type_id, br.quantity, b.start_date, b.end_date
               FROM booking_rooms br
               JOIN bookings b ON b.id = br.booking_id
               WHERE b.hotel_id = ?
                 AND b.status IN ` + activeStatuses + `
                 AND b.start_date < ? AND ? < b.end_date`
	rows, err := r.db.QueryContext(ctx, q, hotelID, rng.End.Format(dateFormat), rng.Start.Format(dateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]inventory.Claim, 0)
	for rows.Next() {
		var c inventory.Claim
		var start, end time.Time
		if err := rows.Scan(&c.RoomTypeID, &c.Quantity, &start, &end); err != nil {
			return nil, err
		}
		c.Range = inventory.DateRange{Start: inventory.Day(start), End: inventory.Day(end)}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// Cancel marks a booking cancelled and refunded in one guarded UPDATE so
// status, payment_status and cancel_date can never be observed in an
// inconsistent intermediate state.  A booking that is already cancelled
// fails ErrAlreadyCancelled; the refund is never applied twice.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64, now time.Time) (*model.Booking, error) {
	const q = `UPDATE bookings
               SET status = 'CANCELLED', payment_status = 'REFUNDED', cancel_date = ?
               WHERE id = ? AND status <> 'CANCELLED'`
	result, err := r.db.ExecContext(ctx, q, now.UTC().Format("2006-01-02 15:04:05"), id)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Distinguish a missing booking from a repeated cancel.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyCancelled
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus moves a booking to newStatus provided its current status
// is one of allowedFrom.  The guard runs inside the UPDATE itself, so
// concurrent transitions cannot interleave.  A zero-row update against an
// existing booking means the transition was not permitted.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, newStatus string, allowedFrom ...string) (*model.Booking, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(allowedFrom)), ",")
	query := `UPDATE bookings SET status = ? WHERE id = ? AND status IN (` + placeholders + `)`
	args := []any{newStatus, id}
	for _, s := range allowedFrom {
		args = append(args, s)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

// CompletePast transitions confirmed bookings whose checkout date has
// passed to COMPLETED and returns how many rows changed.  Running it
// again is a no-op for bookings already completed.
func (r *BookingRepo) CompletePast(ctx context.Context, today time.Time) (int64, error) {
	const q = `UPDATE bookings SET status = 'COMPLETED'
               WHERE status = 'CONFIRMED' AND end_date <= ?`
	result, err := r.db.ExecContext(ctx, q, inventory.Day(today).Format(dateFormat))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Delete hard-deletes a booking and its room lines (cascade via FK).
// This is an administrative override that bypasses refund bookkeeping.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func roomTypeIDs(lines []model.BookingRoom) []uint64 {
	ids := make([]uint64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.RoomTypeID)
	}
	return ids
}
