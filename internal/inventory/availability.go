package inventory

import (
	"sort"
	"time"
)

// Claim is one active booking line against a room type: a quantity of
// units held for a date range.  Only bookings in CONFIRMED or COMPLETED
// status may be presented as claims; filtering is the caller's job.
type Claim struct {
	RoomTypeID uint64
	Quantity   uint32
	Range      DateRange
}

// OccupiedCount returns how many units of the given room type are needed
// to host the claims whose night set intersects the requested range: the
// peak, over the range's nights, of the total quantity claimed for that
// night.  Claims on disjoint nights share units, so two back-to-back
// stays inside a longer queried range occupy one unit, not two.
func OccupiedCount(claims []Claim, roomTypeID uint64, r DateRange) uint32 {
	var peak uint32
	r.EachNight(func(night time.Time) {
		var n uint32
		for _, c := range claims {
			if c.RoomTypeID != roomTypeID {
				continue
			}
			if c.Range.ContainsNight(night) {
				n += c.Quantity
			}
		}
		if n > peak {
			peak = n
		}
	})
	return peak
}

// FreeCount returns the number of units of a room type with no occupied
// night overlapping the requested range: unitCount minus the peak
// per-night claimed quantity, floored at zero.  Oversubscription can only
// appear here if the no-oversell invariant was violated at write time.
func FreeCount(unitCount uint32, claims []Claim, roomTypeID uint64, r DateRange) uint32 {
	occupied := OccupiedCount(claims, roomTypeID, r)
	if occupied >= unitCount {
		return 0
	}
	return unitCount - occupied
}

// UnitCalendar is the derived per-unit view: the set of reserved night
// intervals assigned to one physical room.  It exists only as a read-time
// projection; nothing persists it.
type UnitCalendar struct {
	booked []DateRange
}

// Add records a reserved interval on the unit.  Intervals are kept sorted
// by start date so reads stay deterministic.
func (u *UnitCalendar) Add(r DateRange) {
	u.booked = append(u.booked, r)
	sort.Slice(u.booked, func(i, j int) bool { return u.booked[i].Start.Before(u.booked[j].Start) })
}

// IsFree reports whether no reserved interval on this unit overlaps the
// requested range.
func (u *UnitCalendar) IsFree(r DateRange) bool {
	for _, b := range u.booked {
		if b.Overlaps(r) {
			return false
		}
	}
	return true
}

// Booked returns the reserved intervals in ascending start order.
func (u *UnitCalendar) Booked() []DateRange { return u.booked }

// ProjectUnits spreads the overlapping claims of one room type across its
// units first-fit, yielding a calendar per unit.  Bookings never name a
// specific unit, so any projection satisfying the quantities is valid;
// this one is used for displaying per-unit occupancy.
func ProjectUnits(unitCount uint32, claims []Claim, roomTypeID uint64, r DateRange) []UnitCalendar {
	units := make([]UnitCalendar, unitCount)
	for _, c := range claims {
		if c.RoomTypeID != roomTypeID || !c.Range.Overlaps(r) {
			continue
		}
		remaining := c.Quantity
		for i := range units {
			if remaining == 0 {
				break
			}
			if units[i].IsFree(c.Range) {
				units[i].Add(c.Range)
				remaining--
			}
		}
	}
	return units
}

// RoomRequest is one requested room in a search: how many guests it must
// accommodate.
type RoomRequest struct {
	Adults   uint32 `json:"adults"`
	Children uint32 `json:"children"`
}

// Guests returns the total capacity the request needs.
func (r RoomRequest) Guests() uint32 { return r.Adults + r.Children }

// TypeBudget is a room type candidate during search assignment: its
// capacity and price together with the free-unit budget remaining for the
// requested range.
type TypeBudget struct {
	RoomTypeID uint64
	MaxPeople  uint32
	PriceCents uint64
	Free       uint32
}

// AssignRequests decides whether every room request can be placed against
// the given budgets.  Requests are handled in descending guest count and
// each is assigned to the cheapest qualifying type with budget left
// (cheapest-fit).  This is a feasibility heuristic, not optimal
// bin-packing: a true result guarantees some assignment exists, not a
// unique or cheapest one.  Budgets are decremented in place.
func AssignRequests(requests []RoomRequest, budgets []TypeBudget) bool {
	ordered := make([]RoomRequest, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Guests() > ordered[j].Guests() })

	sort.SliceStable(budgets, func(i, j int) bool { return budgets[i].PriceCents < budgets[j].PriceCents })

	for _, req := range ordered {
		placed := false
		for i := range budgets {
			if budgets[i].Free == 0 || budgets[i].MaxPeople < req.Guests() {
				continue
			}
			budgets[i].Free--
			placed = true
			break
		}
		if !placed {
			return false
		}
	}
	return true
}
