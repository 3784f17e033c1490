package service

import (
	"strings"
	"time"
)

// SlotInterval is the spacing of the pickup slots offered to customers.
const SlotInterval = 30 * time.Minute

// localMinuteLayout is the form sent by a datetime-local input.
const localMinuteLayout = "2006-01-02T15:04"

// PickupPolicy holds the canteen's pickup rules.
// Open and Close are offsets from local midnight; both bounds are inclusive.
type PickupPolicy struct {
	Location *time.Location
	MinLead  time.Duration
	Open     time.Duration
	Close    time.Duration
}

// DefaultPickupPolicy is 08:00-17:00 Asia/Kolkata with a 30 minute lead time.
func DefaultPickupPolicy() PickupPolicy {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*60*60+30*60)
	}
	return PickupPolicy{
		Location: loc,
		MinLead:  30 * time.Minute,
		Open:     8 * time.Hour,
		Close:    17 * time.Hour,
	}
}

// ParsePickupTime accepts RFC3339 or a zone-less "YYYY-MM-DDTHH:MM",
// which is read in the canteen's time zone.
func ParsePickupTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidPickupTime
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(localMinuteLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidPickupTime
}

// Validate checks pickup against now: at least MinLead ahead, on the same
// canteen-local date, and within opening hours.
func (p PickupPolicy) Validate(pickup, now time.Time) error {
	if pickup.Before(now.Add(p.MinLead)) {
		return ErrPickupTooSoon
	}

	local := pickup.In(p.Location)
	today := now.In(p.Location)
	if !sameDate(local, today) {
		return ErrPickupNotToday
	}

	h, m, s := local.Clock()
	offset := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	if offset < p.Open || offset > p.Close {
		return ErrPickupOutsideHours
	}
	return nil
}

// Slots lists today's selectable pickup times, every SlotInterval from
// opening, that would pass Validate at now.
func (p PickupPolicy) Slots(now time.Time) []time.Time {
	local := now.In(p.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
	earliest := now.Add(p.MinLead)

	slots := []time.Time{}
	for off := p.Open; off <= p.Close; off += SlotInterval {
		slot := midnight.Add(off)
		if slot.Before(earliest) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
