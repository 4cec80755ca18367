package scraper

import (
	"fmt"

	"labFinder/pkg/clock"
)

// EndOverride decides the end of a booking without looking at its displayed end time
type EndOverride func(b RawBooking, start int) int

// UntilEndOfDay keeps the booking running until midnight
func UntilEndOfDay(RawBooking, int) int {
	return DayLength
}

// DefaultOverrides holds the bookings whose displayed end time is known to be wrong
var DefaultOverrides = map[string]EndOverride{
	"ACM contest": UntilEndOfDay,
}

// Policy holds the adjustments applied to scraped bookings before reconciliation
type Policy struct {
	// EarlyReleaseMinutes is subtracted from every displayed end time
	EarlyReleaseMinutes int
	// MinimumGapMinutes is the longest gap that is absorbed instead of reported as free
	MinimumGapMinutes int
	// Overrides is keyed by exact booking name
	Overrides map[string]EndOverride
}

// DefaultPolicy returns the policy used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{
		MinimumGapMinutes: 10,
		Overrides:         DefaultOverrides,
	}
}

// ResolveEnd returns the end minute of a booking that starts at start.
// Overridden bookings skip parsing and are not released early.
// An end of 12:00am after a later start means the booking runs until midnight.
func (p Policy) ResolveEnd(b RawBooking, start int) (int, error) {
	if override, ok := p.Overrides[b.Name]; ok {
		return override(b, start), nil
	}

	end, err := clock.ParseClockToMinutes(b.EndText)
	if err != nil {
		return 0, fmt.Errorf("end of %q: %w", b.Name, err)
	}
	if end == 0 && start > 0 {
		end = DayLength
	}
	return end - p.EarlyReleaseMinutes, nil
}

// Prepare converts one room's scraped bookings into bookings ready for Reconcile
func (p Policy) Prepare(raw []RawBooking) ([]Booking, error) {
	bookings := make([]Booking, 0, len(raw))
	for _, r := range raw {
		start, err := clock.ParseHourMinute(r.StartText)
		if err != nil {
			return nil, fmt.Errorf("start of %q: %w", r.Name, err)
		}

		end, err := p.ResolveEnd(r, start)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, Booking{Name: r.Name, Start: start, End: end})
	}
	return bookings, nil
}

// Timeline prepares and reconciles one room's bookings
func (p Policy) Timeline(raw []RawBooking) (Timeline, error) {
	bookings, err := p.Prepare(raw)
	if err != nil {
		return nil, err
	}
	return Reconcile(bookings, p.MinimumGapMinutes)
}
