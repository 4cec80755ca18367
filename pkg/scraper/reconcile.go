package scraper

import (
	"fmt"

	"labFinder/pkg/clock"
)

// DayLength is the span every timeline covers, in minutes
const DayLength = clock.MinutesPerDay

// ContractViolation reports bookings that break the reconciler's preconditions
type ContractViolation struct {
	Index   int
	Booking Booking
	Reason  string
}

func (e *ContractViolation) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("contract violation: %s", e.Reason)
	}
	return fmt.Sprintf("contract violation at booking %d (%s): %s", e.Index, e.Booking, e.Reason)
}

// Reconcile fills the gaps between bookings with free slots so the timeline spans the whole day.
//
// Bookings must be sorted by start, non-overlapping and inside [0, DayLength]. Gaps of at most
// minimumGap minutes are absorbed rather than reported, including the gap before the first
// booking and the one after the last, so the result may start after 0 or end before DayLength.
// With the default gap of 10, a last booking ending at 23:55 gets no final Open entry and the
// timeline stops at 23:55. The trailing slot is only forced when nothing else was emitted.
func Reconcile(bookings []Booking, minimumGap int) (Timeline, error) {
	if err := validate(bookings, minimumGap); err != nil {
		return nil, err
	}

	timeline := make(Timeline, 0, 2*len(bookings)+1)
	cursor := 0

	for _, b := range bookings {
		if b.Start > cursor && b.Start-cursor > minimumGap {
			timeline = append(timeline, Booking{Name: FreeSlotName, Start: cursor, End: b.Start})
		}
		timeline = append(timeline, b)
		cursor = b.End
	}

	if rest := DayLength - cursor; rest > 0 && (rest > minimumGap || len(timeline) == 0) {
		timeline = append(timeline, Booking{Name: FreeSlotName, Start: cursor, End: DayLength})
	}

	return timeline, nil
}

func validate(bookings []Booking, minimumGap int) error {
	if minimumGap < 0 {
		return &ContractViolation{Index: -1, Reason: fmt.Sprintf("negative minimum gap %d", minimumGap)}
	}

	prevEnd := 0
	for i, b := range bookings {
		switch {
		case b.Start < 0 || b.End > DayLength:
			return &ContractViolation{Index: i, Booking: b, Reason: "outside of the day"}
		case b.Start >= b.End:
			return &ContractViolation{Index: i, Booking: b, Reason: "start is not before end"}
		case b.Start < prevEnd:
			return &ContractViolation{Index: i, Booking: b, Reason: "overlaps or precedes the previous booking"}
		}
		prevEnd = b.End
	}
	return nil
}
