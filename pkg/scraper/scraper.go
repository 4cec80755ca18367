package scraper

import (
	"context"
	"fmt"
)

const (
	// FreeSlotName labels the synthesized intervals nobody has booked
	FreeSlotName = "Open"
	// BookedSlotName is the label reported for every real booking
	BookedSlotName = "Booked"
)

// Lab is a lab room discovered on the availability page
type Lab struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RawBooking is a booking as scraped from the calendar, before any time parsing
type RawBooking struct {
	Name      string `json:"name"`
	StartText string `json:"start"`
	EndText   string `json:"end"`
	URL       string `json:"url"`
}

// Booking is a named interval in minutes since midnight
type Booking struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Free reports whether the booking is a synthesized free slot
func (b Booking) Free() bool {
	return b.Name == FreeSlotName
}

// Duration returns the length of the booking in minutes
func (b Booking) Duration() int {
	return b.End - b.Start
}

func (b Booking) String() string {
	return fmt.Sprintf("%s [%d,%d]", b.Name, b.Start, b.End)
}

// Timeline is the ordered sequence of booked and free intervals of one room
type Timeline []Booking

// FreeMinutes sums the length of the free slots in the timeline
func (t Timeline) FreeMinutes() int {
	total := 0
	for _, b := range t {
		if b.Free() {
			total += b.Duration()
		}
	}
	return total
}

// Source yields the lab rooms and their bookings for the current day
type Source interface {
	Labs(ctx context.Context) ([]Lab, error)
	Bookings(ctx context.Context, lab Lab) ([]RawBooking, error)
}

// LabNames extracts names from labs
func LabNames(labs []Lab) []string {
	names := make([]string, len(labs))
	for i, lab := range labs {
		names[i] = lab.Name
	}
	return names
}
