package report

import (
	"fmt"
	"io"
	"strings"

	"labFinder/pkg/clock"
	"labFinder/pkg/scraper"
)

// Entry is one rendered row of a room's timeline
type Entry struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Entries converts a timeline into report rows. Real bookings are shown as "Booked".
func Entries(timeline scraper.Timeline) []Entry {
	entries := make([]Entry, len(timeline))
	for i, b := range timeline {
		label := scraper.BookedSlotName
		if b.Free() {
			label = scraper.FreeSlotName
		}
		entries[i] = Entry{
			Label: label,
			Start: clock.MinutesToClock(b.Start),
			End:   clock.MinutesToClock(b.End),
		}
	}
	return entries
}

// Line formats a single entry
func (e Entry) Line() string {
	return fmt.Sprintf("%10s %5s to %5s", e.Label, e.Start, e.End)
}

// Render writes the catalog as text, one block per room in discovery order
func Render(w io.Writer, catalog *scraper.Catalog) error {
	for _, room := range catalog.Rooms() {
		timeline, ok := catalog.Timeline(room)
		if !ok {
			if _, err := fmt.Fprintf(w, "%s: unavailable\n", room); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "%s:\n", room); err != nil {
			return err
		}
		for _, e := range Entries(timeline) {
			if _, err := fmt.Fprintln(w, e.Line()); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders the catalog into a string
func String(catalog *scraper.Catalog) string {
	var sb strings.Builder
	_ = Render(&sb, catalog)
	return sb.String()
}
