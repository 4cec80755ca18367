package report

import (
	"errors"
	"reflect"
	"testing"

	"labFinder/pkg/scraper"
)

func TestEntries(t *testing.T) {
	timeline := scraper.Timeline{
		{Name: scraper.FreeSlotName, Start: 0, End: 600},
		{Name: "CPSC 110 L1A", Start: 600, End: 660},
		{Name: scraper.FreeSlotName, Start: 660, End: 1440},
	}

	want := []Entry{
		{Label: "Open", Start: "00:00", End: "10:00"},
		{Label: "Booked", Start: "10:00", End: "11:00"},
		{Label: "Open", Start: "11:00", End: "24:00"},
	}
	if got := Entries(timeline); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestRender(t *testing.T) {
	catalog := scraper.NewCatalog()
	catalog.Set("ICCS 005", scraper.Timeline{
		{Name: scraper.FreeSlotName, Start: 0, End: 870},
		{Name: "CPSC 213", Start: 870, End: 1440},
	})
	catalog.MarkUnavailable("DMP 110", errors.New("timeout"))

	want := "ICCS 005:\n" +
		"      Open 00:00 to 14:30\n" +
		"    Booked 14:30 to 24:00\n" +
		"DMP 110: unavailable\n"

	if got := String(catalog); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}
