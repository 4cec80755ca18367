package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Catalog maps each lab room to its timeline for the current day
type Catalog struct {
	rooms       []string
	timelines   map[string]Timeline
	unavailable map[string]error
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		timelines:   make(map[string]Timeline),
		unavailable: make(map[string]error),
	}
}

// Set records the timeline of a room
func (c *Catalog) Set(room string, timeline Timeline) {
	c.track(room)
	delete(c.unavailable, room)
	c.timelines[room] = timeline
}

// MarkUnavailable records that the room could not be reconciled
func (c *Catalog) MarkUnavailable(room string, err error) {
	c.track(room)
	delete(c.timelines, room)
	c.unavailable[room] = err
}

func (c *Catalog) track(room string) {
	if _, ok := c.timelines[room]; ok {
		return
	}
	if _, ok := c.unavailable[room]; ok {
		return
	}
	c.rooms = append(c.rooms, room)
}

// Rooms returns the room names in discovery order
func (c *Catalog) Rooms() []string {
	return append([]string(nil), c.rooms...)
}

// Timeline returns the timeline of a room and whether it is available
func (c *Catalog) Timeline(room string) (Timeline, bool) {
	t, ok := c.timelines[room]
	return t, ok
}

// Failure returns the error that made the room unavailable, if any
func (c *Catalog) Failure(room string) error {
	return c.unavailable[room]
}

// Len returns the number of rooms in the catalog
func (c *Catalog) Len() int {
	return len(c.rooms)
}

// BuildCatalog fetches and reconciles every lab room one after another.
// A failure in one room marks it unavailable without stopping the others.
func BuildCatalog(ctx context.Context, src Source, policy Policy, logger *zap.Logger) (*Catalog, error) {
	labs, err := src.Labs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab rooms: %w", err)
	}
	logger.Info("lab rooms found", zap.Int("count", len(labs)), zap.Strings("rooms", LabNames(labs)))

	catalog := NewCatalog()
	for _, lab := range labs {
		if err := ctx.Err(); err != nil {
			return catalog, err
		}

		timeline, err := roomTimeline(ctx, src, policy, lab)
		if err != nil {
			logger.Warn("lab room unavailable", zap.String("room", lab.Name), zap.Error(err))
			catalog.MarkUnavailable(lab.Name, err)
			continue
		}

		logger.Debug("lab room reconciled",
			zap.String("room", lab.Name),
			zap.Int("entries", len(timeline)),
			zap.Int("free_minutes", timeline.FreeMinutes()))
		catalog.Set(lab.Name, timeline)
	}

	return catalog, nil
}

func roomTimeline(ctx context.Context, src Source, policy Policy, lab Lab) (Timeline, error) {
	raw, err := src.Bookings(ctx, lab)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return policy.Timeline(raw)
}
