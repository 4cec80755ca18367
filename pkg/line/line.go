package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"labFinder/pkg/report"
	"labFinder/pkg/scraper"
)

const lineAPIURL = "https://api.line.me/v2/bot/message/push"

// Client handles LINE notifications
type Client struct {
	channelToken string
	userID       string
	noNotify     bool
	calendarURL  string
	apiURL       string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a new LINE client. Messages link to calendarURL.
func NewClient(channelToken, userID, calendarURL string, noNotify bool, logger *zap.Logger) *Client {
	return &Client{
		channelToken: channelToken,
		userID:       userID,
		noNotify:     noNotify,
		calendarURL:  calendarURL,
		apiURL:       lineAPIURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Message represents a LINE message
type Message struct {
	To       string        `json:"to"`
	Messages []LineContent `json:"messages"`
}

// LineContent represents the content of a LINE message
type LineContent struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	AltText  string      `json:"altText,omitempty"`
	Contents interface{} `json:"contents,omitempty"`
}

// NotifyReport sends the lab report for today
func (c *Client) NotifyReport(ctx context.Context, catalog *scraper.Catalog) error {
	if catalog.Len() == 0 {
		return nil
	}

	if c.noNotify {
		c.logger.Info("notification skipped (--no-notify)")
		return nil
	}

	payload := Message{
		To:       c.userID,
		Messages: []LineContent{c.createFlexMessage(catalog)},
	}
	return c.sendMessage(ctx, payload)
}

// TestNotification sends a sample report to verify the credentials
func (c *Client) TestNotification(ctx context.Context) error {
	c.logger.Info("testing notification system with sample data")

	catalog := scraper.NewCatalog()
	catalog.Set("ICCS 005", scraper.Timeline{
		{Name: scraper.FreeSlotName, Start: 0, End: 600},
		{Name: "Sample lab", Start: 600, End: 720},
		{Name: scraper.FreeSlotName, Start: 720, End: scraper.DayLength},
	})

	return c.NotifyReport(ctx, catalog)
}

func (c *Client) sendMessage(ctx context.Context, payload Message) error {
	if c.channelToken == "" || c.userID == "" {
		return fmt.Errorf("LINE configuration is incomplete")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("message failed with status: %d", resp.StatusCode)
	}

	c.logger.Info("notification sent")
	return nil
}

func (c *Client) roomBox(room string, catalog *scraper.Catalog) map[string]interface{} {
	lines := []interface{}{
		map[string]interface{}{
			"type":   "text",
			"text":   "🖥 " + room,
			"size":   "md",
			"weight": "bold",
			"color":  "#1DB446",
		},
	}

	timeline, ok := catalog.Timeline(room)
	if !ok {
		lines = append(lines, map[string]interface{}{
			"type":   "text",
			"text":   "unavailable",
			"size":   "sm",
			"color":  "#AAAAAA",
			"margin": "sm",
		})
	}
	for _, e := range report.Entries(timeline) {
		color := "#666666"
		if e.Label == scraper.FreeSlotName {
			color = "#1DB446"
		}
		lines = append(lines, map[string]interface{}{
			"type":   "text",
			"text":   fmt.Sprintf("%s %s - %s", e.Label, e.Start, e.End),
			"size":   "sm",
			"color":  color,
			"margin": "sm",
		})
	}

	return map[string]interface{}{
		"type":   "box",
		"layout": "vertical",
		"contents": []interface{}{
			map[string]interface{}{
				"type":     "box",
				"layout":   "vertical",
				"contents": lines,
				"spacing":  "sm",
			},
			map[string]interface{}{
				"type":   "separator",
				"margin": "md",
			},
		},
	}
}

func (c *Client) createFlexMessage(catalog *scraper.Catalog) LineContent {
	rooms := catalog.Rooms()
	boxes := make([]interface{}, 0, len(rooms)+1)
	for _, room := range rooms {
		boxes = append(boxes, c.roomBox(room, catalog))
	}

	// Link back to the calendar
	button := map[string]interface{}{
		"type":   "box",
		"layout": "vertical",
		"contents": []interface{}{
			map[string]interface{}{
				"type":  "button",
				"style": "primary",
				"action": map[string]interface{}{
					"type":  "uri",
					"label": "Open calendar",
					"uri":   c.calendarURL,
				},
				"color": "#1DB446",
			},
		},
		"margin": "md",
	}
	boxes = append(boxes, button)

	return LineContent{
		Type:    "flex",
		AltText: fmt.Sprintf("Lab availability for today (%d rooms)", len(rooms)),
		Contents: map[string]interface{}{
			"type": "bubble",
			"header": map[string]interface{}{
				"type":   "box",
				"layout": "vertical",
				"contents": []interface{}{
					map[string]interface{}{
						"type":   "text",
						"text":   "🧪 Lab availability",
						"size":   "xl",
						"weight": "bold",
						"color":  "#1DB446",
					},
				},
			},
			"body": map[string]interface{}{
				"type":     "box",
				"layout":   "vertical",
				"contents": boxes,
				"spacing":  "md",
			},
		},
	}
}
