// services/stream.go
package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const streamKeepalive = 15 * time.Second

// StreamFood handles GET /food/stream: every lifecycle event as an SSE "food" event.
func (s *FoodService) StreamFood(c *fiber.Ctx) error {
	if s.Events == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "live updates are disabled"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	events, cancel := s.Events.Subscribe()
	ctx := c.Context()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		// fasthttp closes Done() on server shutdown; client disconnects surface as flush errors.
		if err := writeEvents(ctx, w, events, streamKeepalive); err != nil {
			log.Printf("[STREAM] subscriber gone: %v", err)
		}
	})
	return nil
}

// writeEvents copies events to w until ctx ends, the channel closes or a flush fails.
func writeEvents(ctx context.Context, w *bufio.Writer, events <-chan FoodEvent, keepalive time.Duration) error {
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	// Initial keepalive (comment event)
	if _, err := w.WriteString(":\n\n"); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: food\ndata: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				return err
			}
		case <-ticker.C:
			w.WriteString(":\n\n")
			if err := w.Flush(); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
