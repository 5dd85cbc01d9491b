package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sortmedown/internal/config"
)

const userAgent = "SortMeDown/Engine/5.1"

// Event identifies the kind of notification.
type Event string

const (
	EventPassCompleted     Event = "pass_completed"
	EventUnidentifiedMedia Event = "unidentified_media"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries event fields.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		unidentified: cfg.Notifications.Unidentified,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	unidentified bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventPassCompleted:
		processed := intValue(payload, "processed")
		unknown := intValue(payload, "unknown")
		errs := intValue(payload, "errors")
		if processed == 0 {
			return message{}, false
		}
		body := fmt.Sprintf("Sorted %d items (%d unknown, %d errors)", processed, unknown, errs)
		if d, ok := payload["duration"].(time.Duration); ok && d > 0 {
			body += " in " + d.Round(time.Second).String()
		}
		title := "SortMeDown - Pass Complete"
		if errs > 0 {
			title = "SortMeDown - Pass Complete (with errors)"
		}
		return message{title: title, body: body, tags: []string{"sortmedown", "pass", "completed"}}, true
	case EventUnidentifiedMedia:
		if !n.unidentified {
			return message{}, false
		}
		return message{
			title: "SortMeDown - Needs Review",
			body:  fmt.Sprintf("Could not identify: %s\nMoved to %s", stringValue(payload, "name"), stringValue(payload, "destination")),
			tags:  []string{"sortmedown", "unidentified", "review"},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("Error")
		if label := stringValue(payload, "context"); label != "" {
			b.WriteString(" during ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if text := stringValue(payload, "error"); text != "" {
			b.WriteString(text)
		} else {
			b.WriteString("unknown")
		}
		return message{title: "SortMeDown - Error", body: b.String(), tags: []string{"sortmedown", "error", "alert"}, priority: "high"}, true
	case EventTest:
		return message{title: "SortMeDown - Test", body: "Notification system test", tags: []string{"sortmedown", "test"}, priority: "low"}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func stringValue(payload Payload, key string) string {
	if v, ok := payload[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return ""
}

func intValue(payload Payload, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
