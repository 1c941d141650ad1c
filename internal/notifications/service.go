package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scribe/internal/config"
)

const userAgent = "Scribe/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyPassStarted(ctx context.Context, count int) error
	NotifyPassCompleted(ctx context.Context, published, failed int, duration time.Duration) error
	NotifyPublished(ctx context.Context, title, pageID string) error
	NotifyItemFailed(ctx context.Context, name, kind string, err error) error
	NotifyPassFailed(ctx context.Context, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		published: cfg.Notifications.Published,
		failures:  cfg.Notifications.Failures,
		passes:    cfg.Notifications.Passes,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	published bool
	failures  bool
	passes    bool
}

func (n *ntfyService) NotifyPassStarted(ctx context.Context, count int) error {
	if !n.passes {
		return nil
	}
	data := payload{
		title:   "Scribe - Pass Started",
		message: fmt.Sprintf("Processing %d new recordings", count),
		tags:    []string{"scribe", "pass", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPassCompleted(ctx context.Context, published, failed int, duration time.Duration) error {
	if !n.passes {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failed == 0 {
		title = "Scribe - Pass Complete"
		message = fmt.Sprintf("Pass complete: %d recordings published in %s", published, duration)
	} else {
		title = "Scribe - Pass Complete (with errors)"
		message = fmt.Sprintf("Pass complete: %d published, %d failed in %s", published, failed, duration)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"scribe", "pass", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublished(ctx context.Context, title, pageID string) error {
	if !n.published {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Scribe - Published",
		message: fmt.Sprintf("Summary published: %s", title),
		tags:    []string{"scribe", "publish", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemFailed(ctx context.Context, name, kind string, err error) error {
	if !n.failures {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Failed to process ")
	builder.WriteString(strings.TrimSpace(name))
	if kind = strings.TrimSpace(kind); kind != "" {
		builder.WriteString(" (")
		builder.WriteString(kind)
		builder.WriteString(")")
	}
	if err != nil {
		builder.WriteString(": ")
		builder.WriteString(strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Scribe - Item Failed",
		message:  builder.String(),
		tags:     []string{"scribe", "item", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPassFailed(ctx context.Context, err error) error {
	if !n.failures {
		return nil
	}
	message := "Pass aborted"
	if err != nil {
		message = fmt.Sprintf("Pass aborted: %s", strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Scribe - Pass Failed",
		message:  message,
		tags:     []string{"scribe", "pass", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Scribe - Test",
		message:  "Notification system test",
		tags:     []string{"scribe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
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

type noopService struct{}

func (noopService) NotifyPassStarted(context.Context, int) error                        { return nil }
func (noopService) NotifyPassCompleted(context.Context, int, int, time.Duration) error  { return nil }
func (noopService) NotifyPublished(context.Context, string, string) error               { return nil }
func (noopService) NotifyItemFailed(context.Context, string, string, error) error       { return nil }
func (noopService) NotifyPassFailed(context.Context, error) error                       { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
