package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"starreview/internal/config"
)

const userAgent = "starreview/0.1.0"

// Service defines the notification surface exposed to the runner and CLI.
type Service interface {
	NotifyAnalysisCompleted(ctx context.Context, title string, annotations int, elapsed time.Duration) error
	NotifyAnalysisFailed(ctx context.Context, title, stage string, err error) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed int, elapsed time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anywhere.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyAnalysisCompleted(ctx context.Context, title string, annotations int, elapsed time.Duration) error {
	title = displayTitle(title)
	noun := "annotations"
	if annotations == 1 {
		noun = "annotation"
	}
	return n.send(ctx, payload{
		title:   "starreview - Analysis Complete",
		message: fmt.Sprintf("Analyzed %s: %d %s in %s", title, annotations, noun, formatElapsed(elapsed)),
		tags:    []string{"starreview", "analysis", "completed"},
	})
}

func (n *ntfyService) NotifyAnalysisFailed(ctx context.Context, title, stage string, err error) error {
	var builder strings.Builder
	builder.WriteString("Analysis failed for ")
	builder.WriteString(displayTitle(title))
	if stage = strings.TrimSpace(stage); stage != "" {
		builder.WriteString(" during ")
		builder.WriteString(stage)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "starreview - Analysis Failed",
		message:  builder.String(),
		tags:     []string{"starreview", "analysis", "error"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, succeeded, failed int, elapsed time.Duration) error {
	title := "starreview - Batch Complete"
	message := fmt.Sprintf("Batch complete: %d videos analyzed in %s", succeeded, formatElapsed(elapsed))
	if failed > 0 {
		title = "starreview - Batch Complete (with errors)"
		message = fmt.Sprintf("Batch complete: %d succeeded, %d failed in %s", succeeded, failed, formatElapsed(elapsed))
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"starreview", "batch", "completed"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "starreview - Test",
		message:  "Notification system test",
		tags:     []string{"starreview", "test"},
		priority: "low",
	})
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

func displayTitle(title string) string {
	if title = strings.TrimSpace(title); title == "" {
		return "untitled video"
	}
	return title
}

func formatElapsed(d time.Duration) string {
	d = max(d.Round(time.Second), 0)
	return d.String()
}

type noopService struct{}

func (noopService) NotifyAnalysisCompleted(context.Context, string, int, time.Duration) error {
	return nil
}
func (noopService) NotifyAnalysisFailed(context.Context, string, string, error) error { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) TestNotification(context.Context) error { return nil }
