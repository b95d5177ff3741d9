package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"starreview/internal/config"
	"starreview/internal/notifications"
)

type captured struct {
	title    string
	body     string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		got.body = string(body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte("topic closed"))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func serviceFor(url string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if notifications.Enabled(svc) {
		t.Fatal("expected noop service without a topic")
	}
	if err := svc.NotifyAnalysisFailed(context.Background(), "x", "", errors.New("boom")); err != nil {
		t.Fatalf("noop returned error: %v", err)
	}
	if notifications.Enabled(notifications.NewService(nil)) {
		t.Fatal("expected noop service for nil config")
	}
}

func TestNotifyAnalysisCompleted(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	svc := serviceFor(srv.URL)
	if !notifications.Enabled(svc) {
		t.Fatal("expected ntfy service")
	}

	if err := svc.NotifyAnalysisCompleted(context.Background(), "Session 4", 1, 90*time.Second+400*time.Millisecond); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.title != "starreview - Analysis Complete" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.body != "Analyzed Session 4: 1 annotation in 1m30s" {
		t.Fatalf("unexpected body %q", got.body)
	}
	if got.tags != "starreview,analysis,completed" || got.priority != "" {
		t.Fatalf("unexpected headers tags=%q priority=%q", got.tags, got.priority)
	}
}

func TestNotifyAnalysisFailedIncludesStage(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	svc := serviceFor(srv.URL)

	if err := svc.NotifyAnalysisFailed(context.Background(), " ", "transcribing", errors.New("whisper timed out ")); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.body != "Analysis failed for untitled video during transcribing: whisper timed out" {
		t.Fatalf("unexpected body %q", got.body)
	}
	if got.priority != "high" {
		t.Fatalf("expected high priority, got %q", got.priority)
	}
}

func TestNotifyBatchCompletedWithFailures(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	svc := serviceFor(srv.URL)

	if err := svc.NotifyBatchCompleted(context.Background(), 2, 1, -time.Second); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(got.title, "with errors") {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.body != "Batch complete: 2 succeeded, 1 failed in 0s" {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusForbidden)
	err := serviceFor(srv.URL).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "topic closed") {
		t.Fatalf("expected 403 error with body, got %v", err)
	}
}
