package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"starreview/internal/logging"
)

// Progress is the polled side-channel state of a run.
type Progress struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// Progress checkpoints. Callers poll these labels verbatim.
var (
	ProgressInitializing = Progress{Percent: 5, Stage: "Initializing AI analysis..."}
	ProgressTranscribing = Progress{Percent: 15, Stage: "Transcribing audio..."}
	ProgressAudioDone    = Progress{Percent: 85, Stage: "Audio analysis complete"}
	ProgressAnnotating   = Progress{Percent: 90, Stage: "Generating annotations..."}
	ProgressComplete     = Progress{Percent: 100, Stage: "Complete!"}
)

// AnalyzedProgress is the 85% checkpoint, naming the frame count when frames
// were analyzed.
func AnalyzedProgress(frames int) Progress {
	if frames <= 0 {
		return ProgressAudioDone
	}
	return Progress{Percent: 85, Stage: fmt.Sprintf("Analyzed audio + %d video frames", frames)}
}

// ProgressSink receives progress writes keyed by video id. Last write wins.
type ProgressSink interface {
	UpdateProgress(ctx context.Context, videoID int64, progress Progress) error
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(ctx context.Context, videoID int64, progress Progress) error

// UpdateProgress calls f.
func (f ProgressFunc) UpdateProgress(ctx context.Context, videoID int64, progress Progress) error {
	return f(ctx, videoID, progress)
}

// tracker enforces monotonic progress within one run and logs every write.
// Sink failures are logged and otherwise ignored.
type tracker struct {
	sink    ProgressSink
	videoID int64
	logger  *slog.Logger
	last    Progress
	written bool
}

func (t *tracker) set(ctx context.Context, p Progress) {
	if t.written && p.Percent < t.last.Percent {
		t.logger.Debug("progress regression ignored",
			logging.Int("percent", p.Percent),
			logging.Int("current", t.last.Percent),
		)
		return
	}
	t.last = p
	t.written = true
	t.logger.Info("progress",
		logging.String(logging.FieldEventType, "progress"),
		logging.Int("percent", p.Percent),
		logging.String("label", p.Stage),
	)
	if t.sink == nil {
		return
	}
	if err := t.sink.UpdateProgress(ctx, t.videoID, p); err != nil {
		logging.WarnWithContext(t.logger, "progress write failed", "progress_write_failed",
			logging.Error(err),
			logging.Int("percent", p.Percent),
			logging.String(logging.FieldErrorHint, "check the record store is writable"),
			logging.String(logging.FieldImpact, "pollers may see stale progress"),
		)
	}
}
