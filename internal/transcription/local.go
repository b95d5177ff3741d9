package transcription

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"starreview/internal/logging"
	"starreview/internal/services"
	"starreview/internal/services/whisperx"
)

// LocalService is the subset of the WhisperX service the local engine uses.
type LocalService interface {
	Prepare(ctx context.Context) (whisperx.Model, error)
	TranscribeFile(ctx context.Context, source, outputDir, language string) (whisperx.Transcript, error)
}

// Local transcribes on this machine through WhisperX.
type Local struct {
	svc      LocalService
	cache    *ModelCache
	language string
	logger   *slog.Logger
	now      func() time.Time
}

// LocalOption customizes a Local engine.
type LocalOption func(*Local)

// WithLanguage pins the spoken language instead of auto-detecting it.
func WithLanguage(code string) LocalOption {
	return func(l *Local) { l.language = code }
}

// WithLocalClock overrides the clock used for processing durations.
func WithLocalClock(now func() time.Time) LocalOption {
	return func(l *Local) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLocal builds a local engine that owns its model cache.
func NewLocal(svc LocalService, logger *slog.Logger, opts ...LocalOption) *Local {
	l := &Local{
		svc:    svc,
		cache:  NewModelCache(svc.Prepare),
		logger: logging.NewComponentLogger(logger, "transcription"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cache exposes the engine's model cache.
func (l *Local) Cache() *ModelCache {
	return l.cache
}

// Transcribe loads the model on first use and decodes audioPath. WhisperX
// writes its JSON next to the audio so the run's cleanup removes both.
func (l *Local) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	start := l.now()
	model, err := l.cache.Get(ctx)
	if err != nil {
		return Result{}, err
	}

	out, err := l.svc.TranscribeFile(ctx, audioPath, filepath.Dir(audioPath), l.language)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcription", "whisperx", "local decode failed", err)
	}

	segments := make([]Segment, 0, len(out.Segments))
	for _, seg := range out.Segments {
		segments = append(segments, Segment{Text: seg.Text, Start: seg.Start, End: seg.End})
	}
	segments = normalizeSegments(segments)
	result := Result{
		Text:     out.Text,
		Language: NormalizeLanguage(out.Language),
		Segments: segments,
		Method:   MethodLocal,
		Duration: l.now().Sub(start),
	}
	if result.Text == "" {
		result.Text = joinSegments(segments)
	}
	l.logger.Info("local transcription complete",
		logging.String("model", model.Name),
		logging.Int("segments", len(segments)),
		logging.String("language", result.Language),
		logging.Duration("elapsed", result.Duration),
	)
	return result, nil
}
