package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"starreview/internal/config"
	"starreview/internal/logging"
	"starreview/internal/media/ffprobe"
	"starreview/internal/media/frames"
	"starreview/internal/metrics"
	"starreview/internal/notifications"
	"starreview/internal/pipeline"
	"starreview/internal/practice"
	"starreview/internal/services"
	"starreview/internal/store"
	"starreview/internal/transcription"
)

// ProbeFunc inspects a media container.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Options selects how one video is analyzed.
type Options struct {
	// Mode overrides the configured default mode when set.
	Mode transcription.Mode
	// Reclaim takes over a video left in processing by a runner that died.
	Reclaim bool
}

// Runner ties the record store to the analysis pipeline.
type Runner struct {
	cfg         *config.Config
	store       *store.Store
	deps        pipeline.Dependencies
	frameParams frames.Params
	logger      *slog.Logger
	probe       ProbeFunc
	notifier    notifications.Service
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithProbe replaces the ffprobe call used to fill in missing durations.
func WithProbe(probe ProbeFunc) RunnerOption {
	return func(r *Runner) {
		if probe != nil {
			r.probe = probe
		}
	}
}

// WithNotifier replaces the ntfy service built from config.
func WithNotifier(svc notifications.Service) RunnerOption {
	return func(r *Runner) {
		if svc != nil {
			r.notifier = svc
		}
	}
}

// WithFrameParams overrides the sampler parameters derived from config.
func WithFrameParams(params frames.Params) RunnerOption {
	return func(r *Runner) { r.frameParams = params }
}

// NewRunner constructs a runner. deps carries the analysis services; its
// Progress and Committer fields are set per run.
func NewRunner(cfg *config.Config, st *store.Store, deps pipeline.Dependencies, logger *slog.Logger, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("runner requires config and store")
	}
	params, err := FrameParams(cfg)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:         cfg,
		store:       st,
		deps:        deps,
		frameParams: params,
		logger:      logging.NewComponentLogger(logger, "workflow-runner"),
		probe:       ffprobe.Inspect,
		notifier:    notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run analyzes one stored video end to end. The returned error wraps
// store.ErrAnalysisInProgress when another runner holds the video.
func (r *Runner) Run(ctx context.Context, videoID int64, opts Options) (pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	mode, err := r.resolveMode(opts.Mode)
	if err != nil {
		return pipeline.Result{}, err
	}
	runID := uuid.NewString()
	ctx = services.WithRunID(services.WithVideoID(ctx, videoID), runID)
	logger := logging.WithContext(ctx, r.logger)

	lock := flock.New(r.lockPath(videoID))
	locked, err := lock.TryLock()
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		metrics.RunsTotal.WithLabelValues(metrics.OutcomeBusy).Inc()
		return pipeline.Result{}, fmt.Errorf("video %d: %w (held by another runner)", videoID, store.ErrAnalysisInProgress)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("run lock release failed", logging.Error(err))
		}
	}()

	video, err := r.store.BeginAnalysis(ctx, videoID, opts.Reclaim)
	if err != nil {
		if errors.Is(err, store.ErrAnalysisInProgress) {
			metrics.RunsTotal.WithLabelValues(metrics.OutcomeBusy).Inc()
			return pipeline.Result{}, fmt.Errorf("%w; no runner holds its lock, rerun with --reclaim to take it over", err)
		}
		return pipeline.Result{}, err
	}

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	runStart := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldStage, "analysis"),
		logging.String("title", video.Title),
		logging.String("source_file", video.FilePath),
	)

	req, err := r.prepare(ctx, logger, video, mode)
	if err != nil {
		return r.fail(ctx, logger, video, pipeline.Result{VideoID: videoID, Status: pipeline.StatusError, Error: err.Error()}, err)
	}

	deps := r.deps
	deps.Progress = r.store
	deps.Committer = committer{store: r.store, runID: runID}
	if deps.Logger == nil {
		deps.Logger = r.logger
	}
	analyzer := pipeline.NewAnalyzer(deps,
		pipeline.WithFrameParams(r.frameParams),
		pipeline.WithStageObserver(func(state pipeline.State, elapsed time.Duration) {
			metrics.StageDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
		}),
	)

	result, err := analyzer.Analyze(ctx, req)
	if err != nil {
		return r.fail(ctx, logger, video, result, err)
	}

	metrics.RunsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.FramesExtractedTotal.Add(float64(result.FramesExtracted))
	for _, ann := range result.Annotations {
		metrics.AnnotationsCreatedTotal.WithLabelValues(string(ann.Source)).Inc()
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String(logging.FieldStage, "analysis"),
		logging.String("mode", string(result.Mode)),
		logging.String("method", string(result.Method)),
		logging.Int("annotations", len(result.Annotations)),
		logging.Int("frames_extracted", result.FramesExtracted),
		logging.Duration("stage_duration", time.Since(runStart)),
	)
	if err := r.notifier.NotifyAnalysisCompleted(ctx, video.Title, len(result.Annotations), time.Since(runStart)); err != nil {
		warnNotifyFailed(logger, err)
	}
	return result, nil
}

// resolveMode falls back to the configured default when no mode is given.
func (r *Runner) resolveMode(mode transcription.Mode) (transcription.Mode, error) {
	value := string(mode)
	if strings.TrimSpace(value) == "" {
		value = r.cfg.Transcription.Mode
	}
	return transcription.ParseMode(value)
}

// prepare fills in a missing duration and loads the catalog for a run.
func (r *Runner) prepare(ctx context.Context, logger *slog.Logger, video *store.Video, mode transcription.Mode) (pipeline.Request, error) {
	if video.DurationSeconds <= 0 {
		r.fillDuration(ctx, logger, video)
	}

	catalog, err := r.store.ListPractices(ctx, practice.CategoryNone)
	if err != nil {
		return pipeline.Request{}, err
	}
	if len(catalog) == 0 {
		logger.Info("practice catalog empty; using built-in catalog",
			logging.String(logging.FieldEventType, "catalog_default"),
		)
		catalog = practice.Default()
	}

	return pipeline.Request{
		Video:    video.PipelineVideo(),
		Catalog:  catalog,
		Category: video.Category,
		Mode:     mode,
	}, nil
}

func (r *Runner) fillDuration(ctx context.Context, logger *slog.Logger, video *store.Video) {
	probe, err := r.probe(ctx, r.cfg.FFprobeBinary(), video.FilePath)
	if err == nil && probe.DurationSeconds() > 0 {
		video.DurationSeconds = probe.DurationSeconds()
		err = r.store.UpdateVideoDuration(ctx, video.ID, video.DurationSeconds)
	}
	if err != nil {
		logging.WarnWithContext(logger, "duration probe failed", "duration_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ffprobe can read the video"),
			logging.String(logging.FieldImpact, "annotation times fall back to the extracted audio duration"),
		)
	}
}

func warnNotifyFailed(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "notification failed", "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		logging.String(logging.FieldImpact, "run outcome was recorded but not announced"),
	)
}

func (r *Runner) lockPath(videoID int64) string {
	return filepath.Join(r.cfg.LockDir(), fmt.Sprintf("video-%d.lock", videoID))
}

// committer persists a resolved run before the pipeline reports completion.
type committer struct {
	store *store.Store
	runID string
}

func (c committer) Commit(ctx context.Context, _ pipeline.Request, result pipeline.Result) error {
	return c.store.SaveAnalysis(ctx, result, c.runID)
}
