package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"starreview/internal/analysis"
	"starreview/internal/logging"
	"starreview/internal/media/audio"
	"starreview/internal/media/frames"
	"starreview/internal/practice"
	"starreview/internal/services"
	"starreview/internal/transcription"
)

// AudioExtractor decodes the audio track of a video.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) (*audio.Audio, error)
}

// FrameSampler grabs stills from a video.
type FrameSampler interface {
	Sample(ctx context.Context, videoPath string, params frames.Params) (frames.Sample, error)
}

// VisualAnalyzer turns frames into observations.
type VisualAnalyzer interface {
	Analyze(ctx context.Context, sampled []frames.Frame, catalog practice.Catalog, category practice.Category) ([]analysis.Observation, error)
}

// TranscriptAnalyzer turns transcript text into observations.
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, text string, catalog practice.Catalog, category practice.Category) ([]analysis.Observation, error)
}

// Committer persists a resolved result while the run is still in the
// Resolving state. A commit failure fails the run.
type Committer interface {
	Commit(ctx context.Context, req Request, result Result) error
}

// Dependencies wires the collaborators of an Analyzer. Local and Remote
// are the two transcription engines; either may be nil when its mode is
// unavailable. Sampler and Visual are only used in enhanced mode, and
// Transcript may be nil to skip transcript analysis.
type Dependencies struct {
	Extractor  AudioExtractor
	Local      transcription.Engine
	Remote     transcription.Engine
	Sampler    FrameSampler
	Visual     VisualAnalyzer
	Transcript TranscriptAnalyzer
	Progress   ProgressSink
	Committer  Committer
	Logger     *slog.Logger
}

// Analyzer runs the analysis pipeline for one video at a time. Separate
// Analyze calls share no mutable state and may run concurrently.
type Analyzer struct {
	deps        Dependencies
	frameParams frames.Params
	logger      *slog.Logger
	now         func() time.Time
	observe     func(State, time.Duration)
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithFrameParams sets the sampling strategy and bounds.
func WithFrameParams(params frames.Params) Option {
	return func(a *Analyzer) { a.frameParams = params }
}

// WithClock overrides the clock used for stage timings.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithStageObserver receives the time spent in every state a run leaves.
func WithStageObserver(observe func(State, time.Duration)) Option {
	return func(a *Analyzer) { a.observe = observe }
}

// DefaultFrameParams samples one frame every two seconds.
func DefaultFrameParams() frames.Params {
	return frames.Params{
		Strategy:        frames.StrategyInterval,
		Count:           20,
		IntervalSeconds: 2,
		MaxFrames:       120,
		MaxDimension:    800,
		Quality:         85,
	}
}

// NewAnalyzer builds an orchestrator over deps.
func NewAnalyzer(deps Dependencies, opts ...Option) *Analyzer {
	a := &Analyzer{
		deps:        deps,
		frameParams: DefaultFrameParams(),
		logger:      logging.NewComponentLogger(deps.Logger, "pipeline"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type run struct {
	a       *Analyzer
	ctx     context.Context
	req     Request
	logger  *slog.Logger
	machine *machine
	tracker *tracker
	result  Result
	started time.Time
	entered time.Time
}

// Analyze runs one video through extraction, transcription, optional frame
// analysis, transcript analysis and timestamp resolution. On failure the
// returned Result has StatusError and the error is a *StageError; progress
// stays at the last checkpoint written.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithVideoID(ctx, req.Video.ID)
	if req.Category == "" {
		req.Category = req.Video.Category
	}
	logger := logging.WithContext(ctx, a.logger)
	r := &run{
		a:      a,
		ctx:    ctx,
		req:    req,
		logger: logger,
		result: Result{VideoID: req.Video.ID, Mode: req.Mode, Duration: req.Video.Duration},
		tracker: &tracker{
			sink:    a.deps.Progress,
			videoID: req.Video.ID,
			logger:  logger,
		},
	}
	r.machine = newMachine(r.enter)

	if err := a.validate(req); err != nil {
		return r.failed(err)
	}
	return r.execute()
}

func (a *Analyzer) validate(req Request) error {
	if strings.TrimSpace(req.Video.Path) == "" {
		return services.Wrap(services.ErrValidation, "validate", "video", "video path required", nil)
	}
	info, err := os.Stat(req.Video.Path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "validate", "video", "video file is not readable", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "validate", "video", "video path is a directory", nil)
	}
	if _, err := transcription.ParseMode(string(req.Mode)); err != nil {
		return err
	}
	if err := req.Catalog.Validate(); err != nil {
		return err
	}
	if a.deps.Extractor == nil {
		return services.Wrap(services.ErrConfiguration, "validate", "extractor", "audio extractor not configured", nil)
	}
	return nil
}

// enter logs every state change and writes the checkpoint tied to it.
func (r *run) enter(state State) {
	now := r.a.now()
	if r.a.observe != nil && len(r.machine.history) > 2 {
		r.a.observe(r.machine.history[len(r.machine.history)-2], now.Sub(r.entered))
	}
	r.entered = now
	stageCtx := services.WithStage(r.ctx, string(state))
	r.logger = logging.WithContext(stageCtx, r.a.logger)
	if state != StateFailed {
		r.logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	}
	switch state {
	case StateExtractingAudio:
		r.tracker.set(stageCtx, ProgressInitializing)
	case StateTranscribing:
		r.tracker.set(stageCtx, ProgressTranscribing)
	case StateResolving:
		r.tracker.set(stageCtx, ProgressAnnotating)
	case StateCompleted:
		r.tracker.set(stageCtx, ProgressComplete)
	}
}

func (r *run) execute() (Result, error) {
	r.started = r.a.now()
	r.machine.mustTransition(StateExtractingAudio)
	track, err := r.a.deps.Extractor.Extract(r.ctx, r.req.Video.Path)
	if err != nil {
		return r.failed(err)
	}
	defer func() {
		if err := track.Cleanup(); err != nil {
			logging.WarnWithContext(r.logger, "temporary audio cleanup failed", "audio_cleanup_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the audio-* directory under the work dir"),
				logging.String(logging.FieldImpact, "disk space is not reclaimed"),
			)
		}
	}()
	if r.result.Duration <= 0 {
		r.result.Duration = track.SourceDuration
	}

	r.machine.mustTransition(StateTranscribing)
	engine, err := transcription.Select(r.req.Mode, r.a.deps.Local, r.a.deps.Remote)
	if err != nil {
		return r.failed(err)
	}
	transcript, err := engine.Transcribe(r.ctx, track.Path)
	if err != nil {
		return r.failed(err)
	}
	r.result.Transcript = transcript
	r.result.Method = transcript.Method
	r.logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("method", string(transcript.Method)),
		logging.Int("segments", len(transcript.Segments)),
		logging.Duration("elapsed", transcript.Duration),
	)

	textFuture := resolvedFuture[[]analysis.Observation](nil)
	if r.a.deps.Transcript != nil {
		textFuture = startFuture(func() ([]analysis.Observation, error) {
			return r.a.deps.Transcript.Analyze(r.ctx, transcript.Text, r.req.Catalog, r.req.Category)
		})
	}

	var visualObs []analysis.Observation
	if r.req.Mode == transcription.ModeEnhanced && r.a.deps.Sampler != nil && r.a.deps.Visual != nil {
		r.machine.mustTransition(StateSamplingFrames)
		sampled := r.sample(transcript)

		r.machine.mustTransition(StateAnalyzingVisual)
		visualFuture := resolvedFuture[[]analysis.Observation](nil)
		if len(sampled) > 0 {
			visualFuture = startFuture(func() ([]analysis.Observation, error) {
				return r.a.deps.Visual.Analyze(r.ctx, sampled, r.req.Catalog, r.req.Category)
			})
		}
		obs, err := visualFuture.await()
		if visualObs, err = r.absorb(obs, err, "visual"); err != nil {
			return r.failed(err)
		}
	}

	r.machine.mustTransition(StateAnalyzingTranscript)
	obs, err := textFuture.await()
	textObs, err := r.absorb(obs, err, "transcript")
	if err != nil {
		return r.failed(err)
	}
	r.result.TranscriptCount = len(textObs)
	r.result.VisualCount = len(visualObs)
	r.tracker.set(r.ctx, AnalyzedProgress(r.result.FramesExtracted))

	r.machine.mustTransition(StateResolving)
	merged := Merge(textObs, visualObs)
	r.result.Annotations = Annotate(merged, transcript.Segments, r.result.Duration, r.req.Catalog, r.req.Category)
	r.result.Status = StatusSuccess
	if r.a.deps.Committer != nil {
		if err := r.a.deps.Committer.Commit(r.ctx, r.req, r.result); err != nil {
			return r.failed(err)
		}
	}

	r.machine.mustTransition(StateCompleted)
	r.logger.Info("analysis completed",
		logging.String(logging.FieldEventType, "analysis_complete"),
		logging.Int("annotations", len(r.result.Annotations)),
		logging.Int("transcript_observations", r.result.TranscriptCount),
		logging.Int("visual_observations", r.result.VisualCount),
		logging.Int("frames_extracted", r.result.FramesExtracted),
		logging.Duration("elapsed", r.a.now().Sub(r.started)),
	)
	return r.result, nil
}

// sample grabs frames; failure to open the video is logged and leaves the
// run with zero frames.
func (r *run) sample(transcript transcription.Result) []frames.Frame {
	params := r.a.frameParams
	params.SegmentStarts = transcript.SegmentStarts()
	sampled, err := r.a.deps.Sampler.Sample(r.ctx, r.req.Video.Path, params)
	if err != nil {
		logging.WarnWithContext(r.logger, "frame sampling failed", "frame_sampling_failed",
			logging.Error(err),
			logging.String("error_kind", services.KindName(err)),
			logging.String(logging.FieldErrorHint, "check the video has a decodable picture stream"),
			logging.String(logging.FieldImpact, "visual analysis skipped for this run"),
		)
		return nil
	}
	r.result.FramesExtracted = len(sampled.Frames)
	r.result.FramesSkipped = sampled.Skipped
	r.logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("frames", len(sampled.Frames)),
		logging.Int("requested", sampled.Requested),
		logging.Int("skipped", sampled.Skipped),
	)
	return sampled.Frames
}

// absorb turns a modality-level analysis or remote failure into zero
// observations. Any other failure is returned.
func (r *run) absorb(obs []analysis.Observation, err error, modality string) ([]analysis.Observation, error) {
	if err == nil {
		return obs, nil
	}
	if errors.Is(err, services.ErrAnalysisService) || errors.Is(err, services.ErrRemoteService) {
		logging.WarnWithContext(r.logger, fmt.Sprintf("%s analysis failed", modality), modality+"_analysis_failed",
			logging.Error(err),
			logging.String("error_kind", services.KindName(err)),
			logging.String(logging.FieldErrorHint, "check the model endpoint and its reply format"),
			logging.String(logging.FieldImpact, fmt.Sprintf("no %s observations for this run", modality)),
		)
		return nil, nil
	}
	return nil, err
}

func (r *run) failed(err error) (Result, error) {
	stage := r.machine.state
	r.machine.fail()
	r.result.Status = StatusError
	r.result.Stage = stage
	r.result.Error = err.Error()
	r.result.Annotations = nil
	logging.ErrorWithContext(r.logger, "analysis failed", "analysis_failed",
		logging.Error(err),
		logging.String("failed_stage", string(stage)),
		logging.String("error_kind", services.KindName(err)),
		logging.String(logging.FieldErrorHint, hintFor(err)),
	)
	return r.result, &StageError{Stage: stage, Err: err}
}

func hintFor(err error) string {
	switch services.KindOf(err) {
	case services.ErrExtraction:
		return "check the video has an audio track and ffmpeg is installed"
	case services.ErrModelUnavailable:
		return "run starreview doctor to verify the local whisper environment"
	case services.ErrRemoteService:
		return "check the OpenAI API key and network access"
	case services.ErrValidation:
		return "check the video path, mode and practice catalog"
	case services.ErrConfiguration:
		return "check the config file (starreview config show)"
	default:
		return "check logs for details"
	}
}
