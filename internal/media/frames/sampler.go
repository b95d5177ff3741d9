package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"starreview/internal/logging"
	"starreview/internal/media/ffprobe"
	"starreview/internal/services"
)

const stageName = "sampling_frames"

// Strategy selects how sample timestamps are chosen.
type Strategy string

const (
	StrategyUniform    Strategy = "uniform"
	StrategyInterval   Strategy = "interval"
	StrategyKeyMoments Strategy = "key_moments"
)

// ParseStrategy maps a configuration value onto a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategyUniform:
		return StrategyUniform, nil
	case StrategyInterval:
		return StrategyInterval, nil
	case StrategyKeyMoments, "key-moments":
		return StrategyKeyMoments, nil
	default:
		return "", services.Wrap(services.ErrValidation, stageName, "strategy", fmt.Sprintf("unknown frame strategy %q", value), nil)
	}
}

// Params configures one sampling call.
type Params struct {
	Strategy Strategy
	// Count is the number of frames requested by the uniform and key-moment strategies.
	Count int
	// IntervalSeconds is the spacing used by the interval strategy.
	IntervalSeconds float64
	// MaxFrames caps the interval strategy on long videos.
	MaxFrames int
	// MaxDimension bounds the longest side of every frame in pixels.
	MaxDimension int
	// Quality is the JPEG quality on a 1-100 scale.
	Quality int
	// SegmentStarts seeds the key-moment strategy with transcript segment starts.
	SegmentStarts []float64
}

// Frame is one encoded still.
type Frame struct {
	// Number is the 1-based position within the sample, as referenced by
	// visual observations.
	Number    int
	Timestamp float64
	JPEG      []byte
}

// Sample is the ordered result of one sampling call.
type Sample struct {
	Frames    []Frame
	Requested int
	Skipped   int
	Duration  float64
}

// OutputRunner executes a command and returns its stdout.
type OutputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ProbeFunc inspects a media container.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Sampler grabs size-bounded JPEG stills from a video with ffmpeg.
type Sampler struct {
	ffmpegBinary  string
	ffprobeBinary string
	run           OutputRunner
	probe         ProbeFunc
	logger        *slog.Logger
}

// NewSampler constructs a sampler using the given binaries.
func NewSampler(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Sampler {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Sampler{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		run:           runOutput,
		probe:         ffprobe.Inspect,
		logger:        logging.NewComponentLogger(logger, "frames"),
	}
}

// WithRunner sets a custom command runner (for testing).
func (s *Sampler) WithRunner(run OutputRunner) *Sampler {
	if run != nil {
		s.run = run
	}
	return s
}

// WithProbe sets a custom container probe (for testing).
func (s *Sampler) WithProbe(probe ProbeFunc) *Sampler {
	if probe != nil {
		s.probe = probe
	}
	return s
}

// Sample grabs frames according to params. Seek or decode failures for
// individual timestamps are skipped. When the container cannot be opened at
// all an empty Sample is returned together with services.ErrSampling, which
// callers treat as non-fatal.
func (s *Sampler) Sample(ctx context.Context, videoPath string, params Params) (Sample, error) {
	probe, err := s.probe(ctx, s.ffprobeBinary, videoPath)
	if err != nil {
		return Sample{}, services.Wrap(services.ErrSampling, stageName, "probe", "cannot open video", err)
	}
	if probe.VideoStreamCount() == 0 {
		return Sample{}, services.Wrap(services.ErrSampling, stageName, "probe", "video has no picture stream", nil)
	}

	duration := probe.DurationSeconds()
	times, requested, err := plan(params, probe)
	if err != nil {
		return Sample{}, err
	}

	result := Sample{Requested: requested, Duration: duration}
	for _, ts := range times {
		data, err := s.grab(ctx, videoPath, ts, params)
		if err != nil {
			result.Skipped++
			s.logger.Debug("frame grab skipped",
				logging.Float64("timestamp", ts),
				logging.Error(err),
			)
			continue
		}
		result.Frames = append(result.Frames, Frame{
			Number:    len(result.Frames) + 1,
			Timestamp: ts,
			JPEG:      data,
		})
	}
	if len(result.Frames) > requested {
		result.Frames = result.Frames[:requested]
	}
	return result, nil
}

func plan(params Params, probe ffprobe.Result) ([]float64, int, error) {
	duration := probe.DurationSeconds()
	switch params.Strategy {
	case StrategyUniform:
		return UniformTimes(params.Count, probe.FrameCount(), probe.FrameRate(), duration), params.Count, nil
	case StrategyInterval, "":
		times := IntervalTimes(params.IntervalSeconds, duration, params.MaxFrames)
		return times, len(times), nil
	case StrategyKeyMoments:
		return KeyMomentTimes(params.Count, duration, params.SegmentStarts), params.Count, nil
	default:
		return nil, 0, services.Wrap(services.ErrValidation, stageName, "strategy", fmt.Sprintf("unknown frame strategy %q", params.Strategy), nil)
	}
}

func (s *Sampler) grab(ctx context.Context, videoPath string, ts float64, params Params) ([]byte, error) {
	out, err := s.run(ctx, s.ffmpegBinary, GrabArgs(videoPath, ts, params.MaxDimension, params.Quality)...)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(out, []byte{0xFF, 0xD8}) {
		return nil, errors.New("decoder returned no jpeg data")
	}
	return out, nil
}

// GrabArgs builds the ffmpeg arguments that seek to ts and write one JPEG to
// stdout, downscaled so neither side exceeds maxDimension.
func GrabArgs(videoPath string, ts float64, maxDimension, quality int) []string {
	if maxDimension <= 0 {
		maxDimension = 800
	}
	scale := fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", maxDimension, maxDimension)
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-an",
		"-vf", scale,
		"-q:v", strconv.Itoa(QScale(quality)),
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	}
}

// QScale maps a 1-100 JPEG quality onto ffmpeg's 2-31 mjpeg qscale, where
// lower is better.
func QScale(quality int) int {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	q := 2 + (100-quality)*29/99
	return min(max(q, 2), 31)
}

func runOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
