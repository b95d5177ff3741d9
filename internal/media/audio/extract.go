package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"starreview/internal/media/ffprobe"
	"starreview/internal/services"
)

const (
	stageName = "extracting_audio"

	// SampleRate is the PCM sample rate handed to speech-to-text.
	SampleRate = 16000
	// Channels is the PCM channel count handed to speech-to-text.
	Channels = 1

	wavHeaderBytes = 44
)

// CommandRunner executes an external command. Tests substitute it to avoid
// spawning ffmpeg.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// ProbeFunc inspects a media container.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Audio is an extracted PCM track scoped to a single analysis run.
type Audio struct {
	Path string
	// SourceDuration is the container duration reported while probing, 0 when unknown.
	SourceDuration float64

	dir  string
	once sync.Once
	err  error
}

// Cleanup removes the extracted audio and its scratch directory. It is safe to
// call more than once and on a nil receiver.
func (a *Audio) Cleanup() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		target := a.dir
		if target == "" {
			target = a.Path
		}
		if target == "" {
			return
		}
		if err := os.RemoveAll(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.err = fmt.Errorf("remove extracted audio: %w", err)
		}
	})
	return a.err
}

// Extractor decodes a video container's first audio track into PCM.
type Extractor struct {
	ffmpegBinary  string
	ffprobeBinary string
	workDir       string
	run           CommandRunner
	probe         ProbeFunc
}

// NewExtractor builds an extractor that writes scratch files under workDir
// (the OS temp dir when empty).
func NewExtractor(ffmpegBinary, ffprobeBinary, workDir string) *Extractor {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Extractor{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		workDir:       workDir,
		run:           runCommand,
		probe:         ffprobe.Inspect,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner CommandRunner) *Extractor {
	if runner != nil {
		e.run = runner
	}
	return e
}

// WithProbe sets a custom container probe (for testing).
func (e *Extractor) WithProbe(probe ProbeFunc) *Extractor {
	if probe != nil {
		e.probe = probe
	}
	return e
}

// Extract writes the first audio track of videoPath to a fresh WAV file. Any
// failure, including a container without audio, is reported as
// services.ErrExtraction and leaves nothing behind on disk.
func (e *Extractor) Extract(ctx context.Context, videoPath string) (*Audio, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, services.Wrap(services.ErrExtraction, stageName, "stat", "video file is not readable", err)
	}

	probe, err := e.probe(ctx, e.ffprobeBinary, videoPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, stageName, "probe", "cannot decode container", err)
	}
	if probe.AudioStreamCount() == 0 {
		return nil, services.Wrap(services.ErrExtraction, stageName, "probe", "video has no audio track", nil)
	}

	if e.workDir != "" {
		if err := os.MkdirAll(e.workDir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrExtraction, stageName, "workdir", "cannot create scratch directory", err)
		}
	}
	dir, err := os.MkdirTemp(e.workDir, "audio-*")
	if err != nil {
		return nil, services.Wrap(services.ErrExtraction, stageName, "workdir", "cannot create scratch directory", err)
	}

	out := &Audio{
		Path:           filepath.Join(dir, "audio.wav"),
		SourceDuration: probe.DurationSeconds(),
		dir:            dir,
	}

	if err := e.run(ctx, e.ffmpegBinary, BuildArgs(videoPath, out.Path)...); err != nil {
		_ = out.Cleanup()
		return nil, services.Wrap(services.ErrExtraction, stageName, "ffmpeg", "audio decode failed", err)
	}

	info, err := os.Stat(out.Path)
	if err != nil || info.Size() <= wavHeaderBytes {
		_ = out.Cleanup()
		return nil, services.Wrap(services.ErrExtraction, stageName, "ffmpeg", "decoder produced no audio samples", err)
	}

	return out, nil
}

// BuildArgs returns the ffmpeg arguments that decode the first audio track of
// source into mono 16 kHz pcm_s16le at dest.
func BuildArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", fmt.Sprint(Channels),
		"-ar", fmt.Sprint(SampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
