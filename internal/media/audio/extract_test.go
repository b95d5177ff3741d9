package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"starreview/internal/media/audio"
	"starreview/internal/media/ffprobe"
	"starreview/internal/services"
)

func withAudio(duration string) audio.ProbeFunc {
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video"}, {CodecType: "audio"}},
			Format:  ffprobe.Format{Duration: duration},
		}, nil
	}
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

// fakeFFmpeg writes a WAV-sized payload to the last argument.
func fakeFFmpeg(calls *[][]string) audio.CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, append([]string{name}, args...))
		return os.WriteFile(args[len(args)-1], make([]byte, 1024), 0o644)
	}
}

func TestExtractProducesScopedWav(t *testing.T) {
	workDir := t.TempDir()
	var calls [][]string
	extractor := audio.NewExtractor("ffmpeg", "ffprobe", workDir).
		WithProbe(withAudio("61.5")).
		WithCommandRunner(fakeFFmpeg(&calls))

	video := writeVideo(t)
	out, err := extractor.Extract(context.Background(), video)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if out.SourceDuration != 61.5 {
		t.Fatalf("unexpected duration %v", out.SourceDuration)
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Fatalf("expected extracted audio to exist: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one ffmpeg call, got %d", len(calls))
	}
	args := calls[0]
	for _, want := range []string{"-ac", "1", "-ar", "16000", "pcm_s16le", "0:a:0", video} {
		if !slices.Contains(args, want) {
			t.Fatalf("expected %q in ffmpeg args %v", want, args)
		}
	}

	if err := out.Cleanup(); err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if err := out.Cleanup(); err != nil {
		t.Fatalf("second Cleanup returned error: %v", err)
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty work dir after cleanup, found %d entries", len(entries))
	}
}

func TestExtractRejectsVideoWithoutAudio(t *testing.T) {
	extractor := audio.NewExtractor("ffmpeg", "ffprobe", t.TempDir()).
		WithProbe(func(context.Context, string, string) (ffprobe.Result, error) {
			return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}}, nil
		}).
		WithCommandRunner(func(context.Context, string, ...string) error {
			t.Fatal("ffmpeg must not run without an audio track")
			return nil
		})

	_, err := extractor.Extract(context.Background(), writeVideo(t))
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractCleansUpWhenDecodeFails(t *testing.T) {
	workDir := t.TempDir()
	extractor := audio.NewExtractor("ffmpeg", "ffprobe", workDir).
		WithProbe(withAudio("10")).
		WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
			_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
			return errors.New("exit status 1")
		})

	_, err := extractor.Extract(context.Background(), writeVideo(t))
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	entries, _ := os.ReadDir(workDir)
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir removed after failure, found %d entries", len(entries))
	}
}

func TestExtractTreatsEmptyOutputAsFailure(t *testing.T) {
	workDir := t.TempDir()
	extractor := audio.NewExtractor("ffmpeg", "ffprobe", workDir).
		WithProbe(withAudio("10")).
		WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	if _, err := extractor.Extract(context.Background(), writeVideo(t)); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error for missing output, got %v", err)
	}
	entries, _ := os.ReadDir(workDir)
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir removed, found %d entries", len(entries))
	}
}

func TestExtractMissingVideo(t *testing.T) {
	extractor := audio.NewExtractor("", "", t.TempDir())
	_, err := extractor.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestNilAudioCleanup(t *testing.T) {
	var a *audio.Audio
	if err := a.Cleanup(); err != nil {
		t.Fatalf("nil cleanup should be a no-op, got %v", err)
	}
}
