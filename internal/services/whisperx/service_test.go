package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestBuildArgsCPU(t *testing.T) {
	svc := NewService(Config{Model: "small"})
	args := svc.buildArgs("/tmp/audio.wav", "/tmp/out", "en")

	if args[0] != "--index-url" || args[1] != DefaultIndexURL {
		t.Fatalf("expected cpu index url first, got %v", args[:2])
	}
	for _, want := range []string{PackageName, "/tmp/audio.wav", "small", "json", "cpu", "float32", "en"} {
		if !slices.Contains(args, want) {
			t.Fatalf("expected %q in args %v", want, args)
		}
	}
}

func TestBuildArgsOmitsBlankLanguage(t *testing.T) {
	svc := NewService(Config{IndexURL: PypiIndexURL})
	args := svc.buildArgs("/tmp/audio.wav", "/tmp/out", " ")
	if slices.Contains(args, "--language") {
		t.Fatalf("did not expect language flag in %v", args)
	}
	if slices.Contains(args, "--extra-index-url") {
		t.Fatalf("did not expect extra index when using pypi directly: %v", args)
	}
}

func TestPrepareRunsModelLoad(t *testing.T) {
	svc := NewService(Config{Model: "base"})
	var got []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	})

	model, err := svc.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if model.Name != "base" || model.Device != CPUDevice {
		t.Fatalf("unexpected model %+v", model)
	}
	script := got[len(got)-1]
	if !strings.Contains(script, `load_model("base", "cpu"`) {
		t.Fatalf("unexpected load script %q", script)
	}
}

func TestPrepareSurfacesFailure(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("No matching distribution found for torch")
	})
	if _, err := svc.Prepare(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestTranscribeFileLoadsJSON(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")
	svc := NewService(Config{})
	svc.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		out := args[slices.Index(args, "--output_dir")+1]
		body := `{"language":"en","segments":[{"text":" Good job! ","start":0.5,"end":1.2},{"text":"Touch the red one.","start":1.4,"end":3.0}]}`
		return os.WriteFile(filepath.Join(out, "audio.json"), []byte(body), 0o644)
	})

	transcript, err := svc.TranscribeFile(context.Background(), source, "", "")
	if err != nil {
		t.Fatalf("TranscribeFile returned error: %v", err)
	}
	if transcript.Text != "Good job! Touch the red one." {
		t.Fatalf("unexpected text %q", transcript.Text)
	}
	if transcript.Language != "en" || len(transcript.Segments) != 2 {
		t.Fatalf("unexpected transcript %+v", transcript)
	}
	if transcript.JSONPath != filepath.Join(dir, "audio.json") {
		t.Fatalf("unexpected json path %q", transcript.JSONPath)
	}
}

func TestTranscribeFileToleratesMissingOutput(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	transcript, err := svc.TranscribeFile(context.Background(), filepath.Join(dir, "audio.wav"), dir, "")
	if err != nil {
		t.Fatalf("TranscribeFile returned error: %v", err)
	}
	if len(transcript.Segments) != 0 || transcript.Text != "" {
		t.Fatalf("expected empty transcript, got %+v", transcript)
	}
}

func TestLoadTranscriptRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTranscript(path); err == nil {
		t.Fatal("expected parse error")
	}
}
