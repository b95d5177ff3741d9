package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
	lookPath      func(file string) (string, error)
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.Device) == "" {
		cfg.Device = CPUDevice
	}
	if strings.TrimSpace(cfg.ComputeType) == "" {
		cfg.ComputeType = CPUComputeType
	}
	if strings.TrimSpace(cfg.IndexURL) == "" {
		cfg.IndexURL = DefaultIndexURL
	}
	if strings.TrimSpace(cfg.UVXBinary) == "" {
		cfg.UVXBinary = UVXCommand
	}
	return &Service{cfg: cfg, lookPath: exec.LookPath}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
	s.lookPath = func(file string) (string, error) { return file, nil }
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Model describes a provisioned WhisperX model.
type Model struct {
	Name     string
	Device   string
	LoadedAt time.Time
}

// Prepare resolves the WhisperX environment through uvx and loads the
// configured model once so its weights are downloaded and verified before
// the first transcription.
func (s *Service) Prepare(ctx context.Context) (Model, error) {
	if _, err := s.lookPath(s.cfg.UVXBinary); err != nil {
		return Model{}, fmt.Errorf("whisperx: %s not found: %w", s.cfg.UVXBinary, err)
	}
	script := fmt.Sprintf(
		"import whisperx; whisperx.load_model(%q, %q, compute_type=%q)",
		s.cfg.Model, s.cfg.Device, s.cfg.ComputeType,
	)
	args := append(s.indexArgs(), "--from", PackageName, "python", "-c", script)
	if err := s.run(ctx, s.cfg.UVXBinary, args...); err != nil {
		return Model{}, fmt.Errorf("whisperx: load model %s: %w", s.cfg.Model, err)
	}
	return Model{Name: s.cfg.Model, Device: s.cfg.Device, LoadedAt: time.Now()}, nil
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	// Force legacy behavior so bundled WhisperX binaries can load checkpoints safely.
	if os.Getenv(torchWeightsEnvKey) == "" {
		cmd.Env = append(os.Environ(), torchWeightsEnvKey+"=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcript is the decoded WhisperX JSON output.
type Transcript struct {
	Text     string
	Language string
	Segments []Segment
	JSONPath string
}

// TranscribeFile transcribes a WAV file. outputDir is where WhisperX writes
// its JSON; it defaults to the source directory. A run that finishes without
// writing JSON yields an empty transcript rather than an error.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir, language string) (Transcript, error) {
	var result Transcript

	if source == "" {
		return result, errors.New("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if err := s.run(ctx, s.cfg.UVXBinary, s.buildArgs(source, outputDir, language)...); err != nil {
		return result, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	result.JSONPath = filepath.Join(outputDir, baseName+".json")

	loaded, err := LoadTranscript(result.JSONPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return result, err
	}
	loaded.JSONPath = result.JSONPath
	return loaded, nil
}

func (s *Service) indexArgs() []string {
	args := []string{"--index-url", s.cfg.IndexURL}
	if s.cfg.IndexURL != PypiIndexURL {
		args = append(args, "--extra-index-url", PypiIndexURL)
	}
	return args
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	args := make([]string, 0, 24)
	args = append(args, s.indexArgs()...)
	args = append(args,
		PackageName,
		source,
		"--model", s.cfg.Model,
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--device", s.cfg.Device,
		"--compute_type", s.cfg.ComputeType,
	)
	if lang := strings.TrimSpace(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type payload struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// LoadTranscript loads segments and the detected language from a WhisperX
// JSON file.
func LoadTranscript(jsonPath string) (Transcript, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return Transcript{}, err
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Transcript{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return Transcript{
		Text:     strings.Join(parts, " "),
		Language: p.Language,
		Segments: p.Segments,
	}, nil
}
