package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir" env:"STARREVIEW_STATE_DIR"`
	WorkDir  string `toml:"work_dir" env:"STARREVIEW_WORK_DIR"`
	LogDir   string `toml:"log_dir" env:"STARREVIEW_LOG_DIR"`
}

// Transcription selects and configures the speech-to-text strategies.
type Transcription struct {
	// Mode is the default analysis mode: "enhanced" (remote Whisper + visual
	// analysis) or "local" (whisperx on this host, transcript analysis only).
	Mode          string `toml:"mode" env:"STARREVIEW_MODE"`
	Model         string `toml:"model" env:"STARREVIEW_WHISPER_MODEL"`
	Device        string `toml:"device"`
	ComputeType   string `toml:"compute_type"`
	UVXBinary     string `toml:"uvx_binary"`
	IndexURL      string `toml:"index_url"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// OpenAI contains settings for the hosted Whisper and multimodal endpoints.
type OpenAI struct {
	APIKey             string `toml:"api_key" env:"STARREVIEW_OPENAI_API_KEY"`
	BaseURL            string `toml:"base_url" env:"STARREVIEW_OPENAI_BASE_URL"`
	TranscriptionModel string `toml:"transcription_model"`
	VisionModel        string `toml:"vision_model"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

// LLM contains the chat-completions settings used for transcript analysis.
type LLM struct {
	APIKey         string `toml:"api_key" env:"STARREVIEW_LLM_API_KEY"`
	BaseURL        string `toml:"base_url" env:"STARREVIEW_LLM_BASE_URL"`
	Model          string `toml:"model" env:"STARREVIEW_LLM_MODEL"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Frames configures still-frame sampling for visual analysis.
type Frames struct {
	Strategy        string  `toml:"strategy" env:"STARREVIEW_FRAME_STRATEGY"`
	Count           int     `toml:"count"`
	IntervalSeconds float64 `toml:"interval_seconds"`
	MaxFrames       int     `toml:"max_frames"`
	MaxDimension    int     `toml:"max_dimension"`
	Quality         int     `toml:"quality"`
}

// Analysis tunes the remote analysis prompts.
type Analysis struct {
	Temperature        float64 `toml:"temperature"`
	MaxVisualPractices int     `toml:"max_visual_practices"`
	MaxVisualFrames    int     `toml:"max_visual_frames"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"STARREVIEW_LOG_FORMAT"`
	Level  string `toml:"level" env:"STARREVIEW_LOG_LEVEL"`
}

// Metrics controls the optional Prometheus listener.
type Metrics struct {
	Bind string `toml:"bind" env:"STARREVIEW_METRICS_BIND"`
}

// Notifications configures ntfy delivery of run outcomes.
type Notifications struct {
	// NtfyTopic is the full topic URL, e.g. https://ntfy.sh/my-topic. Empty
	// disables notifications.
	NtfyTopic             string `toml:"ntfy_topic" env:"STARREVIEW_NTFY_TOPIC"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Config encapsulates all configuration values for starreview.
//
// Configuration sections by subsystem:
//   - Paths: state (database, locks), scratch space, and logs
//   - Transcription: mode default plus whisperx and ffmpeg tooling
//   - OpenAI: hosted Whisper and vision endpoints
//   - LLM: chat completions for transcript analysis
//   - Frames: frame sampling strategy and size bounds
//   - Analysis: prompt tuning
//   - Logging: log format and level
//   - Metrics: Prometheus listener
//   - Notifications: ntfy run outcome messages
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	OpenAI        OpenAI        `toml:"openai"`
	LLM           LLM           `toml:"llm"`
	Frames        Frames        `toml:"frames"`
	Analysis      Analysis      `toml:"analysis"`
	Logging       Logging       `toml:"logging"`
	Metrics       Metrics       `toml:"metrics"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("starreview.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state, scratch, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.WorkDir, c.Paths.LogDir, c.LockDir()} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath returns the SQLite database location.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.StateDir, "starreview.db")
}

// LockDir returns the directory holding per-video run locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// FFmpegBinary returns the ffmpeg executable used for audio and frame extraction.
func (c *Config) FFmpegBinary() string {
	if v := strings.TrimSpace(c.Transcription.FFmpegBinary); v != "" {
		return v
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	if v := strings.TrimSpace(c.Transcription.FFprobeBinary); v != "" {
		return v
	}
	return defaultFFprobeBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the chat-completions settings handed to the llm client.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	Temperature    float64
}

// GetLLM returns the transcript analysis connection settings. The API key
// falls back to [openai].api_key when [llm] does not set one.
func (c *Config) GetLLM() LLMConfig {
	cfg := LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		Temperature:    c.Analysis.Temperature,
	}
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	}
	return cfg
}
