package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// applyEnv overlays STARREVIEW_* variables onto the decoded file values.
// Unset variables leave the file or default value in place.
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeOpenAI()
	c.normalizeLLM()
	c.normalizeFrames()
	c.normalizeLogging()
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Mode = strings.ToLower(strings.TrimSpace(t.Mode))
	if t.Mode == "" {
		t.Mode = defaultMode
	}
	t.Model = strings.TrimSpace(t.Model)
	if t.Model == "" {
		t.Model = defaultWhisperModel
	}
	t.Device = strings.ToLower(strings.TrimSpace(t.Device))
	if t.Device == "" {
		t.Device = defaultWhisperDevice
	}
	t.ComputeType = strings.TrimSpace(t.ComputeType)
	if t.ComputeType == "" {
		t.ComputeType = defaultWhisperComputeType
	}
	t.UVXBinary = strings.TrimSpace(t.UVXBinary)
	if t.UVXBinary == "" {
		t.UVXBinary = defaultUVXBinary
	}
	t.IndexURL = strings.TrimSpace(t.IndexURL)
	if t.IndexURL == "" {
		t.IndexURL = defaultWhisperIndexURL
	}
}

func (c *Config) normalizeOpenAI() {
	o := &c.OpenAI
	o.APIKey = strings.TrimSpace(o.APIKey)
	if o.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			o.APIKey = strings.TrimSpace(value)
		}
	}
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		o.BaseURL = defaultOpenAIBaseURL
	}
	if strings.TrimSpace(o.TranscriptionModel) == "" {
		o.TranscriptionModel = defaultTranscriptionModel
	}
	if strings.TrimSpace(o.VisionModel) == "" {
		o.VisionModel = defaultVisionModel
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = defaultOpenAITimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	l := &c.LLM
	l.APIKey = strings.TrimSpace(l.APIKey)
	if l.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			l.APIKey = strings.TrimSpace(value)
		}
	}
	// Older configs carried the full completions URL.
	l.BaseURL = strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(l.BaseURL), "/"), "/chat/completions")
	if l.BaseURL == "" {
		l.BaseURL = defaultLLMBaseURL
	}
	l.Model = strings.TrimSpace(l.Model)
	if l.Model == "" {
		l.Model = defaultLLMModel
	}
	l.Referer = strings.TrimSpace(l.Referer)
	if l.Referer == "" {
		l.Referer = defaultLLMReferer
	}
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		l.Title = defaultLLMTitle
	}
	if l.TimeoutSeconds <= 0 {
		l.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeFrames() {
	f := &c.Frames
	f.Strategy = strings.ToLower(strings.TrimSpace(f.Strategy))
	switch f.Strategy {
	case "":
		f.Strategy = defaultFrameStrategy
	case "key-moments", "keymoments":
		f.Strategy = "key_moments"
	}
	if f.MaxFrames <= 0 {
		f.MaxFrames = defaultFrameMaxFrames
	}
	if f.MaxDimension == 0 {
		f.MaxDimension = defaultFrameMaxDimension
	}
	if f.Quality == 0 {
		f.Quality = defaultFrameQuality
	}
	if c.Analysis.MaxVisualPractices <= 0 {
		c.Analysis.MaxVisualPractices = defaultMaxVisualPractices
	}
	if c.Analysis.MaxVisualFrames <= 0 {
		c.Analysis.MaxVisualFrames = defaultMaxVisualFrames
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
