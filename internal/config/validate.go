package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if topic := c.Notifications.NtfyTopic; topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return ensurePositiveMap(map[string]int{
		"openai.timeout_seconds": c.OpenAI.TimeoutSeconds,
		"llm.timeout_seconds":    c.LLM.TimeoutSeconds,
	})
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Mode {
	case "enhanced", "local":
	default:
		return fmt.Errorf("transcription.mode must be enhanced or local, got %q", c.Transcription.Mode)
	}
	return nil
}

func (c *Config) validateFrames() error {
	f := c.Frames
	switch f.Strategy {
	case "uniform", "interval", "key_moments":
	default:
		return fmt.Errorf("frames.strategy must be uniform, interval, or key_moments, got %q", f.Strategy)
	}
	if f.Count <= 0 {
		return errors.New("frames.count must be positive")
	}
	if f.Count > 500 {
		return errors.New("frames.count must be at most 500")
	}
	if f.IntervalSeconds < 0.1 {
		return errors.New("frames.interval_seconds must be at least 0.1")
	}
	if f.MaxDimension < 64 {
		return errors.New("frames.max_dimension must be at least 64")
	}
	if f.Quality < 1 || f.Quality > 100 {
		return errors.New("frames.quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 2 {
		return errors.New("analysis.temperature must be between 0 and 2")
	}
	if c.Analysis.MaxVisualFrames > 50 {
		return errors.New("analysis.max_visual_frames must be at most 50")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
