package workflow

import (
	"log/slog"
	"time"

	"starreview/internal/analysis"
	"starreview/internal/config"
	"starreview/internal/media/audio"
	"starreview/internal/media/frames"
	"starreview/internal/pipeline"
	"starreview/internal/services/llm"
	"starreview/internal/services/openaiapi"
	"starreview/internal/services/vision"
	"starreview/internal/services/whisperx"
	"starreview/internal/transcription"
)

// remoteRetries bounds openai-go's own retry loop for Whisper, vision and transcript LLM calls.
const remoteRetries = 2

// BuildDependencies constructs the analysis collaborators described by cfg.
// Remote transcription and visual analysis exist only with an OpenAI key;
// transcript analysis exists only with an LLM key (which falls back to the
// OpenAI key).
func BuildDependencies(cfg *config.Config, logger *slog.Logger) (pipeline.Dependencies, error) {
	whisper := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		Device:      cfg.Transcription.Device,
		ComputeType: cfg.Transcription.ComputeType,
		IndexURL:    cfg.Transcription.IndexURL,
		UVXBinary:   cfg.Transcription.UVXBinary,
	})
	deps := pipeline.Dependencies{
		Extractor: audio.NewExtractor(cfg.FFmpegBinary(), cfg.FFprobeBinary(), cfg.Paths.WorkDir),
		Local:     transcription.NewLocal(whisper, logger),
		Sampler:   frames.NewSampler(cfg.FFmpegBinary(), cfg.FFprobeBinary(), logger),
		Logger:    logger,
	}

	if cfg.OpenAI.APIKey != "" {
		api, err := openaiapi.NewClient(openaiapi.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
			MaxRetries: remoteRetries,
		})
		if err != nil {
			return pipeline.Dependencies{}, err
		}
		deps.Remote = transcription.NewRemote(api, cfg.OpenAI.TranscriptionModel, logger)
		deps.Visual = analysis.NewVisual(
			vision.NewClient(api, vision.Config{
				Model:       cfg.OpenAI.VisionModel,
				Temperature: cfg.Analysis.Temperature,
			}),
			logger,
			analysis.WithVisualLimits(cfg.Analysis.MaxVisualPractices, cfg.Analysis.MaxVisualFrames),
		)
	}

	if llmCfg := cfg.GetLLM(); llmCfg.APIKey != "" {
		client, err := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			Temperature:    llmCfg.Temperature,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
			MaxRetries:     remoteRetries,
		})
		if err != nil {
			return pipeline.Dependencies{}, err
		}
		deps.Transcript = analysis.NewTranscript(client, logger)
	}
	return deps, nil
}

// FrameParams converts the [frames] section into sampler parameters.
func FrameParams(cfg *config.Config) (frames.Params, error) {
	strategy, err := frames.ParseStrategy(cfg.Frames.Strategy)
	if err != nil {
		return frames.Params{}, err
	}
	return frames.Params{
		Strategy:        strategy,
		Count:           cfg.Frames.Count,
		IntervalSeconds: cfg.Frames.IntervalSeconds,
		MaxFrames:       cfg.Frames.MaxFrames,
		MaxDimension:    cfg.Frames.MaxDimension,
		Quality:         cfg.Frames.Quality,
	}, nil
}
