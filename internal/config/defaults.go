package config

const (
	defaultConfigPath           = "~/.config/starreview/config.toml"
	defaultStateDir             = "~/.local/share/starreview"
	defaultWorkDir              = "~/.cache/starreview/work"
	defaultLogDir               = "~/.local/share/starreview/logs"
	defaultMode                 = "enhanced"
	defaultWhisperModel         = "small"
	defaultWhisperDevice        = "cpu"
	defaultWhisperComputeType   = "float32"
	defaultUVXBinary            = "uvx"
	defaultWhisperIndexURL      = "https://download.pytorch.org/whl/cpu"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultOpenAIBaseURL        = "https://api.openai.com/v1"
	defaultTranscriptionModel   = "whisper-1"
	defaultVisionModel          = "gpt-4o-mini"
	defaultOpenAITimeoutSeconds = 300
	defaultLLMBaseURL           = "https://api.openai.com/v1"
	defaultLLMModel             = "gpt-4o-mini"
	defaultLLMReferer           = "https://github.com/starreview/starreview"
	defaultLLMTitle             = "starreview"
	defaultLLMTimeoutSeconds    = 120
	defaultFrameStrategy        = "interval"
	defaultFrameCount           = 20
	defaultFrameIntervalSeconds = 2.0
	defaultFrameMaxFrames       = 120
	defaultFrameMaxDimension    = 800
	defaultFrameQuality         = 85
	defaultAnalysisTemperature  = 0.3
	defaultMaxVisualPractices   = 15
	defaultMaxVisualFrames      = 15
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultNtfyTimeoutSeconds   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
		},
		Transcription: Transcription{
			Mode:          defaultMode,
			Model:         defaultWhisperModel,
			Device:        defaultWhisperDevice,
			ComputeType:   defaultWhisperComputeType,
			UVXBinary:     defaultUVXBinary,
			IndexURL:      defaultWhisperIndexURL,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		OpenAI: OpenAI{
			BaseURL:            defaultOpenAIBaseURL,
			TranscriptionModel: defaultTranscriptionModel,
			VisionModel:        defaultVisionModel,
			TimeoutSeconds:     defaultOpenAITimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Frames: Frames{
			Strategy:        defaultFrameStrategy,
			Count:           defaultFrameCount,
			IntervalSeconds: defaultFrameIntervalSeconds,
			MaxFrames:       defaultFrameMaxFrames,
			MaxDimension:    defaultFrameMaxDimension,
			Quality:         defaultFrameQuality,
		},
		Analysis: Analysis{
			Temperature:        defaultAnalysisTemperature,
			MaxVisualPractices: defaultMaxVisualPractices,
			MaxVisualFrames:    defaultMaxVisualFrames,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
	}
}
