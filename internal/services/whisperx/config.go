package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "small").
	Model string
	// Device is "cpu" or "cuda".
	Device string
	// ComputeType is passed through to faster-whisper (float32 on CPU).
	ComputeType string
	// IndexURL is the Python package index uvx resolves torch from.
	IndexURL string
	// UVXBinary is the uvx executable.
	UVXBinary string
}

// WhisperX configuration constants.
const (
	DefaultModel       = "small"
	DefaultIndexURL    = "https://download.pytorch.org/whl/cpu"
	PypiIndexURL       = "https://pypi.org/simple"
	BatchSize          = "8"
	OutputFormat       = "json"
	SegmentResolution  = "sentence"
	CPUDevice          = "cpu"
	CPUComputeType     = "float32"
	UVXCommand         = "uvx"
	PackageName        = "whisperx"
	torchWeightsEnvKey = "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD"
)
