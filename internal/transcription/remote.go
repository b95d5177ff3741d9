package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"starreview/internal/logging"
	"starreview/internal/services"
	"starreview/internal/services/openaiapi"
)

// DefaultRemoteModel is the hosted Whisper model.
const DefaultRemoteModel = "whisper-1"

// Remote uploads audio to the hosted Whisper endpoint.
type Remote struct {
	client openai.Client
	model  string
	logger *slog.Logger
	now    func() time.Time
}

// NewRemote builds a remote engine over a configured openai-go client.
func NewRemote(client openai.Client, model string, logger *slog.Logger) *Remote {
	if strings.TrimSpace(model) == "" {
		model = DefaultRemoteModel
	}
	return &Remote{
		client: client,
		model:  model,
		logger: logging.NewComponentLogger(logger, "transcription"),
		now:    time.Now,
	}
}

type verboseTranscript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Transcribe requests verbose JSON with segment timestamps. A response
// without segments yields an empty slice, not an error.
func (r *Remote) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	start := r.now()
	file, err := os.Open(audioPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExtraction, "transcription", "open audio", audioPath, err)
	}
	defer file.Close()

	resp, err := r.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(r.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	})
	if err != nil {
		msg := "transcription request failed"
		if status, ok := openaiapi.StatusCode(err); ok {
			msg = fmt.Sprintf("transcription request returned http %d", status)
		}
		return Result{}, services.Wrap(services.ErrRemoteService, "transcription", "openai whisper", msg, err)
	}

	var body verboseTranscript
	raw := strings.TrimSpace(resp.RawJSON())
	if raw == "" {
		body.Text = resp.Text
	} else if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return Result{}, services.Wrap(services.ErrRemoteService, "transcription", "openai whisper", "malformed response body", err)
	}

	segments := normalizeSegments(body.Segments)
	result := Result{
		Text:     strings.TrimSpace(body.Text),
		Language: NormalizeLanguage(body.Language),
		Segments: segments,
		Method:   MethodRemote,
		Duration: r.now().Sub(start),
	}
	if result.Text == "" {
		result.Text = joinSegments(segments)
	}
	r.logger.Info("remote transcription complete",
		logging.String("model", r.model),
		logging.Int("segments", len(segments)),
		logging.String("language", result.Language),
		logging.Duration("elapsed", result.Duration),
	)
	return result, nil
}
