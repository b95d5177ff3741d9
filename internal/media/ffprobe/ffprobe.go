package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	NBFrames     string `json:"nb_frames"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return r.countType("video")
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return r.countType("audio")
}

func (r Result) countType(codecType string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

// PrimaryVideo returns the first video stream, skipping attached cover art
// (mjpeg/png stills).
func (r Result) PrimaryVideo() (Stream, bool) {
	var fallback *Stream
	for i := range r.Streams {
		stream := r.Streams[i]
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		switch strings.ToLower(stream.CodecName) {
		case "mjpeg", "png", "bmp":
			if fallback == nil {
				fallback = &r.Streams[i]
			}
			continue
		}
		return stream, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration in seconds, falling back to
// the primary video stream. Returns 0 when unknown.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	if video, ok := r.PrimaryVideo(); ok {
		if d := parseFloat(video.Duration); d > 0 {
			return d
		}
	}
	return 0
}

// FrameRate returns the primary video stream's average frame rate, or 0 when
// it cannot be determined.
func (r Result) FrameRate() float64 {
	video, ok := r.PrimaryVideo()
	if !ok {
		return 0
	}
	if fps := parseRational(video.AvgFrameRate); fps > 0 {
		return fps
	}
	return parseRational(video.RFrameRate)
}

// FrameCount returns the number of frames in the primary video stream. When
// the container does not record nb_frames the count is estimated from the
// duration and frame rate.
func (r Result) FrameCount() int {
	video, ok := r.PrimaryVideo()
	if !ok {
		return 0
	}
	if n, err := strconv.Atoi(strings.TrimSpace(video.NBFrames)); err == nil && n > 0 {
		return n
	}
	fps := r.FrameRate()
	duration := r.DurationSeconds()
	if fps <= 0 || duration <= 0 {
		return 0
	}
	return int(math.Floor(duration * fps))
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// parseRational handles ffprobe rates such as "30000/1001" and "25/1".
func parseRational(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		return parseFloat(num)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}
