package frames_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"starreview/internal/logging"
	"starreview/internal/media/ffprobe"
	"starreview/internal/media/frames"
	"starreview/internal/services"
)

var jpegStub = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func videoProbe(duration string) frames.ProbeFunc {
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "h264", AvgFrameRate: "25/1", NBFrames: "250"}},
			Format:  ffprobe.Format{Duration: duration},
		}, nil
	}
}

func argAfter(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}
	return args[idx+1]
}

func TestSampleSkipsFailedSeeks(t *testing.T) {
	var seeks []string
	sampler := frames.NewSampler("ffmpeg", "ffprobe", logging.NewNop()).
		WithProbe(videoProbe("10")).
		WithRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
			ss := argAfter(args, "-ss")
			seeks = append(seeks, ss)
			if ss == "4.000" {
				return nil, errors.New("seek past keyframe index")
			}
			return jpegStub, nil
		})

	sample, err := sampler.Sample(context.Background(), "/videos/session.mp4", frames.Params{
		Strategy:        frames.StrategyInterval,
		IntervalSeconds: 2,
		MaxDimension:    800,
		Quality:         85,
	})
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(seeks) != 5 {
		t.Fatalf("expected 5 grabs, got %v", seeks)
	}
	if len(sample.Frames) != 4 || sample.Skipped != 1 {
		t.Fatalf("expected 4 frames and 1 skip, got %d frames %d skipped", len(sample.Frames), sample.Skipped)
	}
	for i, frame := range sample.Frames {
		if frame.Number != i+1 {
			t.Fatalf("frame %d numbered %d", i, frame.Number)
		}
		if i > 0 && frame.Timestamp < sample.Frames[i-1].Timestamp {
			t.Fatalf("timestamps decreased: %+v", sample.Frames)
		}
	}
	if sample.Frames[2].Timestamp != 6 {
		t.Fatalf("expected skipped timestamp to be dropped, got %+v", sample.Frames[2])
	}
}

func TestSampleRejectsNonJPEGOutput(t *testing.T) {
	sampler := frames.NewSampler("", "", nil).
		WithProbe(videoProbe("4")).
		WithRunner(func(context.Context, string, ...string) ([]byte, error) { return []byte("garbage"), nil })

	sample, err := sampler.Sample(context.Background(), "/videos/session.mp4", frames.Params{Strategy: frames.StrategyUniform, Count: 3})
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(sample.Frames) != 0 || sample.Skipped != 3 {
		t.Fatalf("expected all grabs skipped, got %+v", sample)
	}
}

func TestSampleReportsUnopenableVideo(t *testing.T) {
	sampler := frames.NewSampler("", "", nil).
		WithProbe(func(context.Context, string, string) (ffprobe.Result, error) {
			return ffprobe.Result{}, errors.New("invalid data found when processing input")
		}).
		WithRunner(func(context.Context, string, ...string) ([]byte, error) {
			t.Fatal("ffmpeg must not run for an unopenable file")
			return nil, nil
		})

	sample, err := sampler.Sample(context.Background(), "/videos/broken.mp4", frames.Params{Strategy: frames.StrategyUniform, Count: 5})
	if !errors.Is(err, services.ErrSampling) {
		t.Fatalf("expected sampling error, got %v", err)
	}
	if len(sample.Frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(sample.Frames))
	}
}

func TestSampleKeyMomentsHonorsRequest(t *testing.T) {
	sampler := frames.NewSampler("", "", nil).
		WithProbe(videoProbe("60")).
		WithRunner(func(context.Context, string, ...string) ([]byte, error) { return jpegStub, nil })

	sample, err := sampler.Sample(context.Background(), "/videos/session.mp4", frames.Params{
		Strategy:      frames.StrategyKeyMoments,
		Count:         4,
		SegmentStarts: []float64{3.2, 7.9, 12.1, 20, 44},
	})
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(sample.Frames) > 4 {
		t.Fatalf("expected at most 4 frames, got %d", len(sample.Frames))
	}
	if sample.Frames[0].Timestamp != 3.2 {
		t.Fatalf("expected first key moment at 3.2, got %v", sample.Frames[0].Timestamp)
	}
}

func TestGrabArgsBoundSize(t *testing.T) {
	args := frames.GrabArgs("/videos/a.mp4", 12.5, 800, 85)
	if argAfter(args, "-ss") != "12.500" {
		t.Fatalf("unexpected seek arg in %v", args)
	}
	if vf := argAfter(args, "-vf"); !strings.Contains(vf, "min(800,iw)") || !strings.Contains(vf, "force_original_aspect_ratio=decrease") {
		t.Fatalf("unexpected scale filter %q", vf)
	}
	if argAfter(args, "-frames:v") != "1" {
		t.Fatalf("expected single frame grab in %v", args)
	}
}

func TestQScale(t *testing.T) {
	cases := map[int]int{100: 2, 85: 6, 1: 31, 0: 6, 150: 6}
	for quality, want := range cases {
		if got := frames.QScale(quality); got != want {
			t.Fatalf("QScale(%d) = %d, want %d", quality, got, want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := frames.ParseStrategy("Key-Moments"); err != nil || s != frames.StrategyKeyMoments {
		t.Fatalf("ParseStrategy = %v %v", s, err)
	}
	if _, err := frames.ParseStrategy("random"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
