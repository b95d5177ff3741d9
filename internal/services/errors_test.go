package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"starreview/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtraction, "extracting_audio", "ffmpeg", "decode failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extracting_audio", "ffmpeg", "decode failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want error
		name string
	}{
		{services.Wrap(services.ErrSampling, "sampling_frames", "open", "cannot open", nil), services.ErrSampling, "sampling"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrRemoteService, "transcribing", "upload", "502", nil)), services.ErrRemoteService, "remote_service"},
		{services.Wrap(services.ErrModelUnavailable, "transcribing", "load", "missing", nil), services.ErrModelUnavailable, "model_unavailable"},
		{errors.New("plain"), nil, "unknown"},
		{nil, nil, "unknown"},
		{
			services.Wrap(services.ErrAnalysisService, "analyzing_visual", "decode", "bad body",
				services.Wrap(services.ErrRemoteService, "analyzing_visual", "post", "timeout", nil)),
			services.ErrAnalysisService, "analysis_service",
		},
	}
	for _, tc := range cases {
		if got := services.KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
		if got := services.KindName(tc.err); got != tc.name {
			t.Fatalf("KindName(%v) = %q, want %q", tc.err, got, tc.name)
		}
	}
}
