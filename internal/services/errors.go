package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error markers. Every failure raised by the analysis pipeline wraps exactly
// one of these so callers can classify it with errors.Is.
var (
	ErrExtraction       = errors.New("extraction error")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrRemoteService    = errors.New("remote service error")
	ErrAnalysisService  = errors.New("analysis service error")
	ErrSampling         = errors.New("sampling error")
	ErrValidation       = errors.New("validation error")
	ErrConfiguration    = errors.New("configuration error")
	ErrExternalTool     = errors.New("external tool error")
)

var markers = []error{
	ErrExtraction,
	ErrModelUnavailable,
	ErrRemoteService,
	ErrAnalysisService,
	ErrSampling,
	ErrValidation,
	ErrConfiguration,
	ErrExternalTool,
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf reports the outermost marker carried by err, or nil when err is
// untagged. Wrapping an already tagged cause keeps the new marker.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, marker := range markers {
		if err == marker { //nolint:errorlint // identity check against sentinels
			return marker
		}
	}
	switch wrapped := err.(type) { //nolint:errorlint // manual chain walk
	case interface{ Unwrap() []error }:
		for _, inner := range wrapped.Unwrap() {
			if kind := KindOf(inner); kind != nil {
				return kind
			}
		}
	case interface{ Unwrap() error }:
		return KindOf(wrapped.Unwrap())
	}
	return nil
}

// KindName returns a short machine label for the marker carried by err.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrExtraction:
		return "extraction"
	case ErrModelUnavailable:
		return "model_unavailable"
	case ErrRemoteService:
		return "remote_service"
	case ErrAnalysisService:
		return "analysis_service"
	case ErrSampling:
		return "sampling"
	case ErrValidation:
		return "validation"
	case ErrConfiguration:
		return "configuration"
	case ErrExternalTool:
		return "external_tool"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
