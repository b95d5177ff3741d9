package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// Version runs "<binary> -version" and returns the first line of output,
// which ffmpeg and ffprobe both use for their build banner.
func Version(ctx context.Context, binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", fmt.Errorf("version: binary not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "-version").Output() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	return firstLine(string(out)), nil
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
