package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"starreview/internal/media/audio"
)

// SilentWAV returns a mono 16-bit PCM WAV of the given length at the
// extractor's sample rate.
func SilentWAV(seconds float64) []byte {
	samples := max(int(seconds*audio.SampleRate), 0)
	dataSize := uint32(samples * 2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVEfmt ")
	for _, v := range []any{
		uint32(16),                   // fmt chunk size
		uint16(1),                    // PCM
		uint16(1),                    // mono
		uint32(audio.SampleRate),     // sample rate
		uint32(audio.SampleRate * 2), // byte rate
		uint16(2),                    // block align
		uint16(16),                   // bits per sample
	} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

// WriteWAV writes SilentWAV(seconds) to path, creating parent directories.
func WriteWAV(t testing.TB, path string, seconds float64) string {
	t.Helper()
	writeFixture(t, path, SilentWAV(seconds))
	return path
}

// WriteVideo writes a stub MP4 holding only an ftyp box. Nothing decodes
// it; registration only needs the file to exist.
func WriteVideo(t testing.TB, path string) string {
	t.Helper()
	var box bytes.Buffer
	_ = binary.Write(&box, binary.BigEndian, uint32(24))
	box.WriteString("ftypisom")
	_ = binary.Write(&box, binary.BigEndian, uint32(0x200))
	box.WriteString("isommp41")
	writeFixture(t, path, box.Bytes())
	return path
}

func writeFixture(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
