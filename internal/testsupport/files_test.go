package testsupport_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"starreview/internal/testsupport"
)

func TestSilentWAVHeader(t *testing.T) {
	wav := testsupport.SilentWAV(0.25)
	if len(wav) != 44+8000 {
		t.Fatalf("expected 44-byte header plus 8000 bytes of samples, got %d", len(wav))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:16], []byte("WAVEfmt ")) || !bytes.Equal(wav[36:40], []byte("data")) {
		t.Fatalf("unexpected chunk ids % x", wav[:44])
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Fatalf("unexpected sample rate %d", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[4:8]); int(size) != len(wav)-8 {
		t.Fatalf("riff size %d does not match file length %d", size, len(wav))
	}
}

func TestWriteVideoCreatesParents(t *testing.T) {
	path := testsupport.WriteVideo(t, filepath.Join(t.TempDir(), "nested", "clip.mp4"))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read video: %v", err)
	}
	if !bytes.Equal(data[4:8], []byte("ftyp")) {
		t.Fatalf("expected ftyp box, got % x", data)
	}
}
