package transcription_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"starreview/internal/services"
	"starreview/internal/services/openaiapi"
	"starreview/internal/testsupport"
	"starreview/internal/transcription"
)

func remoteEngine(t *testing.T, handler http.HandlerFunc) (*transcription.Remote, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := openaiapi.NewClient(openaiapi.Config{APIKey: "sk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	audio := testsupport.WriteWAV(t, filepath.Join(t.TempDir(), "audio.wav"), 0.5)
	return transcription.NewRemote(client, "", nil), audio
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestRemoteTranscribeDecodesSegments(t *testing.T) {
	var form map[string]string
	engine, audio := remoteEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		form = map[string]string{
			"model":           r.FormValue("model"),
			"response_format": r.FormValue("response_format"),
		}
		writeJSON(w, http.StatusOK, `{"text":"Touch red. Good job!","language":"english","duration":6.2,
			"segments":[{"id":0,"start":0.0,"end":2.1,"text":" Touch red."},{"id":1,"start":2.4,"end":6.2,"text":" Good job!"}]}`)
	})

	result, err := engine.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if form["model"] != "whisper-1" || form["response_format"] != "verbose_json" {
		t.Fatalf("unexpected request form %v", form)
	}
	if result.Method != transcription.MethodRemote || result.Language != "en" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Segments) != 2 || result.Segments[1].Start != 2.4 || result.Segments[1].Text != "Good job!" {
		t.Fatalf("unexpected segments %+v", result.Segments)
	}
}

func TestRemoteTranscribeToleratesMissingSegments(t *testing.T) {
	engine, audio := remoteEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"text":"hello there","language":"en"}`)
	})

	result, err := engine.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(result.Segments) != 0 || result.Text != "hello there" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRemoteTranscribeHTTPFailure(t *testing.T) {
	engine, audio := remoteEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	})

	_, err := engine.Transcribe(context.Background(), audio)
	if !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected remote service error, got %v", err)
	}
	if !strings.Contains(err.Error(), "http 401") {
		t.Fatalf("expected status in message, got %v", err)
	}
}

func TestRemoteTranscribeMalformedBody(t *testing.T) {
	engine, audio := remoteEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"text":`)
	})

	if _, err := engine.Transcribe(context.Background(), audio); !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected remote service error, got %v", err)
	}
}

func TestRemoteTranscribeMissingAudio(t *testing.T) {
	engine, _ := remoteEngine(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})
	if _, err := engine.Transcribe(context.Background(), "/nonexistent/audio.wav"); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}
