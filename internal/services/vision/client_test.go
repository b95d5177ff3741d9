package vision_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"starreview/internal/services"
	"starreview/internal/services/openaiapi"
	"starreview/internal/services/vision"
)

type capturedRequest struct {
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ImageURL struct {
		URL    string `json:"url"`
		Detail string `json:"detail"`
	} `json:"image_url"`
}

func newVisionClient(t *testing.T, handler http.HandlerFunc) *vision.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	api, err := openaiapi.NewClient(openaiapi.Config{APIKey: "sk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return vision.NewClient(api, vision.Config{Temperature: 0.3})
}

func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
}

func TestCompleteJSONSendsLabelledFrames(t *testing.T) {
	var got capturedRequest
	client := newVisionClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		chatReply(w, `{"visual_observations":[]}`)
	})

	images := []vision.Image{
		{Number: 1, Timestamp: 0, JPEG: []byte{0xFF, 0xD8, 0x01}},
		{Number: 3, Timestamp: 4.5, JPEG: []byte{0xFF, 0xD8, 0x02}},
	}
	content, err := client.CompleteJSON(context.Background(), "system prompt", "analyze these", images)
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if content != `{"visual_observations":[]}` {
		t.Fatalf("unexpected content %q", content)
	}
	if got.Model != vision.DefaultModel || got.Temperature != 0.3 || got.ResponseFormat.Type != "json_object" {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(got.Messages))
	}
	var parts []contentPart
	if err := json.Unmarshal(got.Messages[1].Content, &parts); err != nil {
		t.Fatalf("decode user parts: %v", err)
	}
	if len(parts) != 5 {
		t.Fatalf("expected prompt plus two label/image pairs, got %d parts", len(parts))
	}
	if parts[3].Text != "Frame 3 (4.5s):" {
		t.Fatalf("unexpected frame label %q", parts[3].Text)
	}
	img := parts[4]
	if img.Type != "image_url" || img.ImageURL.Detail != "low" || !strings.HasPrefix(img.ImageURL.URL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected image part %+v", img)
	}
}

func TestCompleteJSONRequiresFrames(t *testing.T) {
	client := newVisionClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})
	if _, err := client.CompleteJSON(context.Background(), "s", "p", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteJSONClassifiesFailures(t *testing.T) {
	failing := newVisionClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"image too large"}}`))
	})
	frame := []vision.Image{{Number: 1, JPEG: []byte{0xFF, 0xD8}}}
	if _, err := failing.CompleteJSON(context.Background(), "s", "p", frame); !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected remote service error, got %v", err)
	}

	empty := newVisionClient(t, func(w http.ResponseWriter, _ *http.Request) {
		chatReply(w, "")
	})
	if _, err := empty.CompleteJSON(context.Background(), "s", "p", frame); !errors.Is(err, services.ErrAnalysisService) {
		t.Fatalf("expected analysis service error, got %v", err)
	}
}

func TestDataURL(t *testing.T) {
	if got := vision.DataURL([]byte("hi")); got != "data:image/jpeg;base64,aGk=" {
		t.Fatalf("unexpected data url %q", got)
	}
}
