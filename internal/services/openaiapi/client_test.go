package openaiapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"

	"starreview/internal/services"
	"starreview/internal/services/openaiapi"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := openaiapi.NewClient(openaiapi.Config{APIKey: "  "})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClientForwardsHeadersAndReportsStatus(t *testing.T) {
	var gotAuth, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := openaiapi.NewClient(openaiapi.Config{APIKey: "sk-test", BaseURL: server.URL, Title: "starreview"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
		Model:    openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage("ping")},
	})
	if err == nil {
		t.Fatal("expected error from 502 response")
	}
	status, ok := openaiapi.StatusCode(err)
	if !ok || status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d (ok=%v)", status, ok)
	}
	if gotAuth != "Bearer sk-test" || gotTitle != "starreview" {
		t.Fatalf("unexpected headers auth=%q title=%q", gotAuth, gotTitle)
	}
}

func TestStatusCodeIgnoresPlainErrors(t *testing.T) {
	if _, ok := openaiapi.StatusCode(errors.New("dial tcp: refused")); ok {
		t.Fatal("expected no status for transport error")
	}
}
