package llm_test

import (
	"strings"
	"testing"

	"starreview/internal/services/llm"
)

type annotationsReply struct {
	Annotations []struct {
		PracticeTitle string `json:"practice_title"`
	} `json:"annotations"`
}

func TestDecodeLLMJSON(t *testing.T) {
	cases := map[string]string{
		"plain":      `{"annotations":[{"practice_title":"Turn Taking"}]}`,
		"fenced":     "```json\n{\"annotations\":[{\"practice_title\":\"Turn Taking\"}]}\n```",
		"bare fence": "```\n{\"annotations\":[{\"practice_title\":\"Turn Taking\"}]}\n```",
		"with prose": "Here you go:\n{\"annotations\":[{\"practice_title\":\"Turn Taking\"}]}\nHope this helps.",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			var reply annotationsReply
			if err := llm.DecodeLLMJSON(content, &reply); err != nil {
				t.Fatalf("DecodeLLMJSON: %v", err)
			}
			if len(reply.Annotations) != 1 || reply.Annotations[0].PracticeTitle != "Turn Taking" {
				t.Fatalf("unexpected reply %+v", reply)
			}
		})
	}
}

func TestDecodeLLMJSONErrors(t *testing.T) {
	var reply annotationsReply
	if err := llm.DecodeLLMJSON("   ", &reply); err == nil || !strings.Contains(err.Error(), "empty payload") {
		t.Fatalf("expected empty payload error, got %v", err)
	}
	err := llm.DecodeLLMJSON("no json here at all", &reply)
	if err == nil || !strings.Contains(err.Error(), "payload snippet: no json here at all") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
	err = llm.DecodeLLMJSON("prefix {\"annotations\": [oops]} suffix", &reply)
	if err == nil || !strings.Contains(err.Error(), "extracted payload snippet") {
		t.Fatalf("expected extracted snippet in error, got %v", err)
	}
}
