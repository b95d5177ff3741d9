package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"starreview/internal/store"
	"starreview/internal/testsupport"
	"starreview/internal/workflow"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("STARREVIEW_STATE_DIR", filepath.Join(base, "state"))
	t.Setenv("STARREVIEW_WORK_DIR", filepath.Join(base, "work"))
	t.Setenv("STARREVIEW_LOG_DIR", filepath.Join(base, "logs"))
	t.Setenv("STARREVIEW_OPENAI_API_KEY", "")
	t.Setenv("STARREVIEW_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	return &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "missing.toml"),
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v (stderr: %s)", args, err, stderr)
	}
	return out
}

func (e *cliTestEnv) addVideo(t *testing.T, name string, extra ...string) string {
	t.Helper()
	path := filepath.Join(e.baseDir, "videos", name)
	testsupport.WriteVideo(t, path)
	return e.mustRun(t, append([]string{"video", "add", path}, extra...)...)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestVideoAddAndList(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.addVideo(t, "morning_circle-time.mp4", "--category", "pivotal-response")
	requireContains(t, out, "Added video 1: Morning Circle Time (pivotal_response")

	out = env.addVideo(t, "snack.mp4", "--title", "Snack Routine")
	requireContains(t, out, "Added video 2: Snack Routine (none")

	out = env.mustRun(t, "video", "list")
	requireContains(t, out, "Morning Circle Time")
	requireContains(t, out, "Snack Routine")

	out = env.mustRun(t, "video", "list", "--status", "analyzed")
	requireContains(t, out, "No videos registered")

	if _, _, err := env.run(t, "video", "add", filepath.Join(env.baseDir, "missing.mp4")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, _, err := env.run(t, "video", "add", filepath.Join(env.baseDir, "videos", "snack.mp4"), "--category", "music"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestPracticesImportAndList(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "practices", "list")
	requireContains(t, out, "Catalog is empty")

	out = env.mustRun(t, "practices", "import", "--default")
	requireContains(t, out, "Imported 40 practices")

	// Re-importing updates in place.
	out = env.mustRun(t, "practices", "import", "--default")
	requireContains(t, out, "Imported 40 practices")

	out = env.mustRun(t, "practices", "list", "--category", "pivotal_response", "--json")
	var listed []map[string]any
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode practices json: %v\n%s", err, out)
	}
	if len(listed) == 0 {
		t.Fatal("expected pivotal response practices")
	}
	for _, item := range listed {
		if item["category"] != "pivotal_response" {
			t.Fatalf("unexpected category in %+v", item)
		}
	}

	if _, _, err := env.run(t, "practices", "import"); err == nil {
		t.Fatal("expected error without a file or --default")
	}
}

func TestPracticesImportFromYAML(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "catalog.yaml")
	body := `practices:
  - category: discrete_trial
    title: Clear Instruction
    description: Gives one short instruction per trial.
    polarity: positive
  - category: discrete_trial
    title: Repeated Prompt
    description: Repeats the instruction before the child can respond.
    is_positive: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	out := env.mustRun(t, "practices", "import", path)
	requireContains(t, out, "Imported 2 practices")

	out = env.mustRun(t, "practices", "list")
	requireContains(t, out, "Repeated Prompt")
	requireContains(t, out, "negative")
}

func TestAnnotationsAddAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addVideo(t, "session.mp4")

	out := env.mustRun(t, "annotations", "list", "1")
	requireContains(t, out, "No annotations")

	out = env.mustRun(t, "annotations", "add", "1", "--at", "75.5", "--comment", "Nice pacing between trials", "--positive")
	requireContains(t, out, "at 1:15")

	out = env.mustRun(t, "annotations", "list", "1", "--json")
	var listed []store.Annotation
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode annotations json: %v\n%s", err, out)
	}
	if len(listed) != 1 || listed[0].AIGenerated || listed[0].Status != store.AnnotationApproved || !listed[0].Positive {
		t.Fatalf("unexpected annotations %+v", listed)
	}

	if _, _, err := env.run(t, "annotations", "add", "1", "--comment", "no time"); err == nil {
		t.Fatal("expected error without --at")
	}
	if _, _, err := env.run(t, "annotations", "add", "1", "--at", "3", "--comment", " "); err == nil {
		t.Fatal("expected error for blank comment")
	}
	if _, _, err := env.run(t, "annotations", "list", "9"); err == nil {
		t.Fatal("expected error for unknown video")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addVideo(t, "session.mp4")

	out := env.mustRun(t, "status", "1", "--json")
	var report workflow.StatusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status json: %v\n%s", err, out)
	}
	if report.VideoID != 1 || report.Status != store.VideoUploaded || report.HasTranscript {
		t.Fatalf("unexpected report %+v", report)
	}

	out = env.mustRun(t, "status", "1")
	requireContains(t, out, "[INFO] uploaded")
	requireContains(t, out, "Transcript:")

	out = env.mustRun(t, "status")
	requireContains(t, out, "uploaded:")

	if _, _, err := env.run(t, "status", "abc"); err == nil {
		t.Fatal("expected error for invalid id")
	}
}

func TestTranscriptShowRequiresAnalysis(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addVideo(t, "session.mp4")

	_, _, err := env.run(t, "transcript", "show", "1")
	if err == nil {
		t.Fatal("expected error before analysis")
	}
	requireContains(t, err.Error(), "has no transcript")
}

func TestAnalyzeRejectsUnknownVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "analyze", "99", "--skip-preflight")
	if err == nil {
		t.Fatal("expected error for unknown video")
	}
	requireContains(t, err.Error(), "video 99 not found")

	if _, _, err := env.run(t, "analyze", "1", "--mode", "turbo"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, _, err := env.run(t, "analyze", "1", "--workers", "0"); err == nil {
		t.Fatal("expected error for zero workers")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-1234567890")

	target := filepath.Join(env.baseDir, "config.toml")
	out := env.mustRun(t, "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out = env.mustRun(t, "config", "show")
	requireContains(t, out, "sk-t****7890")
	if strings.Contains(out, "sk-test-1234567890") {
		t.Fatalf("config show leaked the api key:\n%s", out)
	}

	out = env.mustRun(t, "config", "validate")
	requireContains(t, out, "Configuration valid")
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:      "0:00",
		-4:     "0:00",
		59.9:   "0:59",
		75.5:   "1:15",
		3725.2: "1:02:05",
	}
	for in, want := range cases {
		if got := formatTimestamp(in); got != want {
			t.Fatalf("formatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
	if formatDuration(0) != "-" {
		t.Fatal("expected dash for unknown duration")
	}
}

func TestMaskSecret(t *testing.T) {
	if maskSecret("") != "" || maskSecret("short") != "****" {
		t.Fatal("unexpected mask for short values")
	}
	if got := maskSecret("abcd-middle-wxyz"); got != "abcd****wxyz" {
		t.Fatalf("maskSecret = %q", got)
	}
}

func TestParseVideoIDsDeduplicates(t *testing.T) {
	ids, err := parseVideoIDs([]string{"3", "1", "3"})
	if err != nil {
		t.Fatalf("parseVideoIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if _, err := parseVideoIDs([]string{"0"}); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestLogsFiltersByVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	logDir := filepath.Join(env.baseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	content := "2026-01-01T00:00:00Z INFO workflow-runner [video=3 stage=transcribing]: stage started\n" +
		"2026-01-01T00:00:01Z INFO workflow-runner [video=4 stage=transcribing]: stage started\n"
	if err := os.WriteFile(filepath.Join(logDir, "starreview.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := env.mustRun(t, "logs", "--video", "3", "-n", "10")
	requireContains(t, out, "video=3")
	if strings.Contains(out, "video=4") {
		t.Fatalf("expected video 4 lines filtered out, got %q", out)
	}

	if _, _, err := env.run(t, "logs", "--video=-2"); err == nil {
		t.Fatal("expected error for negative video id")
	}
}

func TestTestNotifyDisabledByDefault(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("STARREVIEW_NTFY_TOPIC", "")
	out := env.mustRun(t, "test-notify")
	requireContains(t, out, "Notifications are disabled")
}
