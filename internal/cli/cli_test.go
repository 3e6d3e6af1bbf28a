package cli

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"testing"

	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/worker"
)

// recordingDrafter records the paths it was asked to draft
type recordingDrafter struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingDrafter) ProcessFile(ctx context.Context, path string) (*model.DraftResult, error) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	return &model.DraftResult{Source: path}, nil
}

func (r *recordingDrafter) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.paths...)
	sort.Strings(out)
	return out
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/interviews/mayor.mp3", "mayor"},
		{"council meeting.m4a", "council-meeting"},
		{"q&a: part 1?.wav", "q&a_-part-1_"},
		{".mp3", "draft"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNameSet(t *testing.T) {
	names := newNameSet()
	got := []string{names.claim("mayor"), names.claim("mayor"), names.claim("chief"), names.claim("mayor")}
	want := []string{"mayor", "mayor-2", "chief", "mayor-3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestAudioFilesIn(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp3", "a.wav", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.mp3"), 0755); err != nil {
		t.Fatal(err)
	}

	paths, err := audioFilesIn(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.wav"), filepath.Join(dir, "b.mp3")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Expected %v, got %v", want, paths)
	}
}

func TestDraftInput_ListFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(list, []byte("# interviews\none.mp3\n\none.mp3\nhttps://example.com/two.wav\n"), 0644); err != nil {
		t.Fatal(err)
	}

	drafter := &recordingDrafter{}
	results, err := draftInput(context.Background(), worker.NewBatchProcessor(drafter, 2), list, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	want := []string{filepath.Join(dir, "one.mp3"), "https://example.com/two.wav"}
	if got := drafter.seen(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, err := draftInput(context.Background(), worker.NewBatchProcessor(drafter, 1), filepath.Join(dir, "missing.txt"), false); err == nil {
		t.Error("Expected error for missing list file")
	}
}

func TestDraftInput_Directory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp3", "a.wav", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	drafter := &recordingDrafter{}
	results, err := draftInput(context.Background(), worker.NewBatchProcessor(drafter, 2), dir, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].Path != filepath.Join(dir, "a.wav") {
		t.Errorf("Expected a.wav first of 2 results, got %+v", results)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"short":           "****",
		"sk-abcdefgh1234": "****1234",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestApplyEnvAPIKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("COHERE_API_KEY", "cohere-key")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "cohere"
	applyEnvAPIKeys(cfg)
	if cfg.LLM.APIKey != "cohere-key" {
		t.Errorf("Expected cohere key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Transcription.APIKey != "openai-key" {
		t.Errorf("Expected transcription to use the OpenAI key, got %q", cfg.Transcription.APIKey)
	}

	cfg = model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	applyEnvAPIKeys(cfg)
	if cfg.LLM.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Expected Ollama base URL from env, got %q", cfg.LLM.BaseURL)
	}

	cfg = model.DefaultConfig()
	cfg.LLM.APIKey = "from-file"
	applyEnvAPIKeys(cfg)
	if cfg.LLM.APIKey != "from-file" {
		t.Errorf("Expected config file key to win, got %q", cfg.LLM.APIKey)
	}
}

func TestRequireDrafter(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	if err := requireDrafter(cfg); err == nil {
		t.Error("Expected error for anthropic without key")
	}

	cfg.LLM.Provider = "ollama"
	if err := requireDrafter(cfg); err != nil {
		t.Errorf("Expected ollama to need no key, got %v", err)
	}
}
