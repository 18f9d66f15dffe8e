package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/store"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grounding of Ever Given", "Grounding-of-Ever-Given"},
		{"a/b:c?", "a_b_c"},
		{"  ", "report"},
		{strings.Repeat("x", 150), strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsQuit(t *testing.T) {
	for _, s := range []string{"quit", "EXIT", "q"} {
		if !isQuit(s) {
			t.Errorf("isQuit(%q) = false", s)
		}
	}
	if isQuit("quite") {
		t.Error("isQuit(quite) = true")
	}
}

func TestExtractInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.txt")
	if err := os.WriteFile(path, []byte("The ship grounded."), 0644); err != nil {
		t.Fatal(err)
	}

	extractFiles = []string{path}
	defer func() { extractFiles = nil }()

	inputs, err := extractInputs(strings.NewReader("ignored"), []string{"Vessel", "aground"})
	if err != nil {
		t.Fatalf("extractInputs: %v", err)
	}
	if len(inputs) != 2 || inputs[0].source != path || inputs[1].text != "Vessel aground" {
		t.Errorf("unexpected inputs %+v", inputs)
	}

	extractFiles = nil
	inputs, err = extractInputs(strings.NewReader("from stdin"), nil)
	if err != nil || len(inputs) != 1 || inputs[0].source != "stdin" {
		t.Errorf("stdin input = %+v, %v", inputs, err)
	}

	if _, err := extractInputs(strings.NewReader("  \n"), nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	resetViper(t)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	viper.Set("extraction.extractor", "matcher")
	viper.Set("llm.provider", "openai")
	viper.Set("http.timeout", "5s")
	viper.Set("no_robots", true)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Extraction.Extractor != "matcher" {
		t.Errorf("extractor = %s", cfg.Extraction.Extractor)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Error("API key not read from OPENAI_API_KEY")
	}
	if cfg.HTTP.Timeout.Seconds() != 5 {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Robots.Enabled {
		t.Error("robots should be disabled")
	}
}

func TestExtractCommand_JSON(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	db := filepath.Join(dir, "corpus.db")
	t.Setenv("HOME", dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"extract", "--format", "json", "--no-cache", "--db", db, "--save",
		"The cargo ship MV Ever Given ran aground in the Suez Canal on March 23, 2021.",
	})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("extract: %v", err)
	}

	var report model.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if report.Event.EventType != model.EventGrounding {
		t.Errorf("EventType = %s", report.Event.EventType)
	}
	if _, err := os.Stat(db); err != nil {
		t.Errorf("corpus not written: %v", err)
	}
}

const bulkCarrierText = "A bulk carrier grounded on a reef near the Great Barrier Reef yesterday morning."

func TestInteractiveCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "corpus.db")

	out, err := runCLI(t, "\n"+bulkCarrierText+"\ny\n"+bulkCarrierText+"\nn\nexit\n",
		"interactive", "--extractor", "pattern", "--format", "console", "--no-cache", "--db", db)
	if err != nil {
		t.Fatalf("interactive: %v", err)
	}

	if n := strings.Count(out, "Please enter some text."); n != 1 {
		t.Errorf("empty line should re-prompt once, got %d", n)
	}
	if n := strings.Count(out, "Enter report text: "); n != 4 {
		t.Errorf("expected 4 text prompts, got %d", n)
	}
	if n := strings.Count(out, "Show JSON output? (y/n): "); n != 2 {
		t.Errorf("expected 2 JSON prompts, got %d", n)
	}
	if n := strings.Count(out, `"event_type": "grounding"`); n != 1 {
		t.Errorf("JSON should be printed only after y, got %d copies\n%s", n, out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "Goodbye.") {
		t.Errorf("expected Goodbye at the end, got\n%s", out)
	}
}

func TestInteractiveCommand_QuitWords(t *testing.T) {
	for _, word := range []string{"quit", "exit", "q", "Q"} {
		out, err := runCLI(t, word+"\n"+bulkCarrierText+"\n",
			"interactive", "--extractor", "pattern", "--format", "console", "--no-cache")
		if err != nil {
			t.Fatalf("interactive (%s): %v", word, err)
		}
		if strings.Contains(out, "Show JSON output?") {
			t.Errorf("%q should end the loop before extracting", word)
		}
		if !strings.Contains(out, "Goodbye.") {
			t.Errorf("%q: missing Goodbye", word)
		}
	}

	// End of input also ends the loop
	out, err := runCLI(t, "", "interactive", "--extractor", "pattern", "--no-cache")
	if err != nil || !strings.Contains(out, "Goodbye.") {
		t.Errorf("EOF: %v\n%s", err, out)
	}
}

func TestCorpusCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "corpus.db")

	s, err := store.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	args := model.NewArguments(model.RoleVessel)
	args.Add(model.RoleVessel, "MV Ever Given")
	id, err := s.Save(context.Background(), &model.Report{
		Subject:     "Ever Given",
		Source:      "inline",
		ExtractedAt: time.Date(2021, 3, 23, 8, 0, 0, 0, time.UTC),
		Event: model.Event{
			Extractor:    "pattern",
			EventType:    model.EventGrounding,
			TriggerWords: []string{"ran aground"},
			Arguments:    args,
		},
		Score: model.Score{Index: 70, Confidence: "medium"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()

	out, err := runCLI(t, "", "corpus", "list", "--db", db)
	if err != nil {
		t.Fatalf("corpus list: %v", err)
	}
	for _, want := range []string{"ID", "SUBJECT", id, "grounding", "Ever Given", "2021-03-23 08:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("corpus list output missing %q\n%s", want, out)
		}
	}

	out, err = runCLI(t, "", "corpus", "show", id, "--format", "json", "--db", db)
	if err != nil {
		t.Fatalf("corpus show: %v", err)
	}
	var report model.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode show output: %v\n%s", err, out)
	}
	if report.ID != id || report.Event.Arguments[model.RoleVessel][0] != "MV Ever Given" {
		t.Errorf("unexpected report %+v", report)
	}

	out, err = runCLI(t, "", "corpus", "delete", id, "--db", db)
	if err != nil || !strings.Contains(out, "Deleted "+id) {
		t.Fatalf("corpus delete: %v\n%s", err, out)
	}

	_, err = runCLI(t, "", "corpus", "show", id, "--db", db)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("show after delete = %v, want ErrNotFound", err)
	}

	out, err = runCLI(t, "", "corpus", "list", "--db", db)
	if err != nil || !strings.Contains(out, "No reports saved yet") {
		t.Errorf("empty corpus list: %v\n%s", err, out)
	}
}

func TestDemoCommand(t *testing.T) {
	out, err := runCLI(t, "", "demo", "--extractor", "pattern", "--format", "json", "--no-cache")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	// Skip the banner before the first JSON document
	start := strings.Index(out, "{")
	if start < 0 {
		t.Fatalf("no JSON in demo output:\n%s", out)
	}

	dec := json.NewDecoder(strings.NewReader(out[start:]))
	var reports []model.Report
	for {
		var r model.Report
		if err := dec.Decode(&r); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			t.Fatalf("decode demo output: %v", err)
		}
		reports = append(reports, r)
	}

	if len(reports) != len(demoTexts) {
		t.Fatalf("expected %d reports, got %d", len(demoTexts), len(reports))
	}
	for i, r := range reports {
		if r.Source != "example-"+string(rune('1'+i)) {
			t.Errorf("report %d source = %s", i, r.Source)
		}
		if r.Event.EventType == model.EventUnknown {
			t.Errorf("report %d has no event type", i)
		}
	}
	if reports[0].Event.EventType != model.EventGrounding {
		t.Errorf("first demo event = %s, want grounding", reports[0].Event.EventType)
	}
}

// runCLI executes the root command with args, feeding stdin and capturing stdout
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	bindFlags()
	t.Cleanup(func() {
		viper.Reset()
		bindFlags()
	})
}
