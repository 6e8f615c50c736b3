package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-subtok/internal/testutil"
)

// captureStdout swaps os.Stdout for a pipe while fn runs and returns
// everything written to it. Output must fit the pipe buffer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	_ = w.Close()
	os.Stdout = orig

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(data)
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	return captureStdout(t, func() {
		root := NewRootCmd()
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("subtok %v: %v", args, err)
		}
	})
}

func TestTrainEncodeDecodeEndToEnd(t *testing.T) {
	corpus := testutil.WriteCorpusFile(t,
		"low low low low low",
		"lower lower",
		"newest newest newest newest newest newest",
		"widest widest widest",
	)
	modelPath := filepath.Join(t.TempDir(), "model.json")

	out := runCLI(t,
		"train",
		"--corpus", corpus,
		"--output", modelPath,
		"--train-vocab-size", "25",
		"--train-min-frequency", "1",
	)
	if !strings.Contains(out, "merge rules") {
		t.Errorf("train output missing summary:\n%s", out)
	}

	if _, err := os.Stat(modelPath); err != nil {
		t.Fatalf("model file not written: %v", err)
	}

	tokens := runCLI(t,
		"encode",
		"--paths-model-path", modelPath,
		"--text", "newest",
	)
	if strings.TrimSpace(tokens) == "" {
		t.Fatal("encode produced no tokens")
	}

	ids := runCLI(t,
		"encode",
		"--paths-model-path", modelPath,
		"--text", "newest",
		"--ids",
	)
	idFields := strings.Fields(ids)
	if len(idFields) == 0 {
		t.Fatal("encode --ids produced no ids")
	}

	decodeArgs := append([]string{"decode", "--paths-model-path", modelPath}, idFields...)
	text := runCLI(t, decodeArgs...)
	if strings.TrimSpace(text) != "newest" {
		t.Errorf("decoded text = %q; want %q", strings.TrimSpace(text), "newest")
	}
}

func TestTrainWordPieceEndToEnd(t *testing.T) {
	corpus := testutil.WriteCorpusFile(t,
		"low low low low low",
		"lower lower",
		"newest newest newest newest newest newest",
		"widest widest widest",
	)
	modelPath := filepath.Join(t.TempDir(), "model.json")

	runCLI(t,
		"train",
		"--corpus", corpus,
		"--output", modelPath,
		"--train-algorithm", "wordpiece",
		"--train-vocab-size", "25",
		"--train-min-frequency", "1",
	)

	tokens := runCLI(t,
		"encode",
		"--paths-model-path", modelPath,
		"--train-algorithm", "wordpiece",
		"--text", "lowest",
	)
	if strings.TrimSpace(tokens) == "" {
		t.Fatal("encode produced no tokens")
	}
}

func TestRulesCommand_JSON(t *testing.T) {
	corpus := testutil.WriteCorpusFile(t, "low low low newest newest newest")
	modelPath := filepath.Join(t.TempDir(), "model.json")

	runCLI(t,
		"train",
		"--corpus", corpus,
		"--output", modelPath,
		"--train-vocab-size", "20",
		"--train-min-frequency", "1",
	)

	out := runCLI(t,
		"rules",
		"--paths-model-path", modelPath,
		"--format", "json",
		"--limit", "3",
	)

	var rules []struct {
		Rank   int    `json:"rank"`
		Left   string `json:"left"`
		Right  string `json:"right"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("rules output is not valid JSON: %v\n%s", err, out)
	}
	if len(rules) == 0 || len(rules) > 3 {
		t.Errorf("len(rules) = %d; want within (0, 3]", len(rules))
	}
	if rules[0].Rank != 0 {
		t.Errorf("first rule rank = %d; want 0", rules[0].Rank)
	}
}

func TestEvalCommand(t *testing.T) {
	corpus := testutil.WriteCorpusFile(t, "low low low newest newest newest")
	modelPath := filepath.Join(t.TempDir(), "model.json")

	runCLI(t,
		"train",
		"--corpus", corpus,
		"--output", modelPath,
		"--train-vocab-size", "20",
		"--train-min-frequency", "1",
	)

	out := runCLI(t,
		"eval",
		"--paths-model-path", modelPath,
		"--corpus", corpus,
	)

	var report struct {
		Segments int `json:"segments"`
		Words    int `json:"words"`
		Tokens   int `json:"tokens"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("eval output is not valid JSON: %v\n%s", err, out)
	}
	if report.Segments != 1 || report.Words != 6 || report.Tokens == 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestTrainRejectsMissingCorpus(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"train", "--corpus", "/nonexistent/corpus.txt"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err == nil {
		t.Error("expected error for missing corpus file")
	}
}
