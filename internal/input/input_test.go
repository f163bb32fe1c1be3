package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadTextFromStdin(t *testing.T) {
	got, err := ReadText(Stdin, strings.NewReader("男：はい。"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "男：はい。" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestReadTextMissingFile(t *testing.T) {
	if _, err := ReadText(filepath.Join(t.TempDir(), "missing.txt"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadLinesKeepsBlankPositions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.txt")
	if err := os.WriteFile(path, []byte("はい\r\n\nそうです\n\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines, err := LoadLines(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"はい", "", "そうです"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestLoadLinesEmpty(t *testing.T) {
	if _, err := LoadLines(Stdin, strings.NewReader("\n \n")); err == nil {
		t.Fatalf("expected error for empty answers")
	}
}
