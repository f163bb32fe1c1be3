package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kikitori/internal/diff"
)

func TestBuildAnswerRunesStyles(t *testing.T) {
	rep := diff.Compare("わかりますたね", "わかりました")
	runes := buildAnswerRunes(rep.Cells)
	if len(runes) != 7 {
		t.Fatalf("expected 7 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("わ") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[4].s != incorrectStyle.Render("す") {
		t.Fatalf("expected incorrect style for substituted rune")
	}
	if runes[6].s != extraStyle.Render("ね") {
		t.Fatalf("expected extra style for inserted rune")
	}
	if runes[0].width != 2 {
		t.Fatalf("expected full-width rune, got width %d", runes[0].width)
	}
}

func TestBuildAnswerRunesDeletionPlaceholder(t *testing.T) {
	rep := diff.Compare("わか", "わかる")
	runes := buildAnswerRunes(rep.Cells)
	if runes[2].s != missingStyle.Render(string(missingRune)) {
		t.Fatalf("expected placeholder for deleted rune")
	}
}

func TestBuildReferenceRunesSkipsInsertions(t *testing.T) {
	rep := diff.Compare("はいはい", "はい")
	runes := buildReferenceRunes(rep.Cells)
	if len(runes) != 2 {
		t.Fatalf("expected 2 reference runes, got %d", len(runes))
	}
	rep = diff.Compare("は", "はい")
	runes = buildReferenceRunes(rep.Cells)
	if runes[1].s != missingStyle.Render("い") {
		t.Fatalf("expected missing style for deleted reference rune")
	}
}

func TestWrapStyledRunesHardWrapsFullWidth(t *testing.T) {
	runes := make([]styledRune, 0, 5)
	for _, r := range "あいうえお" {
		runes = append(runes, newStyledRune(r, lipgloss.NewStyle()))
	}
	out := wrapStyledRunes(runes, 4)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "あい" || lines[2] != "お" {
		t.Fatalf("unexpected wrap: %q", lines)
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	runes := make([]styledRune, 0, 9)
	for _, r := range "one two x" {
		runes = append(runes, newStyledRune(r, lipgloss.NewStyle()))
	}
	out := wrapStyledRunes(runes, 6)
	if out != "one\ntwo x" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}
