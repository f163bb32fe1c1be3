package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kikitori/internal/diff"
)

const missingRune = '_'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

func newStyledRune(r rune, style lipgloss.Style) styledRune {
	return styledRune{
		s:       style.Render(string(r)),
		width:   runewidth.RuneWidth(r),
		isSpace: r == ' ',
	}
}

// buildAnswerRunes renders the learner's side of a comparison. Deletions
// show as a placeholder so the drift stays visible.
func buildAnswerRunes(cells []diff.Cell) []styledRune {
	out := make([]styledRune, 0, len(cells))
	for _, cell := range cells {
		switch cell.Op {
		case diff.Match:
			out = append(out, newStyledRune(cell.User, correctStyle))
		case diff.Substitution:
			out = append(out, newStyledRune(cell.User, incorrectStyle))
		case diff.Insertion:
			out = append(out, newStyledRune(cell.User, extraStyle))
		case diff.Deletion:
			out = append(out, newStyledRune(missingRune, missingStyle))
		}
	}
	return out
}

// buildReferenceRunes renders the reference side. Insertions have no
// reference character and are skipped.
func buildReferenceRunes(cells []diff.Cell) []styledRune {
	out := make([]styledRune, 0, len(cells))
	for _, cell := range cells {
		switch cell.Op {
		case diff.Match:
			out = append(out, newStyledRune(cell.Ref, correctStyle))
		case diff.Substitution:
			out = append(out, newStyledRune(cell.Ref, incorrectStyle))
		case diff.Deletion:
			out = append(out, newStyledRune(cell.Ref, missingStyle))
		}
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks at the last space when one exists on the line and
// hard-wraps otherwise, which is the common case for Japanese text.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
