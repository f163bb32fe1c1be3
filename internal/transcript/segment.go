package transcript

import (
	"strings"
	"unicode/utf8"
)

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

func isSentenceFinal(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

// Segment splits raw text into utterances. Line breaks are dropped first so
// a sentence wrapped across lines stays whole. Breaks fall after 。！？ and
// before every speaker marker; fragments are trimmed and empty ones dropped.
func Segment(raw string) []string {
	text := strings.TrimSpace(lineBreaks.Replace(raw))
	if text == "" {
		return nil
	}
	var out []string
	for _, sentence := range splitAfterFinal(text) {
		for _, fragment := range splitBeforeMarkers(sentence) {
			if fragment = strings.TrimSpace(fragment); fragment != "" {
				out = append(out, fragment)
			}
		}
	}
	return out
}

func splitAfterFinal(text string) []string {
	var parts []string
	start := 0
	for i, r := range text {
		if isSentenceFinal(r) {
			end := i + utf8.RuneLen(r)
			parts = append(parts, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

func splitBeforeMarkers(sentence string) []string {
	var parts []string
	start := 0
	for i := range sentence {
		if i == start {
			continue
		}
		if _, _, ok := markerAt(sentence, i); ok {
			parts = append(parts, sentence[start:i])
			start = i
		}
	}
	return append(parts, sentence[start:])
}
