// Package transcript splits raw practice text into speaker-tagged records.
package transcript

import (
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/kikitori/internal/model"
)

// markerGlyphs maps each recognized marker glyph to its speaker. Female has
// compatibility and Kangxi look-alikes that some input methods emit; male has
// no look-alike code point in Unicode.
var markerGlyphs = map[rune]model.Speaker{
	'男':      model.SpeakerMale,
	'女':      model.SpeakerFemale,
	'\uF981': model.SpeakerFemale, // CJK COMPATIBILITY IDEOGRAPH-F981
	'\u2F25': model.SpeakerFemale, // KANGXI RADICAL WOMAN
}

func isMarkerColon(r rune) bool {
	return r == ':' || r == '：'
}

// markerAt reports whether a speaker marker starts at s[i:], returning the
// speaker and the marker's byte length.
func markerAt(s string, i int) (model.Speaker, int, bool) {
	glyph, glyphLen := utf8.DecodeRuneInString(s[i:])
	speaker, ok := markerGlyphs[glyph]
	if !ok {
		return model.SpeakerUnset, 0, false
	}
	colon, colonLen := utf8.DecodeRuneInString(s[i+glyphLen:])
	if !isMarkerColon(colon) {
		return model.SpeakerUnset, 0, false
	}
	return speaker, glyphLen + colonLen, true
}

// Extract strips a speaker marker anchored at the start of utterance.
// Without a marker the trimmed utterance is returned with an unset speaker.
func Extract(utterance string) model.Record {
	if utterance != "" {
		if speaker, n, ok := markerAt(utterance, 0); ok {
			return model.Record{
				Text:    strings.TrimSpace(utterance[n:]),
				Speaker: speaker,
			}
		}
	}
	return model.Record{Text: strings.TrimSpace(utterance)}
}

// Backfill gives every unset record after the first the speaker of the
// nearest earlier record that has one. Records with no resolved predecessor
// stay unset. The input slice is not modified.
func Backfill(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	copy(out, records)
	for i := 1; i < len(out); i++ {
		if out[i].Speaker.Resolved() {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if out[j].Speaker.Resolved() {
				out[i].Speaker = out[j].Speaker
				break
			}
		}
	}
	return out
}

// Parse segments raw text and returns speaker-tagged records. A fragment
// holding only a marker yields no record and lends no speaker to back-fill.
func Parse(raw string) []model.Record {
	utterances := Segment(raw)
	records := make([]model.Record, 0, len(utterances))
	for _, u := range utterances {
		rec := Extract(u)
		if rec.Text == "" {
			continue
		}
		records = append(records, rec)
	}
	return Backfill(records)
}
