// Package export reads and writes transcripts as YAML.
package export

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/kikitori/internal/model"
)

type document struct {
	Title   string   `yaml:"title"`
	Source  string   `yaml:"source,omitempty"`
	Records []record `yaml:"records"`
}

type record struct {
	Text        string `yaml:"text"`
	Speaker     string `yaml:"speaker,omitempty"`
	Translation string `yaml:"translation,omitempty"`
}

// Encode writes tr as a YAML document.
func Encode(w io.Writer, tr model.Transcript) error {
	doc := document{
		Title:   tr.Title,
		Source:  tr.Source,
		Records: make([]record, 0, len(tr.Records)),
	}
	for _, rec := range tr.Records {
		doc.Records = append(doc.Records, record{
			Text:        rec.Text,
			Speaker:     rec.Speaker.String(),
			Translation: rec.Translation,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML transcript. Records with blank text are rejected.
func Decode(r io.Reader) (model.Transcript, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return model.Transcript{}, fmt.Errorf("transcript document is empty")
		}
		return model.Transcript{}, fmt.Errorf("failed to decode transcript: %w", err)
	}
	tr := model.Transcript{
		Title:   strings.TrimSpace(doc.Title),
		Source:  doc.Source,
		Records: make([]model.Record, 0, len(doc.Records)),
	}
	for i, rec := range doc.Records {
		speaker, err := model.ParseSpeaker(strings.TrimSpace(rec.Speaker))
		if err != nil {
			return model.Transcript{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		text := strings.TrimSpace(rec.Text)
		if text == "" {
			return model.Transcript{}, fmt.Errorf("record %d: text is empty", i+1)
		}
		tr.Records = append(tr.Records, model.Record{
			Text:        text,
			Speaker:     speaker,
			Translation: strings.TrimSpace(rec.Translation),
		})
	}
	return tr, nil
}
