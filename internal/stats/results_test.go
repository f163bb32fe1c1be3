package stats

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/verte-zerg/kikitori/internal/grade"
	"github.com/verte-zerg/kikitori/internal/model"
)

func sampleResults(t *testing.T) []grade.Result {
	t.Helper()
	records := []model.Record{
		{Text: "わかりました", Speaker: model.SpeakerMale},
		{Text: "これは何ですか", Speaker: model.SpeakerFemale},
		{Text: "本です"},
	}
	results, err := grade.Grade(context.Background(), records, []string{"わかりますた", "これは何ですか"}, 1)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	return results
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleResults(t))
	if sum.Total != 3 || sum.Checked != 2 || sum.Correct != 1 || sum.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	want := (5.0/6.0*100 + 100) / 2
	if sum.MeanAccuracy != want {
		t.Fatalf("expected mean accuracy %v, got %v", want, sum.MeanAccuracy)
	}
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderResults(&buf, sampleResults(t)); err != nil {
		t.Fatalf("render results: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"Accuracy", "83.3%", "wrong", "100.0%", "ok", "skipped", "した"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("expected %q in output:\n%s", needle, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Summary{}); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No records found." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderRecords(t *testing.T) {
	var buf bytes.Buffer
	err := RenderRecords(&buf, []model.Record{
		{Text: "これは何ですか。", Speaker: model.SpeakerFemale, Translation: "这是什么？"},
		{Text: "本です。"},
	})
	if err != nil {
		t.Fatalf("render records: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", lines)
	}
	if !strings.Contains(lines[1], "female") || !strings.Contains(lines[1], "这是什么？") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2 -") {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
}
