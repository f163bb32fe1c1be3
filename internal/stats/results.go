// Package stats summarizes and renders check results.
package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/kikitori/internal/grade"
	"github.com/verte-zerg/kikitori/internal/model"
)

// Summary aggregates a batch of results.
type Summary struct {
	Total        int
	Checked      int
	Correct      int
	Skipped      int
	MeanAccuracy float64
}

// Summarize counts results and averages accuracy over checked answers.
func Summarize(results []grade.Result) Summary {
	sum := Summary{Total: len(results)}
	var totalAcc float64
	for _, res := range results {
		if res.Skipped {
			sum.Skipped++
			continue
		}
		sum.Checked++
		totalAcc += res.Report.Accuracy
		if res.Report.Correct {
			sum.Correct++
		}
	}
	if sum.Checked > 0 {
		sum.MeanAccuracy = totalAcc / float64(sum.Checked)
	}
	return sum
}

// RenderSummary prints a summary block.
func RenderSummary(w io.Writer, sum Summary) error {
	if sum.Total == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Records: %d", sum.Total),
		fmt.Sprintf("Checked: %d", sum.Checked),
		fmt.Sprintf("Correct: %d", sum.Correct),
		fmt.Sprintf("Skipped: %d", sum.Skipped),
		fmt.Sprintf("Avg Accuracy: %.1f%%", sum.MeanAccuracy),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderResults prints one row per result with the replay span text.
func RenderResults(w io.Writer, results []grade.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	headers := []string{"#", "Speaker", "Accuracy", "Status", "Replay", "Text"}
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "skipped"
		accuracy := "-"
		replay := ""
		if !res.Skipped {
			accuracy = fmt.Sprintf("%.1f%%", res.Report.Accuracy)
			status = "wrong"
			if res.Report.Correct {
				status = "ok"
			}
			if res.HasWindows {
				replay = res.Windows.ShortPlay.Slice(res.Record.Text)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", res.Index+1),
			speakerLabel(res.Record.Speaker),
			accuracy,
			status,
			replay,
			res.Record.Text,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true}))
}

// RenderRecords prints segmented records.
func RenderRecords(w io.Writer, records []model.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	headers := []string{"#", "Speaker", "Text", "Translation"}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			speakerLabel(rec.Speaker),
			rec.Text,
			rec.Translation,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true}))
}

// RenderTranscripts prints saved transcript summaries.
func RenderTranscripts(w io.Writer, list []model.TranscriptSummary) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No saved transcripts.")
		return err
	}
	headers := []string{"ID", "Title", "Records", "Updated"}
	rows := make([][]string, 0, len(list))
	for _, sum := range list {
		rows = append(rows, []string{
			fmt.Sprintf("%d", sum.ID),
			sum.Title,
			fmt.Sprintf("%d", sum.RecordCount),
			sum.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true}))
}

func speakerLabel(s model.Speaker) string {
	if !s.Resolved() {
		return "-"
	}
	return s.String()
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
