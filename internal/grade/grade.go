// Package grade checks a batch of answers against transcript records.
package grade

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/kikitori/internal/diff"
	"github.com/verte-zerg/kikitori/internal/model"
)

// Result is the outcome of checking one record.
type Result struct {
	Index   int
	Record  model.Record
	Answer  string
	Skipped bool
	Report  diff.Report
	Windows diff.Windows
	// HasWindows is false when the answer was skipped or correct.
	HasWindows bool
}

// Grade compares answers[i] with records[i]. Missing or blank answers are
// marked skipped. Comparisons run on up to workers goroutines; workers <= 0
// uses GOMAXPROCS. Results are in record order.
func Grade(ctx context.Context, records []model.Record, answers []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		answer := ""
		if i < len(answers) {
			answer = strings.TrimSpace(answers[i])
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = check(i, rec, answer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func check(i int, rec model.Record, answer string) Result {
	res := Result{Index: i, Record: rec, Answer: answer}
	if answer == "" {
		res.Skipped = true
		return res
	}
	res.Report = diff.Compare(answer, rec.Text)
	res.Windows, res.HasWindows = diff.ReplayWindows(res.Report, rec.Text)
	return res
}
