package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kikitori/internal/config"
	"github.com/verte-zerg/kikitori/internal/diff"
	"github.com/verte-zerg/kikitori/internal/export"
	"github.com/verte-zerg/kikitori/internal/grade"
	"github.com/verte-zerg/kikitori/internal/input"
	"github.com/verte-zerg/kikitori/internal/model"
	"github.com/verte-zerg/kikitori/internal/speech"
	"github.com/verte-zerg/kikitori/internal/stats"
	"github.com/verte-zerg/kikitori/internal/store"
)

var (
	splitFile   string
	splitFormat string

	gradeFile    string
	gradeAnswers string

	exportOut string

	speakSpeaker string
)

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Segment a transcript and print its records",
		Args:  cobra.NoArgs,
		RunE:  runSplitCmd,
	}
	cmd.Flags().StringVar(&splitFile, "file", input.Stdin, "transcript file ('-' for stdin)")
	cmd.Flags().StringVar(&splitFormat, "format", defaultSplitFormat, "output format (table|yaml)")
	return cmd
}

func runSplitCmd(cmd *cobra.Command, _ []string) error {
	tr, err := readTranscript(splitFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch strings.ToLower(splitFormat) {
	case "table":
		return stats.RenderRecords(out, tr.Records)
	case "yaml":
		return export.Encode(out, tr)
	default:
		return fmt.Errorf("unknown format %q (want table or yaml)", splitFormat)
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check REFERENCE ANSWER",
		Short: "Compare one answer with its reference",
		Args:  cobra.ExactArgs(2),
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	reference := strings.TrimSpace(args[0])
	answer := strings.TrimSpace(args[1])
	if answer == "" {
		return fmt.Errorf("answer is empty")
	}
	rep := diff.Compare(answer, reference)
	windows, ok := diff.ReplayWindows(rep, reference)
	return renderCheck(cmd.OutOrStdout(), rep, windows, ok, reference, stdoutIsTerminal())
}

var (
	checkMatchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	checkErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	checkMissingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Underline(true)
)

// renderCheck prints both lines of a comparison. With color the cells are
// styled; without it a caret line marks each error column.
func renderCheck(w io.Writer, rep diff.Report, windows diff.Windows, hasWindows bool, reference string, color bool) error {
	var you, ref, marks strings.Builder
	for _, cell := range rep.Cells {
		userRune, refRune := cell.User, cell.Ref
		if cell.Op == diff.Insertion {
			refRune = ' '
		}
		if cell.Op == diff.Deletion {
			userRune = missingGlyph(refRune)
		}
		width := max(runewidth.RuneWidth(userRune), runewidth.RuneWidth(refRune))
		userText := runewidth.FillRight(string(userRune), width)
		refText := runewidth.FillRight(string(refRune), width)
		if color {
			switch cell.Op {
			case diff.Match:
				userText = checkMatchStyle.Render(userText)
			case diff.Deletion:
				userText = checkMissingStyle.Render(userText)
			default:
				userText = checkErrorStyle.Render(userText)
			}
		}
		you.WriteString(userText)
		ref.WriteString(refText)
		mark := " "
		if cell.Op != diff.Match {
			mark = "^"
		}
		marks.WriteString(runewidth.FillRight(mark, width))
	}

	status := "correct"
	if !rep.Correct {
		status = "incorrect"
	}
	lines := []string{
		"you: " + you.String(),
		"ref: " + ref.String(),
	}
	if !color && !rep.Correct {
		lines = append(lines, strings.TrimRight("     "+marks.String(), " "))
	}
	lines = append(lines, fmt.Sprintf("accuracy: %.1f%% (%s)", rep.Accuracy, status))
	if hasWindows {
		lines = append(lines,
			formatWindow("error-span", windows.ErrorSpan, reference),
			formatWindow("to-particle", windows.ErrorToParticle, reference),
			formatWindow("short-play", windows.ShortPlay, reference),
		)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func missingGlyph(ref rune) rune {
	if runewidth.RuneWidth(ref) == 2 {
		return '＿'
	}
	return '_'
}

func formatWindow(label string, win diff.Window, reference string) string {
	return fmt.Sprintf("%-12s [%d,%d] %s", label+":", win.Start, win.End, win.Slice(reference))
}

func newGradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Check a file of answers, one per line, against a transcript",
		Args:  cobra.NoArgs,
		RunE:  runGradeCmd,
	}
	cmd.Flags().StringVar(&gradeFile, "file", "", "transcript file")
	cmd.Flags().StringVar(&gradeAnswers, "answers", "", "answers file ('-' for stdin)")
	cmd.Flags().IntVar(&practiceWorkers, "workers", defaultWorkers, "parallel checks (0 = all CPUs)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func runGradeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := buildConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if gradeFile == input.Stdin && gradeAnswers == input.Stdin {
		return fmt.Errorf("--file and --answers cannot both read stdin")
	}
	tr, err := readTranscript(gradeFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	answers, err := input.LoadLines(gradeAnswers, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	if len(answers) > len(tr.Records) {
		logErrf("ignoring %d answers past the last record\n", len(answers)-len(tr.Records))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, err := grade.Grade(ctx, tr.Records, answers, cfg.Workers)
	if err != nil {
		return fmt.Errorf("failed to grade answers: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderResults(out, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSummary(out, stats.Summarize(results)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage saved transcripts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(st *store.Store) error {
				list, err := st.ListTranscripts(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list transcripts: %w", err)
				}
				return stats.RenderTranscripts(cmd.OutOrStdout(), list)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Print the records of a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTranscript(cmd.Context(), args[0], func(_ *store.Store, tr model.Transcript) error {
				return stats.RenderRecords(cmd.OutOrStdout(), tr.Records)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(func(st *store.Store) error {
				if err := st.DeleteTranscript(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete transcript: %w", err)
				}
				logErrf("Deleted transcript %d\n", id)
				return nil
			})
		},
	})

	exportCmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a saved transcript as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTranscript(cmd.Context(), args[0], func(_ *store.Store, tr model.Transcript) error {
				return writeExport(cmd.OutOrStdout(), exportOut, tr)
			})
		},
	}
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	cmd.AddCommand(exportCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "import PATH",
		Short: "Save a YAML transcript to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := readExport(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withStore(func(st *store.Store) error {
				id, err := st.SaveTranscript(cmd.Context(), tr.Title, tr.Source, tr.Records)
				if err != nil {
					return fmt.Errorf("failed to save transcript: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", id)
				return err
			})
		},
	})

	return cmd
}

func withStore(fn func(*store.Store) error) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(st)
}

func withTranscript(ctx context.Context, rawID string, fn func(*store.Store, model.Transcript) error) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		tr, err := st.LoadTranscript(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("transcript %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load transcript: %w", err)
		}
		return fn(st, tr)
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transcript id %q", raw)
	}
	return id, nil
}

func writeExport(stdout io.Writer, path string, tr model.Transcript) (err error) {
	if path == "" || path == input.Stdin {
		return export.Encode(stdout, tr)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return export.Encode(file, tr)
}

func readExport(path string, stdin io.Reader) (model.Transcript, error) {
	var r io.Reader = stdin
	if path != input.Stdin {
		file, err := os.Open(path)
		if err != nil {
			return model.Transcript{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() {
			_ = file.Close()
		}()
		r = file
	}
	tr, err := export.Decode(r)
	if err != nil {
		return model.Transcript{}, err
	}
	if len(tr.Records) == 0 {
		return model.Transcript{}, fmt.Errorf("%s has no records", displayPath(path))
	}
	if tr.Title == "" {
		tr.Title = "imported"
	}
	return tr, nil
}

func newSpeakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speak TEXT",
		Short: "Speak text with the configured voice",
		Args:  cobra.ExactArgs(1),
		RunE:  runSpeakCmd,
	}
	cmd.Flags().StringVar(&speakSpeaker, "speaker", "", "speaker voice (male|female)")
	return cmd
}

func runSpeakCmd(cmd *cobra.Command, args []string) error {
	speaker, err := model.ParseSpeaker(strings.ToLower(strings.TrimSpace(speakSpeaker)))
	if err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := buildConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	player := speech.NewPlayer(cfg.Voice, setupLogger(fileCfg))
	if err := player.Play(ctx, args[0], speaker); err != nil {
		return fmt.Errorf("failed to speak: %w", err)
	}
	return nil
}
