// Package main provides the CLI entrypoint for kikitori.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/kikitori/internal/config"
	"github.com/verte-zerg/kikitori/internal/input"
	"github.com/verte-zerg/kikitori/internal/logging"
	"github.com/verte-zerg/kikitori/internal/model"
	"github.com/verte-zerg/kikitori/internal/speech"
	"github.com/verte-zerg/kikitori/internal/store"
	"github.com/verte-zerg/kikitori/internal/transcript"
	"github.com/verte-zerg/kikitori/internal/tui"
)

const (
	defaultWorkers     = 0
	defaultTimeoutSec  = 30.0
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultSplitFormat = "table"
)

var (
	practiceFile         string
	practiceLibraryID    int64
	practiceSave         string
	practiceShowOriginal bool
	practiceRate         float64
	practiceMalePitch    float64
	practiceFemalePitch  float64
	practiceWorkers      int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kikitori",
		Short:         "TUI dictation trainer for Japanese listening practice",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceFile, "file", "", "transcript file to practice ('-' for stdin)")
	rootCmd.Flags().Int64Var(&practiceLibraryID, "library", 0, "practice a saved transcript by id")
	rootCmd.Flags().StringVar(&practiceSave, "save", "", "save processed text to the library under this title")
	rootCmd.Flags().BoolVar(&practiceShowOriginal, "show-original", false, "show the reference text from the start")
	rootCmd.PersistentFlags().Float64Var(&practiceRate, "rate", speech.DefaultRate, "speech rate multiplier")
	rootCmd.PersistentFlags().Float64Var(&practiceMalePitch, "male-pitch", speech.DefaultMalePitch, "pitch multiplier for male speakers")
	rootCmd.PersistentFlags().Float64Var(&practiceFemalePitch, "female-pitch", speech.DefaultFemalePitch, "pitch multiplier for female speakers")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSplitCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGradeCmd())
	rootCmd.AddCommand(newLibraryCmd())
	rootCmd.AddCommand(newSpeakCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := buildConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	logger := setupLogger(fileCfg)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	tr, fromStdin, err := loadPracticeTranscript(cmd, st)
	if err != nil {
		return err
	}
	if tr.ID == 0 && len(tr.Records) > 0 && practiceSave != "" {
		id, err := st.SaveTranscript(context.Background(), practiceSave, tr.Source, tr.Records)
		if err != nil {
			return fmt.Errorf("failed to save transcript: %w", err)
		}
		tr.ID = id
		logErrf("Saved transcript %d\n", id)
	}

	player := speech.NewPlayer(cfg.Voice, logger)
	m := tui.NewModel(cfg, st, player, logger, tr, practiceSave)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if fromStdin {
		// stdin was consumed by the transcript; keys come from the tty.
		opts = append(opts, tea.WithInputTTY())
	}
	program := tea.NewProgram(m, opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadPracticeTranscript picks the practice source: a saved transcript, a
// file, piped stdin, or nothing (the input screen).
func loadPracticeTranscript(cmd *cobra.Command, st *store.Store) (model.Transcript, bool, error) {
	if practiceLibraryID != 0 {
		if practiceFile != "" {
			return model.Transcript{}, false, fmt.Errorf("--file and --library are mutually exclusive")
		}
		tr, err := st.LoadTranscript(context.Background(), practiceLibraryID)
		if err != nil {
			return model.Transcript{}, false, fmt.Errorf("failed to load transcript: %w", err)
		}
		return tr, false, nil
	}
	path := practiceFile
	if path == "" && !stdinIsTerminal() {
		path = input.Stdin
	}
	if path == "" {
		return model.Transcript{}, false, nil
	}
	tr, err := readTranscript(path, cmd.InOrStdin())
	if err != nil {
		return model.Transcript{}, false, err
	}
	return tr, path == input.Stdin, nil
}

func readTranscript(path string, stdin io.Reader) (model.Transcript, error) {
	raw, err := input.ReadText(path, stdin)
	if err != nil {
		return model.Transcript{}, err
	}
	records := transcript.Parse(raw)
	if len(records) == 0 {
		return model.Transcript{}, fmt.Errorf("no utterances found in %s", displayPath(path))
	}
	return model.Transcript{Source: strings.TrimSpace(raw), Records: records}, nil
}

func displayPath(path string) string {
	if path == input.Stdin {
		return "stdin"
	}
	return path
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// buildConfig merges file values into flag defaults. Flags set on the
// command line win.
func buildConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.Config {
	applyBoolConfig(cmd, "show-original", &practiceShowOriginal, fileCfg.Practice.ShowOriginal)
	applyFloatConfig(cmd, "rate", &practiceRate, fileCfg.Practice.Rate)
	applyFloatConfig(cmd, "male-pitch", &practiceMalePitch, fileCfg.Practice.MalePitch)
	applyFloatConfig(cmd, "female-pitch", &practiceFemalePitch, fileCfg.Practice.FemalePitch)
	applyIntConfig(cmd, "workers", &practiceWorkers, fileCfg.Practice.Workers)

	voice := model.VoiceConfig{
		Command:     speech.DefaultCommand(),
		Rate:        practiceRate,
		MalePitch:   practiceMalePitch,
		FemalePitch: practiceFemalePitch,
		TimeoutSec:  defaultTimeoutSec,
	}
	applyString(&voice.Command, fileCfg.Speech.Command)
	applyString(&voice.MaleVoice, fileCfg.Speech.MaleVoice)
	applyString(&voice.FemaleVoice, fileCfg.Speech.FemaleVoice)
	applyString(&voice.DefaultVoice, fileCfg.Speech.DefaultVoice)
	if fileCfg.Speech.TimeoutSec != nil {
		voice.TimeoutSec = *fileCfg.Speech.TimeoutSec
	}

	return model.Config{
		ShowOriginal: practiceShowOriginal,
		Workers:      practiceWorkers,
		Voice:        voice,
	}
}

func validateConfig(cfg model.Config) error {
	if cfg.Voice.Rate <= 0 {
		return fmt.Errorf("--rate must be > 0")
	}
	if cfg.Voice.MalePitch <= 0 {
		return fmt.Errorf("--male-pitch must be > 0")
	}
	if cfg.Voice.FemalePitch <= 0 {
		return fmt.Errorf("--female-pitch must be > 0")
	}
	if cfg.Voice.TimeoutSec < 0 {
		return fmt.Errorf("speech timeout must be >= 0")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	return nil
}

// setupLogger opens the log file. Logging problems never stop practice;
// they fall back to a discarding logger.
func setupLogger(fileCfg config.FileConfig) *logrus.Logger {
	opts := logging.Options{
		Level:  defaultLogLevel,
		Format: defaultLogFormat,
		Path:   config.DefaultLogPath(),
	}
	applyString(&opts.Level, fileCfg.Logging.Level)
	applyString(&opts.Format, fileCfg.Logging.Format)
	applyString(&opts.Path, fileCfg.Logging.Path)
	logger, err := logging.Configure(opts)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return logging.Discard()
	}
	return logger
}

func applyString(target, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# kikitori configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# show-original = false   # Show the reference text from the start
# rate = %.1f             # Speech rate multiplier
# male-pitch = %.1f       # Pitch multiplier for male speakers
# female-pitch = %.1f     # Pitch multiplier for female speakers
# workers = %d            # Parallel checks for grade (0 = all CPUs)

[speech]
# command = %q
#                         # Placeholders: {voice} {pitch} {rate} {pitch50} {wpm}
# male-voice = ""
# female-voice = ""
# default-voice = ""
# timeout = %.0f           # Seconds before a playback is stopped (0 = none)

[logging]
# level = %q
# format = %q          # text or json
# path = %q
`,
		speech.DefaultRate,
		speech.DefaultMalePitch,
		speech.DefaultFemalePitch,
		defaultWorkers,
		speech.DefaultCommand(),
		defaultTimeoutSec,
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
