// Package tui provides the Bubble Tea dictation interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kikitori/internal/diff"
	"github.com/verte-zerg/kikitori/internal/model"
	"github.com/verte-zerg/kikitori/internal/transcript"
)

// Player speaks text with a speaker's voice.
type Player interface {
	Play(ctx context.Context, text string, speaker model.Speaker) error
	Stop()
}

// Library persists transcripts and record edits.
type Library interface {
	SaveTranscript(ctx context.Context, title, source string, records []model.Record) (int64, error)
	UpdateRecord(ctx context.Context, id int64, position int, rec model.Record) error
}

type screen int

const (
	screenInput screen = iota
	screenPractice
	screenEdit
)

type replayKind int

const (
	replayErrorSpan replayKind = iota
	replayToParticle
	replayShort
)

type attempt struct {
	answer     string
	checked    bool
	report     diff.Report
	windows    diff.Windows
	hasWindows bool
}

type playDoneMsg struct {
	err error
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	config    model.Config
	library   Library
	player    Player
	logger    *logrus.Logger
	saveTitle string

	transcriptID int64
	records      []model.Record
	attempts     []attempt
	index        int

	width  int
	height int

	screen       screen
	source       textarea.Model
	answer       textinput.Model
	edit         editForm
	showOriginal bool
	notice       notice
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9F43")).Strikethrough(true)
	missingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	maleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A90E2"))
	femaleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E25B9A"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// NewModel constructs a practice model. With no records in tr the input
// screen is shown first; saveTitle, when set, stores newly processed text
// in the library under that title.
func NewModel(cfg model.Config, library Library, player Player, logger *logrus.Logger, tr model.Transcript, saveTitle string) *Model {
	m := &Model{
		config:       cfg,
		library:      library,
		player:       player,
		logger:       logger,
		saveTitle:    saveTitle,
		showOriginal: cfg.ShowOriginal,
	}
	m.source = newSourceInput()
	m.answer = newAnswerInput()
	m.edit = newEditForm()
	if len(tr.Records) > 0 {
		m.transcriptID = tr.ID
		m.setRecords(tr.Records)
		m.screen = screenPractice
		m.answer.Focus()
	} else {
		m.source.SetValue(tr.Source)
		m.source.Focus()
	}
	return m
}

func newSourceInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Paste transcript text here (女: / 男: mark speakers)"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(10)
	return ta
}

func newAnswerInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "type what you hear"
	input.CharLimit = 0
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenInput {
		return textarea.Blink
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case playDoneMsg:
		if msg.err != nil {
			m.logger.WithError(msg.err).Warn("playback failed")
			m.notify(levelError, "Speech unavailable: "+msg.err.Error())
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.player != nil {
				m.player.Stop()
			}
			return m, tea.Quit
		}
		switch m.screen {
		case screenInput:
			return m.updateInput(msg)
		case screenEdit:
			return m.updateEdit(msg)
		default:
			return m.updatePractice(msg)
		}
	}
	return m.forward(msg)
}

func (m *Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenInput:
		m.source, cmd = m.source.Update(msg)
	case screenEdit:
		cmd = m.edit.update(msg)
	default:
		m.answer, cmd = m.answer.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return m.processInput()
	case "ctrl+l":
		m.source.Reset()
		m.notice = notice{}
		return m, nil
	}
	return m.forward(msg)
}

func (m *Model) processInput() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.source.Value())
	if raw == "" {
		m.notify(levelWarning, "Paste some text first")
		return m, nil
	}
	records := transcript.Parse(raw)
	if len(records) == 0 {
		m.notify(levelWarning, "No utterances found")
		return m, nil
	}
	m.transcriptID = 0
	m.setRecords(records)
	m.saveSource(raw)
	m.logger.WithField("records", len(records)).Info("processed transcript")
	m.notify(levelSuccess, fmt.Sprintf("Processed %d utterances", len(records)))
	m.screen = screenPractice
	m.source.Blur()
	return m, m.answer.Focus()
}

func (m *Model) saveSource(raw string) {
	if m.library == nil || m.saveTitle == "" {
		return
	}
	id, err := m.library.SaveTranscript(context.Background(), m.saveTitle, raw, m.records)
	if err != nil {
		m.logger.WithError(err).Error("failed to save transcript")
		m.notify(levelError, "Failed to save transcript: "+err.Error())
		return
	}
	m.transcriptID = id
	m.logger.WithField("id", id).Info("saved transcript")
}

func (m *Model) updatePractice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.check()
		return m, nil
	case "ctrl+p":
		rec := m.records[m.index]
		return m, m.playCmd(rec.Text, rec.Speaker)
	case "ctrl+e":
		return m, m.replay(replayErrorSpan)
	case "ctrl+w":
		return m, m.replay(replayToParticle)
	case "ctrl+t":
		return m, m.replay(replayShort)
	case "ctrl+o":
		m.showOriginal = !m.showOriginal
		return m, nil
	case "ctrl+n", "pgdown":
		m.move(1)
		return m, nil
	case "ctrl+b", "pgup":
		m.move(-1)
		return m, nil
	case "ctrl+g":
		m.openEdit()
		return m, m.edit.focusCurrent()
	case "ctrl+r":
		m.screen = screenInput
		m.answer.Blur()
		return m, m.source.Focus()
	}
	return m.forward(msg)
}

func (m *Model) setRecords(records []model.Record) {
	m.records = append([]model.Record(nil), records...)
	m.attempts = make([]attempt, len(records))
	m.index = 0
	m.answer.Reset()
}

func (m *Model) move(delta int) {
	if len(m.records) == 0 {
		return
	}
	m.attempts[m.index].answer = m.answer.Value()
	next := m.index + delta
	if next < 0 || next >= len(m.records) {
		return
	}
	m.index = next
	m.answer.SetValue(m.attempts[m.index].answer)
	m.answer.CursorEnd()
	m.notice = notice{}
}

// check compares the current answer with the reference. Blank input is
// rejected before comparison.
func (m *Model) check() {
	answer := strings.TrimSpace(m.answer.Value())
	if answer == "" {
		m.notify(levelWarning, "Enter a transcription first")
		return
	}
	rec := m.records[m.index]
	rep := diff.Compare(answer, rec.Text)
	windows, ok := diff.ReplayWindows(rep, rec.Text)
	m.attempts[m.index] = attempt{
		answer:     m.answer.Value(),
		checked:    true,
		report:     rep,
		windows:    windows,
		hasWindows: ok,
	}
	m.notice = notice{}
	m.logger.WithFields(logrus.Fields{
		"record":   m.index,
		"accuracy": rep.Accuracy,
		"correct":  rep.Correct,
	}).Debug("checked answer")
}

// replay plays one of the error windows. Without an up-to-date check it
// checks first and plays nothing; a correct answer plays nothing.
func (m *Model) replay(kind replayKind) tea.Cmd {
	answer := strings.TrimSpace(m.answer.Value())
	if answer == "" {
		m.notify(levelWarning, "Enter a transcription before replaying")
		return nil
	}
	att := m.attempts[m.index]
	if !att.checked || strings.TrimSpace(att.answer) != answer {
		m.check()
		return nil
	}
	if att.report.Correct || !att.hasWindows {
		return nil
	}
	var w diff.Window
	switch kind {
	case replayToParticle:
		w = att.windows.ErrorToParticle
	case replayShort:
		w = att.windows.ShortPlay
	default:
		w = att.windows.ErrorSpan
	}
	rec := m.records[m.index]
	return m.playCmd(w.Slice(rec.Text), rec.Speaker)
}

func (m *Model) playCmd(text string, speaker model.Speaker) tea.Cmd {
	if m.player == nil || text == "" {
		return nil
	}
	player := m.player
	return func() tea.Msg {
		return playDoneMsg{err: player.Play(context.Background(), text, speaker)}
	}
}

func (m *Model) updateLayout() {
	width := m.contentWidth()
	m.source.SetWidth(width)
	m.answer.Width = max(10, width-lipgloss.Width(m.answer.Prompt)-1)
	m.edit.setWidth(modalInnerWidth(m.width))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(20, int(float64(m.width)*0.80))
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenInput:
		body = m.renderInput()
	case screenEdit:
		body = m.renderEdit()
	default:
		body = m.renderPractice()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) renderInput() string {
	lines := []string{
		titleStyle.Render("Practice text"),
		m.source.View(),
	}
	if n := m.notice.render(); n != "" {
		lines = append(lines, n)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPractice() string {
	if len(m.records) == 0 {
		return ""
	}
	rec := m.records[m.index]
	att := m.attempts[m.index]
	width := m.contentWidth()

	header := titleStyle.Render(fmt.Sprintf("Utterance %d", m.index+1))
	if badge := speakerBadge(rec.Speaker); badge != "" {
		header += "  " + badge
	}
	lines := []string{header, "", m.answer.View()}

	if att.checked {
		lines = append(lines, "", m.renderResult(att, width))
	}
	if m.showOriginal {
		lines = append(lines, "", labelStyle.Render("Original"), rec.Text)
	}
	if rec.Translation != "" {
		lines = append(lines, "", labelStyle.Render("Translation"), rec.Translation)
	}
	if n := m.notice.render(); n != "" {
		lines = append(lines, "", n)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderResult(att attempt, width int) string {
	status := successStyle.Render("Correct")
	if !att.report.Correct {
		status = incorrectStyle.Render("Incorrect")
	}
	status += labelStyle.Render(fmt.Sprintf("  accuracy %.1f%%", att.report.Accuracy))
	lines := []string{
		status,
		labelStyle.Render("You"),
		wrapStyledRunes(buildAnswerRunes(att.report.Cells), width),
		labelStyle.Render("Answer"),
		wrapStyledRunes(buildReferenceRunes(att.report.Cells), width),
	}
	if !att.report.Correct && att.hasWindows {
		lines = append(lines, footerStyle.Render("ctrl+e replay error · ctrl+w to particle · ctrl+t short play"))
	}
	return strings.Join(lines, "\n")
}

func speakerBadge(s model.Speaker) string {
	switch s {
	case model.SpeakerMale:
		return maleStyle.Render("[male]")
	case model.SpeakerFemale:
		return femaleStyle.Render("[female]")
	default:
		return ""
	}
}

func (m *Model) renderFooter() string {
	switch m.screen {
	case screenInput:
		return footerStyle.Render("ctrl+s: process  ctrl+l: clear  ctrl+c: quit")
	case screenEdit:
		return footerStyle.Render("tab/shift+tab: next field  enter: save  esc: cancel")
	}
	if len(m.records) == 0 {
		return footerStyle.Render("ctrl+r: new text  ctrl+c: quit")
	}
	segments := []string{fmt.Sprintf("%d/%d", m.index+1, len(m.records))}
	if s := m.records[m.index].Speaker; s.Resolved() {
		segments = append(segments, s.String())
	}
	att := m.attempts[m.index]
	if att.checked {
		segments = append(segments, fmt.Sprintf("Last %.1f%%", att.report.Accuracy))
	}
	segments = append(segments, "enter: check  ctrl+p: play  ctrl+o: original  ctrl+n/b: next/prev  ctrl+g: edit  ctrl+r: new text")
	return footerStyle.Render(strings.Join(segments, "  "))
}
