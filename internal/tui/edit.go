package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kikitori/internal/model"
)

const (
	fieldSpeaker = iota
	fieldText
	fieldTranslation
	fieldCount
)

var fieldLabels = [fieldCount]string{"Speaker (male/female/empty)", "Text", "Translation"}

type editForm struct {
	fields [fieldCount]textinput.Model
	focus  int
	err    string
}

func newEditForm() editForm {
	var f editForm
	for i := range f.fields {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 0
		f.fields[i] = input
	}
	f.fields[fieldSpeaker].CharLimit = 6
	return f
}

func (f *editForm) load(rec model.Record) {
	f.fields[fieldSpeaker].SetValue(rec.Speaker.String())
	f.fields[fieldText].SetValue(rec.Text)
	f.fields[fieldTranslation].SetValue(rec.Translation)
	f.focus = fieldText
	f.err = ""
}

func (f *editForm) setWidth(width int) {
	for i := range f.fields {
		f.fields[i].Width = width
	}
}

func (f *editForm) focusCurrent() tea.Cmd {
	for i := range f.fields {
		f.fields[i].Blur()
	}
	return f.fields[f.focus].Focus()
}

func (f *editForm) cycle(delta int) tea.Cmd {
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.focusCurrent()
}

func (f *editForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd
}

// record validates the form and builds the replacement record.
func (f *editForm) record() (model.Record, bool) {
	speaker, err := model.ParseSpeaker(strings.ToLower(strings.TrimSpace(f.fields[fieldSpeaker].Value())))
	if err != nil {
		f.err = err.Error()
		return model.Record{}, false
	}
	text := strings.TrimSpace(f.fields[fieldText].Value())
	if text == "" {
		f.err = "text cannot be empty"
		return model.Record{}, false
	}
	return model.Record{
		Text:        text,
		Speaker:     speaker,
		Translation: strings.TrimSpace(f.fields[fieldTranslation].Value()),
	}, true
}

func (m *Model) openEdit() {
	m.attempts[m.index].answer = m.answer.Value()
	m.edit.load(m.records[m.index])
	m.answer.Blur()
	m.screen = screenEdit
}

func (m *Model) closeEdit() tea.Cmd {
	m.screen = screenPractice
	return m.answer.Focus()
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, m.closeEdit()
	case "tab", "down":
		return m, m.edit.cycle(1)
	case "shift+tab", "up":
		return m, m.edit.cycle(-1)
	case "enter":
		rec, ok := m.edit.record()
		if !ok {
			return m, nil
		}
		m.saveEdit(rec)
		return m, m.closeEdit()
	}
	return m.forward(msg)
}

// saveEdit replaces the current record. A stale check result is dropped
// because the reference may have changed.
func (m *Model) saveEdit(rec model.Record) {
	m.records[m.index] = rec
	answer := m.attempts[m.index].answer
	m.attempts[m.index] = attempt{answer: answer}
	if m.library == nil || m.transcriptID == 0 {
		m.notify(levelSuccess, "Record updated")
		return
	}
	if err := m.library.UpdateRecord(context.Background(), m.transcriptID, m.index, rec); err != nil {
		m.logger.WithError(err).Error("failed to update record")
		m.notify(levelError, "Failed to save record: "+err.Error())
		return
	}
	m.notify(levelSuccess, "Record saved")
}

func (m *Model) renderEdit() string {
	lines := []string{titleStyle.Render("Edit utterance"), ""}
	for i := range m.edit.fields {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.edit.focus {
			label = titleStyle.Render(fieldLabels[i])
		}
		lines = append(lines, label, m.edit.fields[i].View(), "")
	}
	if m.edit.err != "" {
		lines = append(lines, noticeStyles[levelError].Render(m.edit.err))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func modalInnerWidth(width int) int {
	if width <= 0 {
		return 50
	}
	frame := modalStyle.GetHorizontalFrameSize()
	return max(20, min(70, width-frame-4))
}
