package tui

import "github.com/charmbracelet/lipgloss"

type noticeLevel int

const (
	levelInfo noticeLevel = iota
	levelSuccess
	levelWarning
	levelError
)

var noticeStyles = map[noticeLevel]lipgloss.Style{
	levelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	levelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
	levelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14")),
	levelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true),
}

// notice is the single status line message. Each new notice replaces the
// previous one.
type notice struct {
	level noticeLevel
	text  string
}

func (n notice) render() string {
	if n.text == "" {
		return ""
	}
	return noticeStyles[n.level].Render(n.text)
}

func (m *Model) notify(level noticeLevel, text string) {
	m.notice = notice{level: level, text: text}
}
