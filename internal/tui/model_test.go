package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kikitori/internal/logging"
	"github.com/verte-zerg/kikitori/internal/model"
)

type play struct {
	text    string
	speaker model.Speaker
}

type fakePlayer struct {
	plays   []play
	stopped bool
	err     error
}

func (p *fakePlayer) Play(_ context.Context, text string, speaker model.Speaker) error {
	p.plays = append(p.plays, play{text: text, speaker: speaker})
	return p.err
}

func (p *fakePlayer) Stop() { p.stopped = true }

type update struct {
	id       int64
	position int
	rec      model.Record
}

type fakeLibrary struct {
	saved   [][]model.Record
	updates []update
	err     error
}

func (l *fakeLibrary) SaveTranscript(_ context.Context, _, _ string, records []model.Record) (int64, error) {
	l.saved = append(l.saved, records)
	return 42, l.err
}

func (l *fakeLibrary) UpdateRecord(_ context.Context, id int64, position int, rec model.Record) error {
	l.updates = append(l.updates, update{id: id, position: position, rec: rec})
	return l.err
}

const movieLine = "きのうは友だちと映画を見ました"

func practiceModel(t *testing.T, player *fakePlayer, lib *fakeLibrary) *Model {
	t.Helper()
	tr := model.Transcript{
		ID: 7,
		Records: []model.Record{
			{Text: movieLine, Speaker: model.SpeakerMale},
			{Text: "そうですか", Speaker: model.SpeakerFemale},
		},
	}
	var library Library
	if lib != nil {
		library = lib
	}
	return NewModel(model.Config{}, library, player, logging.Discard(), tr, "")
}

func press(m *Model, key tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: key})
	return cmd
}

func TestProcessInputParsesTranscript(t *testing.T) {
	lib := &fakeLibrary{}
	m := NewModel(model.Config{}, lib, &fakePlayer{}, logging.Discard(), model.Transcript{}, "lesson")
	if m.screen != screenInput {
		t.Fatalf("expected input screen, got %v", m.screen)
	}
	m.source.SetValue("男：きのうは\n友だちと映画を見ました。女：そう。")
	press(m, tea.KeyCtrlS)

	if m.screen != screenPractice {
		t.Fatalf("expected practice screen, got %v", m.screen)
	}
	if len(m.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(m.records))
	}
	if m.records[1].Speaker != model.SpeakerFemale || m.records[1].Text != "そう。" {
		t.Fatalf("unexpected second record: %+v", m.records[1])
	}
	if len(lib.saved) != 1 || m.transcriptID != 42 {
		t.Fatalf("expected transcript saved with id 42, got %d saves id %d", len(lib.saved), m.transcriptID)
	}
}

func TestProcessEmptyInputWarns(t *testing.T) {
	m := NewModel(model.Config{}, nil, nil, logging.Discard(), model.Transcript{}, "")
	m.source.SetValue("   ")
	press(m, tea.KeyCtrlS)
	if m.screen != screenInput {
		t.Fatalf("expected to stay on input screen")
	}
	if m.notice.level != levelWarning || m.notice.text == "" {
		t.Fatalf("expected warning notice, got %+v", m.notice)
	}
}

func TestCheckBlankAnswerWarns(t *testing.T) {
	m := practiceModel(t, &fakePlayer{}, nil)
	press(m, tea.KeyEnter)
	if m.attempts[0].checked {
		t.Fatalf("blank answer must not be checked")
	}
	if m.notice.level != levelWarning {
		t.Fatalf("expected warning, got %+v", m.notice)
	}
}

func TestReplayChecksFirstThenPlaysWindows(t *testing.T) {
	player := &fakePlayer{}
	m := practiceModel(t, player, nil)
	m.answer.SetValue("きのうわ友だちと映画を見ました")

	if cmd := press(m, tea.KeyCtrlT); cmd != nil {
		t.Fatalf("expected first replay press to only check")
	}
	att := m.attempts[0]
	if !att.checked || att.report.Correct || !att.hasWindows {
		t.Fatalf("expected failed check with windows, got %+v", att)
	}

	cases := []struct {
		key  tea.KeyType
		want string
	}{
		{key: tea.KeyCtrlE, want: "は"},
		{key: tea.KeyCtrlW, want: "は"},
		{key: tea.KeyCtrlT, want: "は友だちと映画を"},
		{key: tea.KeyCtrlP, want: movieLine},
	}
	for _, tc := range cases {
		cmd := press(m, tc.key)
		if cmd == nil {
			t.Fatalf("expected playback command for %v", tc.key)
		}
		if msg, ok := cmd().(playDoneMsg); !ok || msg.err != nil {
			t.Fatalf("unexpected playback message %#v", msg)
		}
		last := player.plays[len(player.plays)-1]
		if last.text != tc.want || last.speaker != model.SpeakerMale {
			t.Fatalf("key %v played %+v, want %q", tc.key, last, tc.want)
		}
	}
}

func TestReplayRechecksChangedAnswer(t *testing.T) {
	player := &fakePlayer{}
	m := practiceModel(t, player, nil)
	m.answer.SetValue("きのうわ")
	press(m, tea.KeyEnter)
	m.answer.SetValue("きのうは友だちと映画を見ませんでした")
	if cmd := press(m, tea.KeyCtrlE); cmd != nil {
		t.Fatalf("expected changed answer to be rechecked without playback")
	}
	if got := m.attempts[0].report.ErrorStart(); got != 13 {
		t.Fatalf("expected error start 13 after recheck, got %d", got)
	}
}

func TestReplayAfterCorrectCheckDoesNothing(t *testing.T) {
	player := &fakePlayer{}
	m := practiceModel(t, player, nil)
	m.answer.SetValue(movieLine)
	press(m, tea.KeyEnter)
	if !m.attempts[0].report.Correct {
		t.Fatalf("expected correct check")
	}
	for _, key := range []tea.KeyType{tea.KeyCtrlE, tea.KeyCtrlW, tea.KeyCtrlT} {
		if cmd := press(m, key); cmd != nil {
			t.Fatalf("expected no playback for %v", key)
		}
	}
	if len(player.plays) != 0 {
		t.Fatalf("expected nothing played, got %+v", player.plays)
	}
}

func TestPlaybackErrorShowsNotice(t *testing.T) {
	m := practiceModel(t, &fakePlayer{}, nil)
	m.Update(playDoneMsg{err: errors.New("no tts")})
	if m.notice.level != levelError {
		t.Fatalf("expected error notice, got %+v", m.notice)
	}
}

func TestNavigationKeepsAnswers(t *testing.T) {
	m := practiceModel(t, &fakePlayer{}, nil)
	m.answer.SetValue("first")
	press(m, tea.KeyCtrlN)
	if m.index != 1 || m.answer.Value() != "" {
		t.Fatalf("expected empty answer on record 2, got index %d %q", m.index, m.answer.Value())
	}
	press(m, tea.KeyCtrlN)
	if m.index != 1 {
		t.Fatalf("expected to stay on last record, got %d", m.index)
	}
	press(m, tea.KeyCtrlB)
	if m.index != 0 || m.answer.Value() != "first" {
		t.Fatalf("expected restored answer, got index %d %q", m.index, m.answer.Value())
	}
}

func TestToggleOriginal(t *testing.T) {
	m := practiceModel(t, &fakePlayer{}, nil)
	press(m, tea.KeyCtrlO)
	if !m.showOriginal {
		t.Fatalf("expected original shown")
	}
	press(m, tea.KeyCtrlO)
	if m.showOriginal {
		t.Fatalf("expected original hidden")
	}
}

func TestEditReplacesAndPersistsRecord(t *testing.T) {
	lib := &fakeLibrary{}
	m := practiceModel(t, &fakePlayer{}, lib)
	m.answer.SetValue("きのう")
	press(m, tea.KeyEnter)

	press(m, tea.KeyCtrlG)
	if m.screen != screenEdit {
		t.Fatalf("expected edit screen")
	}
	m.edit.fields[fieldSpeaker].SetValue("female")
	m.edit.fields[fieldText].SetValue("きのうは映画を見ました")
	m.edit.fields[fieldTranslation].SetValue("I watched a movie yesterday")
	press(m, tea.KeyEnter)

	if m.screen != screenPractice {
		t.Fatalf("expected practice screen after save")
	}
	want := model.Record{Text: "きのうは映画を見ました", Speaker: model.SpeakerFemale, Translation: "I watched a movie yesterday"}
	if m.records[0] != want {
		t.Fatalf("unexpected record %+v", m.records[0])
	}
	if len(lib.updates) != 1 || lib.updates[0] != (update{id: 7, position: 0, rec: want}) {
		t.Fatalf("unexpected updates %+v", lib.updates)
	}
	if m.attempts[0].checked {
		t.Fatalf("expected stale check to be cleared")
	}
	if m.answer.Value() != "きのう" {
		t.Fatalf("expected answer kept, got %q", m.answer.Value())
	}
}

func TestEditRejectsInvalidFields(t *testing.T) {
	lib := &fakeLibrary{}
	m := practiceModel(t, &fakePlayer{}, lib)
	press(m, tea.KeyCtrlG)

	m.edit.fields[fieldSpeaker].SetValue("robot")
	press(m, tea.KeyEnter)
	if m.screen != screenEdit || m.edit.err == "" {
		t.Fatalf("expected invalid speaker to keep the modal open")
	}

	m.edit.fields[fieldSpeaker].SetValue("")
	m.edit.fields[fieldText].SetValue("  ")
	press(m, tea.KeyEnter)
	if m.screen != screenEdit {
		t.Fatalf("expected empty text to keep the modal open")
	}

	press(m, tea.KeyEsc)
	if m.screen != screenPractice || len(lib.updates) != 0 {
		t.Fatalf("expected cancel without updates")
	}
	if m.records[0].Text != movieLine {
		t.Fatalf("expected record unchanged, got %+v", m.records[0])
	}
}

func TestEditCyclesFields(t *testing.T) {
	m := practiceModel(t, &fakePlayer{}, nil)
	press(m, tea.KeyCtrlG)
	if m.edit.focus != fieldText {
		t.Fatalf("expected text field focused, got %d", m.edit.focus)
	}
	press(m, tea.KeyTab)
	if m.edit.focus != fieldTranslation {
		t.Fatalf("expected translation field, got %d", m.edit.focus)
	}
	press(m, tea.KeyTab)
	if m.edit.focus != fieldSpeaker {
		t.Fatalf("expected wrap to speaker field, got %d", m.edit.focus)
	}
}

func TestQuitStopsPlayback(t *testing.T) {
	player := &fakePlayer{}
	m := practiceModel(t, player, nil)
	cmd := press(m, tea.KeyCtrlC)
	if cmd == nil || !player.stopped {
		t.Fatalf("expected quit command and stopped player")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestViewShowsFooterPosition(t *testing.T) {
	m := practiceModel(t, &fakePlayer{}, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	if got := m.renderFooter(); !containsAll(got, "1/2", "male") {
		t.Fatalf("unexpected footer %q", got)
	}
	if m.View() == "" {
		t.Fatalf("expected non-empty view")
	}
}

func containsAll(s string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}

func TestClearInputResetsSourceAndNotice(t *testing.T) {
	m := NewModel(model.Config{}, nil, nil, logging.Discard(), model.Transcript{}, "")
	press(m, tea.KeyCtrlS)
	m.source.SetValue("男：はい。")
	press(m, tea.KeyCtrlL)
	if m.source.Value() != "" {
		t.Fatalf("expected cleared source, got %q", m.source.Value())
	}
	if m.notice.text != "" {
		t.Fatalf("expected notice cleared, got %+v", m.notice)
	}
	if m.screen != screenInput {
		t.Fatalf("expected to stay on input screen")
	}
}

func TestFooterWithoutRecords(t *testing.T) {
	m := NewModel(model.Config{}, nil, nil, logging.Discard(), model.Transcript{}, "")
	m.screen = screenPractice
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := m.renderFooter(); !strings.Contains(got, "ctrl+r") {
		t.Fatalf("unexpected footer %q", got)
	}
	if m.View() == "" {
		t.Fatalf("expected non-empty view")
	}
}
