// Package speech plays utterances through an external text-to-speech command.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kikitori/internal/model"
)

const (
	DefaultRate        = 0.9
	DefaultMalePitch   = 0.8
	DefaultFemalePitch = 1.2

	baseEspeakPitch = 50
	baseEspeakWPM   = 175

	waitDelay = 500 * time.Millisecond
)

// ErrNoCommand is returned when no speech command is configured.
var ErrNoCommand = errors.New("no speech command configured")

// DefaultCommand returns the platform speech command template.
func DefaultCommand() string {
	if runtime.GOOS == "darwin" {
		return "say -v {voice}"
	}
	return "espeak-ng -v {voice} -p {pitch50} -s {wpm}"
}

// Profile is the resolved voice for one speaker.
type Profile struct {
	Voice string
	Pitch float64
	Rate  float64
}

// ProfileFor picks voice, pitch and rate for speaker.
func ProfileFor(cfg model.VoiceConfig, speaker model.Speaker) Profile {
	p := Profile{Voice: cfg.DefaultVoice, Pitch: 1.0, Rate: cfg.Rate}
	switch speaker {
	case model.SpeakerMale:
		p.Pitch = cfg.MalePitch
		if cfg.MaleVoice != "" {
			p.Voice = cfg.MaleVoice
		}
	case model.SpeakerFemale:
		p.Pitch = cfg.FemalePitch
		if cfg.FemaleVoice != "" {
			p.Voice = cfg.FemaleVoice
		}
	}
	if p.Voice == "" {
		p.Voice = defaultVoice()
	}
	if p.Pitch <= 0 {
		p.Pitch = 1.0
	}
	if p.Rate <= 0 {
		p.Rate = DefaultRate
	}
	return p
}

func defaultVoice() string {
	if runtime.GOOS == "darwin" {
		return "Kyoko"
	}
	return "ja"
}

// BuildArgs splits the command template and expands voice placeholders.
// The text is appended as the final argument.
func BuildArgs(command string, p Profile, text string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrNoCommand
	}
	parts, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse speech command: %w", err)
	}
	if len(parts) == 0 {
		return nil, ErrNoCommand
	}
	repl := strings.NewReplacer(
		"{voice}", p.Voice,
		"{pitch}", strconv.FormatFloat(p.Pitch, 'f', 2, 64),
		"{rate}", strconv.FormatFloat(p.Rate, 'f', 2, 64),
		"{pitch50}", strconv.Itoa(int(p.Pitch*baseEspeakPitch+0.5)),
		"{wpm}", strconv.Itoa(int(p.Rate*baseEspeakWPM+0.5)),
	)
	args := make([]string, 0, len(parts)+1)
	for _, part := range parts {
		args = append(args, repl.Replace(part))
	}
	return append(args, text), nil
}

// Player runs the speech command, one utterance at a time.
type Player struct {
	cfg    model.VoiceConfig
	logger *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

// NewPlayer returns a Player for cfg.
func NewPlayer(cfg model.VoiceConfig, logger *logrus.Logger) *Player {
	return &Player{cfg: cfg, logger: logger}
}

// Play speaks text with the speaker's voice and blocks until the command
// exits. Any playback still running is cancelled first.
func (p *Player) Play(ctx context.Context, text string, speaker model.Speaker) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	profile := ProfileFor(p.cfg, speaker)
	args, err := BuildArgs(p.cfg.Command, profile, text)
	if err != nil {
		return err
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if p.cfg.TimeoutSec > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(float64(time.Second)*p.cfg.TimeoutSec))
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	seq := p.replace(cancel)
	defer p.finish(seq, cancel)

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(),
		"KIKITORI_TEXT="+text,
		"KIKITORI_SPEAKER="+speaker.String(),
	)
	p.logger.WithFields(logrus.Fields{
		"command": args[0],
		"voice":   profile.Voice,
		"speaker": speaker.String(),
		"chars":   len([]rune(text)),
	}).Debug("speech start")

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		p.logger.Infof("speech output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		if errors.Is(runCtx.Err(), context.Canceled) && ctx.Err() == nil {
			// Superseded by a newer Play or Stop.
			return nil
		}
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}

// Stop cancels the running playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Player) replace(cancel context.CancelFunc) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.seq++
	return p.seq
}

func (p *Player) finish(seq uint64, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == seq {
		p.cancel = nil
	}
}
