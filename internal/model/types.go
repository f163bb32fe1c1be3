// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Speaker is the voice attribute of an utterance.
type Speaker int

const (
	// SpeakerUnset marks an utterance with no resolved speaker.
	SpeakerUnset Speaker = iota
	SpeakerMale
	SpeakerFemale
)

// String returns the config/serialization name of the speaker.
func (s Speaker) String() string {
	switch s {
	case SpeakerMale:
		return "male"
	case SpeakerFemale:
		return "female"
	default:
		return ""
	}
}

// Resolved reports whether the speaker is male or female.
func (s Speaker) Resolved() bool {
	return s == SpeakerMale || s == SpeakerFemale
}

// ParseSpeaker maps "male", "female" or "" to a Speaker.
func ParseSpeaker(v string) (Speaker, error) {
	switch v {
	case "male":
		return SpeakerMale, nil
	case "female":
		return SpeakerFemale, nil
	case "":
		return SpeakerUnset, nil
	default:
		return SpeakerUnset, fmt.Errorf("unknown speaker %q (want male, female or empty)", v)
	}
}

// Record is one practice utterance with its marker stripped.
type Record struct {
	Text        string
	Speaker     Speaker
	Translation string
}

// Transcript is a saved set of records.
type Transcript struct {
	ID        int64
	Title     string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Records   []Record
}

// TranscriptSummary describes a saved transcript without its records.
type TranscriptSummary struct {
	ID          int64
	Title       string
	RecordCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Config defines practice settings.
type Config struct {
	ShowOriginal bool
	Workers      int
	Voice        VoiceConfig
}

// VoiceConfig defines how utterances are spoken.
type VoiceConfig struct {
	Command      string
	Rate         float64
	MalePitch    float64
	FemalePitch  float64
	MaleVoice    string
	FemaleVoice  string
	DefaultVoice string
	TimeoutSec   float64
}
