// Package cue describes the short audible and visual feedback the activities
// emit. The server never produces sound itself; it hands tone descriptors to
// a Player (usually the client) and ignores any failure to play them.
package cue

import "context"

// Kind distinguishes positive from negative feedback.
type Kind string

const (
	Good Kind = "good"
	Bad  Kind = "bad"
)

// Waveform and envelope shared by every tone.
const (
	Waveform   = "sine"
	Gain       = 0.04
	DurationMS = 140
)

// Tone is a single sine beep.
type Tone struct {
	Kind        Kind    `json:"kind"`
	Waveform    string  `json:"waveform"`
	FrequencyHz int     `json:"frequency_hz"`
	DurationMS  int     `json:"duration_ms"`
	Gain        float64 `json:"gain"`
}

// Palette maps feedback kinds to frequencies for one activity.
type Palette struct {
	GoodHz int
	BadHz  int
}

// The quiz uses a wider interval than the hands-on activities.
var (
	QuizPalette     = Palette{GoodHz: 880, BadHz: 220}
	ActivityPalette = Palette{GoodHz: 740, BadHz: 240}
)

// Tone builds the tone for kind.
func (p Palette) Tone(kind Kind) Tone {
	hz := p.BadHz
	if kind == Good {
		hz = p.GoodHz
	}
	return Tone{Kind: kind, Waveform: Waveform, FrequencyHz: hz, DurationMS: DurationMS, Gain: Gain}
}

// Player plays tones. Implementations may fail (e.g. audio blocked by
// platform policy); callers go through Emit which swallows the failure.
type Player interface {
	Play(ctx context.Context, t Tone) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context, t Tone) error

// Play implements Player.
func (f PlayerFunc) Play(ctx context.Context, t Tone) error { return f(ctx, t) }

// Emit plays t on p when sound is enabled. Errors and panics from the player
// are dropped.
func Emit(ctx context.Context, p Player, enabled bool, t Tone) {
	if !enabled || p == nil {
		return
	}
	defer func() { _ = recover() }()
	_ = p.Play(ctx, t)
}

// Celebration describes a completion animation.
type Celebration struct {
	Effect     string `json:"effect"`
	DurationMS int    `json:"duration_ms"`
	Pieces     int    `json:"pieces,omitempty"`
}

// Pop is the short pulse used by the matching game; Confetti finishes the canvas.
var (
	Pop      = Celebration{Effect: "pop", DurationMS: 300}
	Confetti = Celebration{Effect: "confetti", DurationMS: 2200, Pieces: 140}
)

// Shake is the duration of the wrong-drop wobble.
const ShakeMS = 300
