package cue

import (
	"context"
	"sync"
)

// Recorder is a Player that remembers tones so a transport can hand them to
// the client with the next view.
type Recorder struct {
	mu    sync.Mutex
	tones []Tone
}

// Play implements Player.
func (r *Recorder) Play(_ context.Context, t Tone) error {
	r.mu.Lock()
	r.tones = append(r.tones, t)
	r.mu.Unlock()
	return nil
}

// Drain returns and forgets the recorded tones.
func (r *Recorder) Drain() []Tone {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.tones
	r.tones = nil
	return out
}
