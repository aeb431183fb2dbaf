// Package temporal extends the veiling engine over frame sequences. A
// session keeps a bounded buffer of prior trusted/veiled frame pairs and
// injects cross-frame artifacts on top of the per-frame depth veil: replayed
// stale frames, periodic flicker at elevated strength, and continuity-
// breaking jumps.
package temporal

import (
	"fmt"
	mrand "math/rand/v2"

	"github.com/google/uuid"

	"dataveil/pkg/randctl"
	"dataveil/pkg/veil"
)

// Variant identifies which ghosting artifact a frame received.
type Variant string

const (
	VariantPass    Variant = "pass"    // plain per-frame veil only
	VariantReplay  Variant = "replay"  // substituted a prior veiled frame
	VariantFlicker Variant = "flicker" // re-veiled at elevated strength
	VariantJump    Variant = "jump"    // independent warp, continuity broken
)

// Weights control the seeded draw among ghosting variants. Ineligible
// variants (replay with an empty buffer, flicker off-schedule) fall back to
// pass for that frame.
type Weights struct {
	Pass    float64
	Replay  float64
	Flicker float64
	Jump    float64
}

// DefaultWeights keep most frames plainly veiled with occasional anomalies:
// pass 5, replay 2, flicker 2, jump 1.
var DefaultWeights = Weights{Pass: 5, Replay: 2, Flicker: 2, Jump: 1}

// Config parameterizes a ghosting session.
type Config struct {
	Capacity        int     // buffer length; 0 means DefaultCapacity
	Strength        float64 // base per-frame veil strength; 0 means 1.0
	FlickerStrength float64 // elevated strength; 0 means 2x base
	FlickerPeriod   int     // flicker eligible every Nth frame; 0 means 3
	Weights         Weights // zero value means DefaultWeights
	Seed            uint64  // 0 means randctl.DefaultSeed
}

// DefaultCapacity is the buffer length used when Config.Capacity is zero.
const DefaultCapacity = 5

// FramePair is one buffered trusted/veiled frame pair.
type FramePair struct {
	Trusted veil.Grid
	Veiled  veil.Grid
}

// Session is the stateful ghosting pipeline for one frame stream. It is not
// safe for concurrent use; each concurrent stream needs its own session.
type Session struct {
	id    string
	cfg   Config
	rng   *mrand.Rand
	seed  uint64
	buf   []FramePair
	index int
}

// NewSession creates a session with its own substreams derived from the
// configured seed, so two sessions with equal configs produce identical
// sequences.
func NewSession(cfg Config) *Session {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Strength <= 0 {
		cfg.Strength = 1.0
	}
	if cfg.FlickerStrength <= 0 {
		cfg.FlickerStrength = 2 * cfg.Strength
	}
	if cfg.FlickerPeriod <= 0 {
		cfg.FlickerPeriod = 3
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights
	}
	if cfg.Seed == 0 {
		cfg.Seed = randctl.DefaultSeed
	}
	return &Session{
		id:   uuid.New().String(),
		cfg:  cfg,
		rng:  randctl.Stream("temporal", cfg.Seed),
		seed: cfg.Seed,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Len reports the current buffer length.
func (s *Session) Len() int { return len(s.buf) }

// Buffer returns the buffered pairs in insertion order (oldest first).
func (s *Session) Buffer() []FramePair {
	out := make([]FramePair, len(s.buf))
	copy(out, s.buf)
	return out
}

// Process veils one trusted frame and applies at most one ghosting variant.
// The buffer is updated with the new pair regardless of the variant chosen.
func (s *Session) Process(frame veil.Grid) (veil.Grid, Variant, error) {
	veiled, err := veil.Depth(frame, s.cfg.Strength, s.rng)
	if err != nil {
		return veil.Grid{}, "", err
	}

	variant := s.draw()
	switch variant {
	case VariantReplay:
		veiled = s.buf[s.rng.IntN(len(s.buf))].Veiled.Clone()
	case VariantFlicker:
		veiled, err = veil.Depth(veiled, s.cfg.FlickerStrength, s.rng)
		if err != nil {
			return veil.Grid{}, "", err
		}
	case VariantJump:
		// Fresh substream per jump: the warp shares nothing with the
		// session's ongoing draw sequence.
		jumpRng := randctl.Stream(fmt.Sprintf("jump-%d", s.index), randctl.Derive(s.seed, "jump"))
		veiled, err = veil.Depth(frame, s.cfg.Strength, jumpRng)
		if err != nil {
			return veil.Grid{}, "", err
		}
	}

	s.push(FramePair{Trusted: frame.Clone(), Veiled: veiled.Clone()})
	s.index++
	return veiled, variant, nil
}

// draw selects the ghosting variant for the current frame. The draw itself
// always consumes exactly one value from the session stream, so eligibility
// (buffer fill, flicker schedule) does not desynchronize replay across
// identically seeded sessions.
func (s *Session) draw() Variant {
	w := s.cfg.Weights
	total := w.Pass + w.Replay + w.Flicker + w.Jump
	if total <= 0 {
		return VariantPass
	}
	r := s.rng.Float64() * total

	switch {
	case r < w.Pass:
		return VariantPass
	case r < w.Pass+w.Replay:
		if len(s.buf) == 0 {
			return VariantPass
		}
		return VariantReplay
	case r < w.Pass+w.Replay+w.Flicker:
		if s.index%s.cfg.FlickerPeriod != s.cfg.FlickerPeriod-1 {
			return VariantPass
		}
		return VariantFlicker
	default:
		return VariantJump
	}
}

func (s *Session) push(p FramePair) {
	s.buf = append(s.buf, p)
	if len(s.buf) > s.cfg.Capacity {
		s.buf = s.buf[1:]
	}
}
