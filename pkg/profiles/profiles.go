// Package profiles resolves named veiling profiles into concrete distortion
// parameters. Built-in profiles cover the common presets; an optional
// override set (parsed from an external document by pkg/config) takes
// precedence. A resolver is immutable after construction and safe for
// concurrent lookups.
package profiles

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownProfile is returned for names absent from both the override set
// and the built-ins. Callers that want a fallback must choose one explicitly.
var ErrUnknownProfile = errors.New("profiles: unknown profile")

// Built-in base strengths per profile.
var baseProfiles = map[string]float64{
	"light":   0.5,
	"privacy": 1.0,
	"ghost":   1.5,
	"chaos":   2.0,
}

// Built-in per-sensor multipliers on top of the base strength. LiDAR and RF
// tolerate stronger distortion visually; ultrasonic is more sensitive.
var sensorTweaks = map[string]map[string]float64{
	"lidar":      {"ghost": 1.2, "chaos": 1.3},
	"rf":         {"ghost": 1.1, "chaos": 1.3},
	"ultrasonic": {"chaos": 0.9},
}

// DefaultProfile is the baseline used by fail-closed policy decisions.
const DefaultProfile = "privacy"

// Override redefines one profile: a base strength, per-sensor factors (the
// "default" key applies to sensors without their own entry), and an optional
// seed-derivation salt.
type Override struct {
	Base    float64
	Sensors map[string]float64
	Salt    string
}

// Params is the concrete parameter set a distortion function consumes,
// derived from the resolved strength. The derivations mirror the scaling the
// veil functions apply internally, so a caller can inspect what a profile
// means for a given sensor.
type Params struct {
	Strength        float64
	WarpMagnitude   float64 // smooth warp offset, fraction of field size
	VoidProbability float64 // chance of a cell/sector being blanked
	GhostCount      int     // injected phantom features
	JitterAmplitude float64 // per-sample noise, fraction of value range
	Salt            string  // seed-derivation salt for this profile
}

// Resolver answers profile lookups. Zero overrides is valid: only the
// built-ins are served.
type Resolver struct {
	overrides map[string]Override
}

// NewResolver builds a resolver over the given override set. Override names
// are normalized once; the map is copied so later caller mutation cannot
// affect resolution.
func NewResolver(overrides map[string]Override) *Resolver {
	norm := make(map[string]Override, len(overrides))
	for name, ov := range overrides {
		norm[normalize(name)] = ov
	}
	return &Resolver{overrides: norm}
}

// Strength resolves a profile and sensor pair to a numeric strength.
// Precedence: override set first, then built-in base x built-in tweak.
func (r *Resolver) Strength(profile, sensor string) (float64, error) {
	p := normalize(profile)
	s := normalize(sensor)

	if ov, ok := r.overrides[p]; ok {
		base := ov.Base
		if base == 0 {
			// Override without an explicit base inherits the built-in one.
			if b, ok := baseProfiles[p]; ok {
				base = b
			} else {
				base = 1.0
			}
		}
		factor := 1.0
		if ov.Sensors != nil {
			if f, ok := ov.Sensors[s]; ok {
				factor = f
			} else if f, ok := ov.Sensors["default"]; ok {
				factor = f
			}
		}
		return base * factor, nil
	}

	base, ok := baseProfiles[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	factor := 1.0
	if tweaks, ok := sensorTweaks[s]; ok {
		if f, ok := tweaks[p]; ok {
			factor = f
		}
	}
	return base * factor, nil
}

// Params resolves the full parameter set for a profile and sensor.
func (r *Resolver) Params(profile, sensor string) (Params, error) {
	strength, err := r.Strength(profile, sensor)
	if err != nil {
		return Params{}, err
	}
	p := normalize(profile)
	salt := p
	if ov, ok := r.overrides[p]; ok && ov.Salt != "" {
		salt = ov.Salt
	}
	return Params{
		Strength:        strength,
		WarpMagnitude:   0.03 * strength,
		VoidProbability: clamp01(0.05 * strength),
		GhostCount:      int(6 * strength),
		JitterAmplitude: 0.02 * strength,
		Salt:            salt,
	}, nil
}

// Profiles lists all resolvable profile names, sorted.
func (r *Resolver) Profiles() []string {
	seen := make(map[string]bool, len(baseProfiles)+len(r.overrides))
	for name := range baseProfiles {
		seen[name] = true
	}
	for name := range r.overrides {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
