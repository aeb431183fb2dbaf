// Package policy decides, per client and declared trust level, whether a
// consumer receives the real sensor reading or a veiled one. Resolution is
// fail-closed: a client nobody configured gets veiled data, never real.
package policy

import (
	"strings"

	"dataveil/pkg/profiles"
)

// Trust is the declared trust level of a client.
type Trust string

const (
	TrustTrusted     Trust = "trusted"
	TrustSemiTrusted Trust = "semi_trusted"
	TrustUntrusted   Trust = "untrusted"
)

// View selects which representation a client is served.
type View string

const (
	ViewReal   View = "real"
	ViewVeiled View = "veiled"
)

// Rule maps a client (or, with an empty Client, a whole trust level) to a
// sensor view. Profile optionally names the veiling profile to use; empty
// means the baseline.
type Rule struct {
	Client  string
	Trust   Trust
	View    View
	Profile string
}

// Decision is the outcome of a policy lookup.
type Decision struct {
	View    View
	Profile string
}

// Resolver evaluates rules in a fixed order: exact client match first, then
// the trust-level default (a rule with empty Client matching the declared
// trust), then the global fail-closed default (veiled, baseline profile).
// Rules are copied at construction and never mutated afterwards, so a
// resolver may be shared freely across goroutines.
type Resolver struct {
	byClient map[string]Rule
	byTrust  map[Trust]Rule
}

// NewResolver indexes the rule list. For duplicate clients or trust defaults
// the first rule wins, matching the documented "first match" evaluation of
// the external policy document.
func NewResolver(rules []Rule) *Resolver {
	r := &Resolver{
		byClient: make(map[string]Rule),
		byTrust:  make(map[Trust]Rule),
	}
	for _, rule := range rules {
		client := strings.TrimSpace(rule.Client)
		if client != "" {
			if _, ok := r.byClient[client]; !ok {
				r.byClient[client] = rule
			}
			continue
		}
		if rule.Trust != "" {
			if _, ok := r.byTrust[rule.Trust]; !ok {
				r.byTrust[rule.Trust] = rule
			}
		}
	}
	return r
}

// Resolve returns the decision for a client and its declared trust. Absent
// any matching rule the decision is veiled with the baseline profile; an
// unknown client never falls through to real data.
func (r *Resolver) Resolve(client string, declared Trust) Decision {
	if rule, ok := r.byClient[strings.TrimSpace(client)]; ok {
		return decisionFrom(rule)
	}
	if rule, ok := r.byTrust[declared]; ok {
		return decisionFrom(rule)
	}
	return Decision{View: ViewVeiled, Profile: profiles.DefaultProfile}
}

func decisionFrom(rule Rule) Decision {
	d := Decision{View: rule.View, Profile: rule.Profile}
	if d.View != ViewReal {
		// Anything other than an explicit "real" is served veiled.
		d.View = ViewVeiled
	}
	if d.View == ViewVeiled && d.Profile == "" {
		d.Profile = profiles.DefaultProfile
	}
	return d
}
