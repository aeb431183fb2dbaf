// Package config loads the external profile and policy documents and turns
// them into the in-memory structures the resolvers consume. All file I/O for
// the engine lives here; the engine itself never touches the filesystem.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dataveil/pkg/policy"
	"dataveil/pkg/profiles"
)

// profileEntry mirrors one profile in profiles.yaml.
type profileEntry struct {
	Base    float64            `yaml:"base"`
	Sensors map[string]float64 `yaml:"sensors"`
	Salt    string             `yaml:"salt"`
}

// profilesDoc is the top-level structure of profiles.yaml.
type profilesDoc struct {
	Profiles map[string]profileEntry `yaml:"profiles"`
}

// policyEntry mirrors one rule in policy.yaml.
type policyEntry struct {
	Client     string `yaml:"client"`
	Trust      string `yaml:"trust"`
	SensorView string `yaml:"sensor_view"`
	Profile    string `yaml:"profile"`
}

// policyDoc is the top-level structure of policy.yaml.
type policyDoc struct {
	Policies []policyEntry `yaml:"policies"`
}

// ParseProfiles decodes a profiles document into resolver overrides.
func ParseProfiles(data []byte) (map[string]profiles.Override, error) {
	var doc profilesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse profiles: %w", err)
	}
	out := make(map[string]profiles.Override, len(doc.Profiles))
	for name, entry := range doc.Profiles {
		out[name] = profiles.Override{
			Base:    entry.Base,
			Sensors: entry.Sensors,
			Salt:    entry.Salt,
		}
	}
	return out, nil
}

// LoadProfiles reads and parses a profiles.yaml file.
func LoadProfiles(path string) (map[string]profiles.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseProfiles(data)
}

// ParsePolicies decodes a policy document into an ordered rule list.
func ParsePolicies(data []byte) ([]policy.Rule, error) {
	var doc policyDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse policies: %w", err)
	}
	rules := make([]policy.Rule, 0, len(doc.Policies))
	for _, entry := range doc.Policies {
		rules = append(rules, policy.Rule{
			Client:  entry.Client,
			Trust:   policy.Trust(entry.Trust),
			View:    policy.View(entry.SensorView),
			Profile: entry.Profile,
		})
	}
	return rules, nil
}

// LoadPolicies reads and parses a policy.yaml file.
func LoadPolicies(path string) ([]policy.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParsePolicies(data)
}
