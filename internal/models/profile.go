package models

import (
	"fmt"

	"github.com/desertthunder/hlsx/internal/ladder"
)

// Profile is a named expected bandwidth ladder and the options used to match it.
type Profile struct {
	Name            string   `toml:"-" yaml:"-" json:"name"`
	Bandwidths      string   `toml:"bandwidths" yaml:"bandwidths" json:"bandwidths"`                   // Whitespace separated bits per second
	VariancePercent float64  `toml:"variance_percent" yaml:"variance_percent" json:"variance_percent"` // 0 disables tolerance matching
	Unordered       bool     `toml:"unordered" yaml:"unordered" json:"unordered"`
	URLs            []string `toml:"urls" yaml:"urls" json:"urls,omitempty"`
}

// Expected returns the configured ladder entries, unparsed.
func (p Profile) Expected() []string {
	return ladder.Split(p.Bandwidths)
}

// Options converts the profile's matching settings to [ladder.Options].
func (p Profile) Options() ladder.Options {
	opts := ladder.Options{Unordered: p.Unordered}
	if p.VariancePercent != 0 {
		opts = opts.WithVariance(p.VariancePercent)
	}
	return opts
}

// Validate parses the ladder and checks the variance.
func (p Profile) Validate() error {
	if len(p.Expected()) == 0 {
		return fmt.Errorf("profile %q has no bandwidths", p.Name)
	}
	if !ladder.ValidVariance(p.VariancePercent) {
		return fmt.Errorf("profile %q has invalid variance_percent %v: must be finite and non-negative", p.Name, p.VariancePercent)
	}
	if _, err := ladder.ParseLadder(p.Expected()); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}
