// Package config loads paintmatch session files.
//
// A session file names the reference pool and the scoring parameters:
//
//	resolution: 64
//	difficulty: 1.0
//	threshold: 40
//	mode: random
//	auto_advance: true
//	references:
//	  - name: Sunset
//	    color: refs/sunset_color.png
//	    height: refs/sunset_height.png
package config

import (
	"fmt"
	"path/filepath"

	"github.com/gogpu/paintmatch"
)

// Kernel names accepted in Session.Kernel.
const (
	KernelAuto     = "auto"
	KernelSoftware = "software"
	KernelGPU      = "gpu"
)

// Session contains the configuration of one painting session.
type Session struct {
	Resolution  int              `yaml:"resolution"`
	Difficulty  float32          `yaml:"difficulty"`
	Threshold   int              `yaml:"threshold"`
	Mode        string           `yaml:"mode"`
	Seed        uint64           `yaml:"seed"` // 0 selects a random seed
	AutoAdvance bool             `yaml:"auto_advance"`
	Kernel      string           `yaml:"kernel"`
	Workers     int              `yaml:"workers"`
	History     HistoryConfig    `yaml:"history"`
	References  []ReferenceEntry `yaml:"references"`

	// Dir is the directory of the loaded file. Relative reference paths are
	// resolved against it. Empty for the embedded default.
	Dir string `yaml:"-"`
}

// HistoryConfig controls the round history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ReferenceEntry points to the color and height images of one reference.
type ReferenceEntry struct {
	Name   string `yaml:"name"`
	Color  string `yaml:"color"`
	Height string `yaml:"height"`
}

// DefaultSession returns the built-in session configuration.
func DefaultSession() Session {
	return Session{
		Resolution:  64,
		Difficulty:  1,
		Threshold:   paintmatch.DefaultThreshold,
		Mode:        paintmatch.ModeRandom.String(),
		AutoAdvance: true,
		Kernel:      KernelAuto,
		History: HistoryConfig{
			Enabled: true,
			Path:    "~/.paintmatch/history.db",
		},
	}
}

// Validate reports the first invalid field.
func (s Session) Validate() error {
	if s.Resolution <= 0 {
		return fmt.Errorf("config: resolution %d must be positive", s.Resolution)
	}
	if !(s.Difficulty > 0 && s.Difficulty <= paintmatch.MaxDifficulty) {
		return fmt.Errorf("config: difficulty %v must be within (0, %d]", s.Difficulty, paintmatch.MaxDifficulty)
	}
	if s.Threshold < 0 || s.Threshold > 100 {
		return fmt.Errorf("config: threshold %d must be within [0, 100]", s.Threshold)
	}
	if _, err := paintmatch.ParseMode(s.Mode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch s.Kernel {
	case KernelAuto, KernelSoftware, KernelGPU:
	default:
		return fmt.Errorf("config: unknown kernel %q", s.Kernel)
	}
	if s.Workers < 0 {
		return fmt.Errorf("config: workers %d must not be negative", s.Workers)
	}
	for i, r := range s.References {
		if r.Color == "" || r.Height == "" {
			return fmt.Errorf("config: reference %d needs both color and height images", i)
		}
	}
	return nil
}

// ParsedMode returns the selection mode. Call Validate first.
func (s Session) ParsedMode() paintmatch.Mode {
	m, _ := paintmatch.ParseMode(s.Mode)
	return m
}

// resolve returns p relative to the session directory.
func (s Session) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// LoadReferences decodes every reference image, resampled to the session
// resolution. Entries without a name are named after their color image.
func (s Session) LoadReferences() ([]paintmatch.Reference, error) {
	refs := make([]paintmatch.Reference, 0, len(s.References))
	for i, e := range s.References {
		ref, err := paintmatch.LoadReference(s.resolve(e.Color), s.resolve(e.Height), s.Resolution)
		if err != nil {
			return nil, fmt.Errorf("config: reference %d: %w", i, err)
		}
		if e.Name != "" {
			ref.Name = e.Name
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
