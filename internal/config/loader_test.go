package config

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/paintmatch"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string, c color.Color, size int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	writeFile(t, path, `
resolution: 32
difficulty: 1.5
threshold: 60
mode: sequential
seed: 99
auto_advance: false
kernel: software
references:
  - name: Sunset
    color: refs/sunset_color.png
    height: refs/sunset_height.png
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Resolution != 32 || cfg.Difficulty != 1.5 || cfg.Threshold != 60 {
		t.Errorf("scoring fields = %d/%v/%d", cfg.Resolution, cfg.Difficulty, cfg.Threshold)
	}
	if cfg.ParsedMode() != paintmatch.ModeSequential || cfg.Seed != 99 || cfg.AutoAdvance {
		t.Errorf("rotation fields = %v/%d/%v", cfg.Mode, cfg.Seed, cfg.AutoAdvance)
	}
	if cfg.Kernel != KernelSoftware {
		t.Errorf("Kernel = %q, want software", cfg.Kernel)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
	if len(cfg.References) != 1 || cfg.References[0].Name != "Sunset" {
		t.Fatalf("References = %+v", cfg.References)
	}
	if got := cfg.resolve(cfg.References[0].Color); got != filepath.Join(dir, "refs", "sunset_color.png") {
		t.Errorf("resolved color path = %q", got)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	writeFile(t, path, "threshold: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	d := DefaultSession()
	if cfg.Threshold != 0 {
		t.Errorf("Threshold = %d, want explicit 0", cfg.Threshold)
	}
	if cfg.Resolution != d.Resolution || cfg.Difficulty != d.Difficulty || cfg.Mode != d.Mode {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if cfg.History.Path != d.History.Path || !cfg.History.Enabled {
		t.Errorf("History = %+v, want defaults", cfg.History)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing custom path should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "resolution: [1, 2\n")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Load() of invalid YAML = %v, want parse error", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "mode: shuffle\n")
	if _, err := Load(invalid); err == nil {
		t.Error("Load() should validate the custom file")
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	// Nothing on disk: embedded default.
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Resolution != 64 || cfg.Threshold != paintmatch.DefaultThreshold || len(cfg.References) != 0 {
		t.Errorf("embedded default = %+v", cfg)
	}

	writeFile(t, filepath.Join(work, "configs", SessionFile), "resolution: 16\n")
	if cfg, _ = Load(""); cfg.Resolution != 16 {
		t.Errorf("local configs: Resolution = %d, want 16", cfg.Resolution)
	}

	writeFile(t, filepath.Join(home, ".paintmatch", SessionFile), "resolution: 24\n")
	if cfg, _ = Load(""); cfg.Resolution != 24 {
		t.Errorf("user config: Resolution = %d, want 24", cfg.Resolution)
	}

	// An invalid user file is skipped.
	writeFile(t, filepath.Join(home, ".paintmatch", SessionFile), "resolution: -1\n")
	if cfg, _ = Load(""); cfg.Resolution != 16 {
		t.Errorf("invalid user config not skipped: Resolution = %d", cfg.Resolution)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Session)
		ok     bool
	}{
		{"default", func(*Session) {}, true},
		{"zero resolution", func(s *Session) { s.Resolution = 0 }, false},
		{"negative difficulty", func(s *Session) { s.Difficulty = -1 }, false},
		{"max difficulty", func(s *Session) { s.Difficulty = 10 }, true},
		{"difficulty above max", func(s *Session) { s.Difficulty = 10.01 }, false},
		{"NaN difficulty", func(s *Session) { s.Difficulty = float32(math.NaN()) }, false},
		{"threshold above 100", func(s *Session) { s.Threshold = 101 }, false},
		{"unknown mode", func(s *Session) { s.Mode = "shuffle" }, false},
		{"unknown kernel", func(s *Session) { s.Kernel = "cuda" }, false},
		{"gpu kernel", func(s *Session) { s.Kernel = KernelGPU }, true},
		{"negative workers", func(s *Session) { s.Workers = -2 }, false},
		{"reference without height", func(s *Session) {
			s.References = []ReferenceEntry{{Color: "a_color.png"}}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSession()
			tt.mutate(&s)
			if err := s.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadReferences(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "ocean_wave_color.png"), color.NRGBA{R: 0, G: 80, B: 200, A: 255}, 16)
	writePNG(t, filepath.Join(dir, "ocean_wave_height.png"), color.Gray{Y: 128}, 16)

	s := DefaultSession()
	s.Resolution = 8
	s.Dir = dir
	s.References = []ReferenceEntry{
		{Color: "ocean_wave_color.png", Height: "ocean_wave_height.png"},
		{Name: "Custom", Color: "ocean_wave_color.png", Height: "ocean_wave_height.png"},
	}

	refs, err := s.LoadReferences()
	if err != nil {
		t.Fatalf("LoadReferences() failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	if refs[0].Name != "Ocean Wave" || refs[1].Name != "Custom" {
		t.Errorf("names = %q, %q", refs[0].Name, refs[1].Name)
	}
	if err := refs[0].Validate(8); err != nil {
		t.Errorf("reference not resampled to 8: %v", err)
	}

	s.References = append(s.References, ReferenceEntry{Color: "missing.png", Height: "missing.png"})
	if _, err := s.LoadReferences(); err == nil || !strings.Contains(err.Error(), "reference 2") {
		t.Errorf("LoadReferences() with a missing file = %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	s := DefaultSession()
	s.References = []ReferenceEntry{{Name: "A", Color: "a.png", Height: "ah.png"}}
	data, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Resolution != s.Resolution || len(got.References) != 1 || got.References[0].Height != "ah.png" {
		t.Errorf("round trip = %+v", got)
	}
}
