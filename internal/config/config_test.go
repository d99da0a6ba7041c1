package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Align.InsertPad != 0.1 {
		t.Errorf("InsertPad = %f, want 0.1", cfg.Align.InsertPad)
	}
	if cfg.Align.MaxCharDuration != 0.2 {
		t.Errorf("MaxCharDuration = %f, want 0.2", cfg.Align.MaxCharDuration)
	}
	if cfg.Render.Timescale != 3000 || cfg.Render.FrameDuration != 100 {
		t.Errorf("timeline timing = %d/%d, want 3000/100", cfg.Render.Timescale, cfg.Render.FrameDuration)
	}
	if cfg.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", cfg.MaxConcurrent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Align.InsertPad != Default().Align.InsertPad {
		t.Error("missing file should fall back to defaults")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := `
align:
    insert_pad: 0.25
render:
    latin_chars_per_line: 38
stt:
    endpoint: http://stt.internal:9000/v1/transcribe
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Align.InsertPad != 0.25 {
		t.Errorf("InsertPad = %f, want 0.25", cfg.Align.InsertPad)
	}
	if cfg.Render.LatinCharsPerLine != 38 {
		t.Errorf("LatinCharsPerLine = %d, want 38", cfg.Render.LatinCharsPerLine)
	}
	if cfg.STT.Endpoint != "http://stt.internal:9000/v1/transcribe" {
		t.Errorf("Endpoint = %q", cfg.STT.Endpoint)
	}
	// Untouched values keep their defaults.
	if cfg.Align.MaxCharDuration != 0.2 {
		t.Errorf("MaxCharDuration = %f, want default 0.2", cfg.Align.MaxCharDuration)
	}
}

func TestValidateRejectsGapInversion(t *testing.T) {
	cfg := Default()
	cfg.Align.GapShrinkThreshold = 0.2
	cfg.Align.GapShrinkAmount = 0.15 // 2*0.15 > 0.2: both sides would cross

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for gap shrink inversion")
	}
}

func TestValidateRejectsBadFrameDuration(t *testing.T) {
	cfg := Default()
	cfg.Render.FrameDuration = 5000 // above the timescale

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for frame duration above timescale")
	}
}

func TestValidateFillsZeroes(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.Render.Timescale != 3000 {
		t.Errorf("Timescale = %d, want default 3000", cfg.Render.Timescale)
	}
	if cfg.Segment.LatinCPS != 15 {
		t.Errorf("LatinCPS = %f, want default 15", cfg.Segment.LatinCPS)
	}
	if cfg.STT.Endpoint == "" {
		t.Error("Endpoint should default")
	}
}

func TestIsCJK(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ja", true},
		{"jpn", true},
		{"zh", true},
		{"zho", true},
		{"chi", true},
		{"ko", true},
		{"kor", true},
		{"jpn-JP", true}, // only the first three chars matter
		{"en", false},
		{"eng", false},
		{"auto", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsCJK(tt.code); got != tt.want {
			t.Errorf("IsCJK(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestSeparator(t *testing.T) {
	if got := Separator("ja"); got != "" {
		t.Errorf("Separator(ja) = %q, want empty", got)
	}
	if got := Separator("en"); got != " " {
		t.Errorf("Separator(en) = %q, want space", got)
	}
}
