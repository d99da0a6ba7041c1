package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AlignSettings holds the time-projection tuning constants. The pad and
// threshold values are empirically chosen; change them only with reference
// recordings to validate against.
type AlignSettings struct {
	// InsertPad is subtracted from the next resolved character's start time
	// when closing an interpolated run borrowed from surrounding context.
	InsertPad float64 `yaml:"insert_pad"`
	// MaxCharDuration is the per-character duration above which a word's
	// timing is flagged as anomalous.
	MaxCharDuration float64 `yaml:"max_char_duration"`
	// GapShrinkThreshold is the minimum inter-character silence that
	// triggers gap shrinking.
	GapShrinkThreshold float64 `yaml:"gap_shrink_threshold"`
	// GapShrinkAmount is how far each side of a large gap is pulled in.
	GapShrinkAmount float64 `yaml:"gap_shrink_amount"`
}

// RenderSettings holds subtitle and timeline rendering parameters.
type RenderSettings struct {
	CJKCharsPerLine   int `yaml:"cjk_chars_per_line"`
	LatinCharsPerLine int `yaml:"latin_chars_per_line"`

	// FCPXML timing. Timescale units per second, frame duration in those
	// units, and the lag offset applied to seamless-mode cue durations.
	Timescale        int `yaml:"timescale"`
	FrameDuration    int `yaml:"frame_duration"`
	SeamlessLagUnits int `yaml:"seamless_lag_units"`

	// Title styling, one set per lane.
	SourceFont           string `yaml:"source_font"`
	SourceFontSize       int    `yaml:"source_font_size"`
	SourceFontColor      string `yaml:"source_font_color"`
	SourceBold           bool   `yaml:"source_bold"`
	SourceAlignment      string `yaml:"source_alignment"`
	TranslationFont      string `yaml:"translation_font"`
	TranslationFontSize  int    `yaml:"translation_font_size"`
	TranslationFontColor string `yaml:"translation_font_color"`
	TranslationBold      bool   `yaml:"translation_bold"`
	TranslationAlignment string `yaml:"translation_alignment"`
}

// SegmentSettings holds the no-reference fallback pipeline parameters.
type SegmentSettings struct {
	MinSubtitleDuration float64 `yaml:"min_subtitle_duration"`
	MaxSubtitleDuration float64 `yaml:"max_subtitle_duration"`
	MinSubtitleGap      float64 `yaml:"min_subtitle_gap"`
	CJKCPS              float64 `yaml:"cjk_cps"`
	LatinCPS            float64 `yaml:"latin_cps"`
}

// STTSettings configures the speech-to-text provider endpoint.
type STTSettings struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutMin int    `yaml:"timeout_min"`
}

// Config holds the full application configuration.
type Config struct {
	Align   AlignSettings   `yaml:"align"`
	Render  RenderSettings  `yaml:"render"`
	Segment SegmentSettings `yaml:"segment"`
	STT     STTSettings     `yaml:"stt"`

	MaxConcurrent      int `yaml:"max_concurrent"`
	APIRateLimitPerMin int `yaml:"rate_limit_per_min"`
}

// Default returns a Config with the product's stock values.
func Default() *Config {
	return &Config{
		Align: AlignSettings{
			InsertPad:          0.1,
			MaxCharDuration:    0.2,
			GapShrinkThreshold: 0.3,
			GapShrinkAmount:    0.1,
		},
		Render: RenderSettings{
			CJKCharsPerLine:      25,
			LatinCharsPerLine:    42,
			Timescale:            3000,
			FrameDuration:        100,
			SeamlessLagUnits:     34,
			SourceFont:           "Helvetica",
			SourceFontSize:       52,
			SourceFontColor:      "1 1 1 1",
			SourceBold:           false,
			SourceAlignment:      "center",
			TranslationFont:      "Helvetica",
			TranslationFontSize:  40,
			TranslationFontColor: "1 1 0.3 1",
			TranslationBold:      false,
			TranslationAlignment: "center",
		},
		Segment: SegmentSettings{
			MinSubtitleDuration: 0.83,
			MaxSubtitleDuration: 12.0,
			MinSubtitleGap:      0.083,
			CJKCPS:              11,
			LatinCPS:            15,
		},
		STT: STTSettings{
			Endpoint:   "http://127.0.0.1:9000/v1/transcribe",
			Model:      "large-v3",
			TimeoutMin: 30,
		},
		MaxConcurrent:      3,
		APIRateLimitPerMin: 30,
	}
}

// Load reads a YAML settings file over the defaults. A missing file is not
// an error; flags and defaults cover everything.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks user-supplied values and fills gaps with defaults.
func (c *Config) Validate() error {
	d := Default()

	if c.Align.InsertPad < 0 {
		return fmt.Errorf("align.insert_pad must be >= 0")
	}
	if c.Align.MaxCharDuration <= 0 {
		c.Align.MaxCharDuration = d.Align.MaxCharDuration
	}
	if c.Align.GapShrinkThreshold <= 0 {
		c.Align.GapShrinkThreshold = d.Align.GapShrinkThreshold
	}
	if c.Align.GapShrinkAmount <= 0 {
		c.Align.GapShrinkAmount = d.Align.GapShrinkAmount
	}
	if c.Align.GapShrinkAmount*2 > c.Align.GapShrinkThreshold {
		return fmt.Errorf("align.gap_shrink_amount %.3f would invert gaps at threshold %.3f",
			c.Align.GapShrinkAmount, c.Align.GapShrinkThreshold)
	}

	if c.Render.Timescale <= 0 {
		c.Render.Timescale = d.Render.Timescale
	}
	if c.Render.FrameDuration <= 0 {
		c.Render.FrameDuration = d.Render.FrameDuration
	}
	if c.Render.FrameDuration > c.Render.Timescale {
		return fmt.Errorf("render.frame_duration %d exceeds timescale %d",
			c.Render.FrameDuration, c.Render.Timescale)
	}
	if c.Render.CJKCharsPerLine <= 0 {
		c.Render.CJKCharsPerLine = d.Render.CJKCharsPerLine
	}
	if c.Render.LatinCharsPerLine <= 0 {
		c.Render.LatinCharsPerLine = d.Render.LatinCharsPerLine
	}

	if c.Segment.MinSubtitleDuration <= 0 {
		c.Segment.MinSubtitleDuration = d.Segment.MinSubtitleDuration
	}
	if c.Segment.MaxSubtitleDuration <= 0 {
		c.Segment.MaxSubtitleDuration = d.Segment.MaxSubtitleDuration
	}
	if c.Segment.MinSubtitleGap < 0 {
		c.Segment.MinSubtitleGap = d.Segment.MinSubtitleGap
	}
	if c.Segment.CJKCPS <= 0 {
		c.Segment.CJKCPS = d.Segment.CJKCPS
	}
	if c.Segment.LatinCPS <= 0 {
		c.Segment.LatinCPS = d.Segment.LatinCPS
	}

	if c.STT.Endpoint == "" {
		c.STT.Endpoint = d.STT.Endpoint
	}
	if c.STT.TimeoutMin <= 0 {
		c.STT.TimeoutMin = d.STT.TimeoutMin
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	if c.APIRateLimitPerMin <= 0 {
		c.APIRateLimitPerMin = d.APIRateLimitPerMin
	}
	return nil
}
