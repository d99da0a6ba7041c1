package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"scriptcue/internal/align"
	"scriptcue/internal/config"
	"scriptcue/internal/ffmpeg"
	"scriptcue/internal/render"
	"scriptcue/internal/script"
	"scriptcue/internal/segment"
	"scriptcue/internal/transcript"
)

// Options configures one alignment job.
type Options struct {
	InputPath        string   // audio/video file; optional when TranscriptPath is set
	TranscriptPath   string   // precomputed transcript JSON; skips the STT call
	ScriptPath       string   // reference script; empty switches to the segmentation fallback
	TranslationPaths []string // translation scripts, lane tag from file name
	OutputPath       string   // base output path; default derives from the input
	Language         string

	GenerateMerged   bool
	SourceFirst      bool
	ExportTimeline   bool
	SeamlessTimeline bool
	ExportDocx       bool
	SaveJSON         bool

	Config  *config.Config
	Limiter *rate.Limiter // provider call pacing; nil means unpaced
}

// Run executes one job end to end: obtain a transcript, align it against the
// script (or segment it when there is none), and write the output documents.
// Alignment hard failures surface as errors after logging their diagnostics;
// no outputs are written in that case.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	outputBase, err := resolveOutputBase(opts)
	if err != nil {
		return err
	}

	// Probe media for the recording duration; alignment survives without it.
	duration := 0.0
	if opts.InputPath != "" && ffmpeg.Available() {
		info, err := ffmpeg.Probe(ctx, opts.InputPath)
		if err != nil {
			slog.Warn("media probe failed", "err", err)
		} else {
			duration = info.Duration
			slog.Info("input media", "file", filepath.Base(opts.InputPath),
				"duration", fmt.Sprintf("%.1fs", info.Duration), "codec", info.AudioCodec)
		}
	}

	t, err := obtainTranscript(ctx, opts, cfg)
	if err != nil {
		return err
	}
	transcript.Clean(t)

	if t.Empty() {
		return fmt.Errorf("empty transcript received")
	}

	if opts.SaveJSON {
		jsonPath := outputBase + ".json"
		if err := transcript.SaveFile(jsonPath, t); err != nil {
			slog.Warn("failed to save transcript JSON", "err", err)
		} else {
			slog.Info("transcript JSON saved", "path", jsonPath)
		}
	}

	langCode := opts.Language
	if langCode == "" || strings.EqualFold(langCode, "auto") {
		langCode = t.LanguageCode
	}
	maxCPL := cfg.Render.LatinCharsPerLine
	if config.IsCJK(langCode) {
		maxCPL = cfg.Render.CJKCharsPerLine
	}

	if opts.ScriptPath == "" {
		return runSegmentFallback(t, langCode, maxCPL, outputBase, duration, opts, cfg)
	}

	doc, err := script.LoadFile(opts.ScriptPath, "")
	if err != nil {
		return err
	}

	var translations []*script.Document
	for _, p := range opts.TranslationPaths {
		tr, err := script.LoadFile(p, laneTag(p))
		if err != nil {
			return err
		}
		translations = append(translations, tr)
	}

	observer := align.ObserverFunc(func(s align.Stage) {
		slog.Debug("alignment checkpoint", "stage", string(s))
	})

	result, err := align.Run(align.Input{
		Script:       doc,
		Translations: translations,
		Transcript:   t,
		Duration:     duration,
		Language:     langCode,
		Settings:     cfg.Align,
		Observer:     observer,
	})
	if err != nil {
		logAlignFailure(err)
		return err
	}

	if result.Status == align.StatusEmptyScript {
		slog.Info("script has no content, nothing to align", "script", filepath.Base(opts.ScriptPath))
		return nil
	}

	for _, a := range result.Anomalies {
		slog.Warn("word timing anomaly", "kind", string(a.Kind), "word", a.Word,
			"start", a.Start, "end", a.End)
	}
	for _, lane := range result.SkippedLanes {
		slog.Warn("translation lane cue count diverges from script, skipping", "lane", lane)
	}

	return writeOutputs(result.Cues, result.Lanes, outputBase, duration, maxCPL, opts, cfg)
}

func runSegmentFallback(t *transcript.Transcript, langCode string, maxCPL int, outputBase string, duration float64, opts Options, cfg *config.Config) error {
	slog.Info("no reference script, segmenting transcript directly")
	cues := segment.Cues(t, langCode, cfg.Segment, maxCPL)
	if len(cues) == 0 {
		return fmt.Errorf("segmentation produced no cues")
	}
	return writeOutputs(cues, nil, outputBase, duration, maxCPL, opts, cfg)
}

func writeOutputs(cues []align.Cue, lanes []align.Lane, outputBase string, duration float64, maxCPL int, opts Options, cfg *config.Config) error {
	srtPath := outputBase + ".srt"
	if err := os.WriteFile(srtPath, []byte(render.SRT(cues, maxCPL)), 0644); err != nil {
		return fmt.Errorf("write SRT file: %w", err)
	}
	slog.Info("subtitle file saved", "path", srtPath, "cues", len(cues))

	for _, lane := range lanes {
		lanePath := outputBase + "." + lane.Tag + ".srt"
		if err := os.WriteFile(lanePath, []byte(render.SRTLane(cues, lane.Texts, maxCPL)), 0644); err != nil {
			return fmt.Errorf("write lane SRT %s: %w", lane.Tag, err)
		}
		slog.Info("translation subtitle saved", "lane", lane.Tag, "path", lanePath)
	}

	if opts.GenerateMerged && len(lanes) > 0 {
		mergedPath := outputBase + ".merged.srt"
		content := render.SRTMerged(cues, lanes[0].Texts, opts.SourceFirst, maxCPL)
		if err := os.WriteFile(mergedPath, []byte(content), 0644); err != nil {
			return fmt.Errorf("write merged SRT: %w", err)
		}
		slog.Info("merged subtitle saved", "path", mergedPath)
	}

	if opts.ExportTimeline {
		timelinePath := outputBase + ".fcpxml"
		doc := render.FCPXML(cues, lanes, render.TimelineOptions{
			ProjectName: filepath.Base(outputBase),
			Seamless:    opts.SeamlessTimeline,
			Duration:    duration,
			Settings:    cfg.Render,
		})
		if err := os.WriteFile(timelinePath, []byte(doc), 0644); err != nil {
			return fmt.Errorf("write timeline: %w", err)
		}
		slog.Info("timeline saved", "path", timelinePath, "seamless", opts.SeamlessTimeline)
	}

	if opts.ExportDocx {
		docxPath := outputBase + ".docx"
		if err := render.Docx(filepath.Base(outputBase), cues, lanes, docxPath); err != nil {
			return fmt.Errorf("write docx: %w", err)
		}
		slog.Info("transcript document saved", "path", docxPath)
	}

	return nil
}

func obtainTranscript(ctx context.Context, opts Options, cfg *config.Config) (*transcript.Transcript, error) {
	if opts.TranscriptPath != "" {
		slog.Info("loading transcript", "path", filepath.Base(opts.TranscriptPath))
		return transcript.LoadFile(opts.TranscriptPath)
	}
	if opts.InputPath == "" {
		return nil, fmt.Errorf("either an input media file or a transcript file is required")
	}

	workingPath := opts.InputPath
	if ffmpeg.IsVideo(opts.InputPath) && ffmpeg.Available() {
		ext := filepath.Ext(opts.InputPath)
		base := strings.TrimSuffix(filepath.Base(opts.InputPath), ext)
		tempAudio := filepath.Join(filepath.Dir(opts.InputPath), "temp_audio_"+base+".m4a")
		slog.Info("extracting audio from video")
		if err := ffmpeg.ExtractAudio(ctx, opts.InputPath, tempAudio); err != nil {
			return nil, fmt.Errorf("extract audio: %w", err)
		}
		defer os.Remove(tempAudio)
		workingPath = tempAudio
	}

	if opts.Limiter != nil {
		if err := opts.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	progress := func(read, total int64) {
		pct := 0.0
		if total > 0 {
			pct = math.Min(float64(read)/float64(total)*100, 100)
		}
		slog.Debug("upload progress", "percent", fmt.Sprintf("%.1f%%", pct))
	}

	slog.Info("uploading to speech-to-text service", "file", filepath.Base(workingPath))
	t, err := transcript.Fetch(ctx, cfg.STT, workingPath, opts.Language, progress)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	return t, nil
}

func resolveOutputBase(opts Options) (string, error) {
	if opts.OutputPath != "" {
		return strings.TrimSuffix(opts.OutputPath, filepath.Ext(opts.OutputPath)), nil
	}
	src := opts.InputPath
	if src == "" {
		src = opts.TranscriptPath
	}
	if src == "" {
		return "", fmt.Errorf("cannot derive output path without an input")
	}
	return strings.TrimSuffix(src, filepath.Ext(src)), nil
}

// laneTag derives a translation lane identifier from a file name like
// "episode1.en.txt" -> "en"; without such a suffix the whole base name serves.
func laneTag(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(base, "."); i >= 0 && i+1 < len(base) {
		return base[i+1:]
	}
	return base
}

func logAlignFailure(err error) {
	switch {
	case errors.Is(err, align.ErrReconstruction):
		slog.Error("alignment reconstruction check failed", "err", err)
	case errors.Is(err, align.ErrUnassignedIndex):
		slog.Error("time projection left a character untimed", "err", err)
	case errors.Is(err, align.ErrParagraphDrift):
		slog.Error("paragraph resolution drifted from the character stream", "err", err)
	default:
		slog.Error("alignment failed", "err", err)
	}
}
