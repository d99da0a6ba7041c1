package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"scriptcue/internal/config"
	"scriptcue/internal/worker"

	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align <media-file>...",
	Short: "Align transcript against a reference script and emit subtitles",
	Long: `Align obtains a word-timestamped transcript for each recording (from the
speech-to-text service or a precomputed JSON file), aligns it against the
reference script, and writes SRT subtitles plus optional translation lanes,
a merged bilingual file, an FCPXML timeline, and a docx transcript.

Without --script, a sibling <input>.txt is used when present; with neither,
cues are segmented directly from the transcript.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAlign,
}

var (
	configPath     string
	language       string
	output         string
	scriptPath     string
	translations   []string
	transcriptPath string
	saveJSON       bool

	generateMerged   bool
	translationFirst bool
	exportTimeline   bool
	seamlessTimeline bool
	exportDocx       bool

	// Projection tuning flags.
	insertPad       float64
	maxCharDuration float64
	gapThreshold    float64
)

func init() {
	defaults := config.Default()

	alignCmd.Flags().StringVar(&configPath, "config", "", "YAML settings file")
	alignCmd.Flags().StringVarP(&language, "language", "l", "auto", "language: ko, ja, zh, en, auto")
	alignCmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: alongside input)")
	alignCmd.Flags().StringVarP(&scriptPath, "script", "s", "", "reference script file (.txt or .json)")
	alignCmd.Flags().StringArrayVarP(&translations, "translation", "t", nil, "translation script file (repeatable)")
	alignCmd.Flags().StringVar(&transcriptPath, "transcript", "", "precomputed transcript JSON (skips STT upload)")
	alignCmd.Flags().BoolVar(&saveJSON, "save-json", false, "save the transcript JSON alongside outputs")

	alignCmd.Flags().BoolVar(&generateMerged, "merged", false, "also write a merged bilingual subtitle file")
	alignCmd.Flags().BoolVar(&translationFirst, "translation-first", false, "translation above source in the merged file")
	alignCmd.Flags().BoolVar(&exportTimeline, "timeline", false, "also write an FCPXML timeline")
	alignCmd.Flags().BoolVar(&seamlessTimeline, "seamless", false, "stretch timeline cues to remove gaps")
	alignCmd.Flags().BoolVar(&exportDocx, "docx", false, "also write a docx transcript")

	// Projection tuning flags.
	alignCmd.Flags().Float64Var(&insertPad, "insert-pad", defaults.Align.InsertPad, "pad before the next anchored character in seconds")
	alignCmd.Flags().Float64Var(&maxCharDuration, "max-char-duration", defaults.Align.MaxCharDuration, "per-character duration sanity threshold in seconds")
	alignCmd.Flags().Float64Var(&gapThreshold, "gap-threshold", defaults.Align.GapShrinkThreshold, "inter-character silence that triggers gap shrinking")

	rootCmd.AddCommand(alignCmd)
}

func runAlign(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("insert-pad") {
		cfg.Align.InsertPad = insertPad
	}
	if cmd.Flags().Changed("max-char-duration") {
		cfg.Align.MaxCharDuration = maxCharDuration
	}
	if cmd.Flags().Changed("gap-threshold") {
		cfg.Align.GapShrinkThreshold = gapThreshold
	}

	inputs := make([]string, 0, len(args))
	for _, arg := range args {
		absPath, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", arg)
		}
		if ext := strings.ToLower(filepath.Ext(absPath)); !validInputExts[ext] {
			return fmt.Errorf("unsupported file type: %s", ext)
		}
		inputs = append(inputs, absPath)
	}

	// Setup signal handling for graceful cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := worker.Options{
		Language:         language,
		ScriptPath:       scriptPath,
		TranslationPaths: translations,
		SaveJSON:         saveJSON,
		GenerateMerged:   generateMerged,
		SourceFirst:      !translationFirst,
		ExportTimeline:   exportTimeline,
		SeamlessTimeline: seamlessTimeline,
		ExportDocx:       exportDocx,
		Config:           cfg,
	}

	if len(inputs) == 1 {
		opts.InputPath = inputs[0]
		opts.TranscriptPath = transcriptPath
		opts.OutputPath = output
		if opts.ScriptPath == "" {
			sib, trs := worker.SiblingScripts(inputs[0])
			opts.ScriptPath = sib
			if len(opts.TranslationPaths) == 0 {
				opts.TranslationPaths = trs
			}
		}
		if err := worker.Run(ctx, opts); err != nil {
			return err
		}
	} else {
		if transcriptPath != "" || output != "" {
			return fmt.Errorf("--transcript and --output apply to single-input runs only")
		}
		if err := worker.RunBatch(ctx, inputs, opts); err != nil {
			return err
		}
	}

	if !quiet {
		slog.Info("done")
	}
	return nil
}

var validInputExts = map[string]bool{
	".mp3": true, ".m4a": true, ".wav": true, ".flac": true,
	".ogg": true, ".aac": true, ".mp4": true, ".mov": true,
	".mkv": true, ".avi": true, ".flv": true, ".webm": true,
}
