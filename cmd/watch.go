package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"scriptcue/internal/config"
	"scriptcue/internal/watcher"
	"scriptcue/internal/worker"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and align new media files as they appear",
	Long: `Watch monitors a directory for new audio or video files and runs the
alignment pipeline on each one. Reference scripts are picked up from
sibling files: <name>.txt as the script, <name>.<lane>.txt as translations.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchConfigPath string
	watchLanguage   string
	watchMerged     bool
	watchTimeline   bool
	watchSeamless   bool
	watchDocx       bool
)

func init() {
	watchCmd.Flags().StringVar(&watchConfigPath, "config", "", "YAML settings file")
	watchCmd.Flags().StringVarP(&watchLanguage, "language", "l", "auto", "language: ko, ja, zh, en, auto")
	watchCmd.Flags().BoolVar(&watchMerged, "merged", false, "also write merged bilingual subtitle files")
	watchCmd.Flags().BoolVar(&watchTimeline, "timeline", false, "also write FCPXML timelines")
	watchCmd.Flags().BoolVar(&watchSeamless, "seamless", false, "stretch timeline cues to remove gaps")
	watchCmd.Flags().BoolVar(&watchDocx, "docx", false, "also write docx transcripts")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(watchConfigPath)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	limiter := rate.NewLimiter(rate.Limit(float64(cfg.APIRateLimitPerMin)/60.0), 1)

	handler := func(ctx context.Context, path string) error {
		script, translations := worker.SiblingScripts(path)
		return worker.Run(ctx, worker.Options{
			InputPath:        path,
			ScriptPath:       script,
			TranslationPaths: translations,
			Language:         watchLanguage,
			GenerateMerged:   watchMerged,
			SourceFirst:      true,
			ExportTimeline:   watchTimeline,
			SeamlessTimeline: watchSeamless,
			ExportDocx:       watchDocx,
			Config:           cfg,
			Limiter:          limiter,
		})
	}

	w, err := watcher.New(dir, cfg.MaxConcurrent, handler)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}
