package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"scriptcue/internal/config"
)

// RunBatch aligns several recordings concurrently. Every job is an
// independent alignment invocation, so the only coordination needed is
// bounding parallelism and pacing provider calls.
func RunBatch(ctx context.Context, inputs []string, base Options) error {
	cfg := base.Config
	if cfg == nil {
		cfg = config.Default()
		base.Config = cfg
	}

	slog.Info("starting batch alignment",
		"inputs", len(inputs),
		"max_concurrent", cfg.MaxConcurrent,
		"rate_limit_rpm", cfg.APIRateLimitPerMin)

	// Rate limiter: tokens per second = RPM / 60.
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.APIRateLimitPerMin)/60.0), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrent)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			slog.Info("starting job", "job", fmt.Sprintf("%d/%d", i+1, len(inputs)),
				"input", filepath.Base(input))

			opts := base
			opts.InputPath = input
			opts.TranscriptPath = ""
			opts.OutputPath = ""
			opts.Limiter = limiter
			if opts.ScriptPath == "" {
				opts.ScriptPath, opts.TranslationPaths = SiblingScripts(input)
			}

			if err := Run(gctx, opts); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(input), err)
			}
			return nil
		})
	}

	return g.Wait()
}

// SiblingScripts looks next to a media file for its reference script
// (<base>.txt) and translation scripts (<base>.<lane>.txt).
func SiblingScripts(mediaPath string) (string, []string) {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))

	scriptPath := ""
	if _, err := os.Stat(base + ".txt"); err == nil {
		scriptPath = base + ".txt"
	}

	matches, _ := filepath.Glob(base + ".*.txt")
	var translations []string
	for _, m := range matches {
		if m != scriptPath {
			translations = append(translations, m)
		}
	}

	return scriptPath, translations
}
