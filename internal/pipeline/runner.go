package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/thumbvtt/internal/config"
	"github.com/backmassage/thumbvtt/internal/display"
	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/logging"
	"github.com/backmassage/thumbvtt/internal/mpeg1"
	"github.com/backmassage/thumbvtt/internal/naming"
)

const minFileSize = 1000

// Uploader publishes a generated sheet and VTT. *publish.Uploader
// satisfies it.
type Uploader interface {
	Upload(ctx context.Context, files ...string) ([]string, error)
}

// Run is the top-level batch entry point. It resolves the inputs (one file
// or a discovered directory), generates each video sequentially, uploads
// the results when up is non-nil, and returns aggregate stats.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, gen *Generator, up Uploader) RunStats {
	var stats RunStats

	files, isDir, err := Inputs(cfg.Input)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		stats.Failed++
		return stats
	}
	if isDir {
		if err := checkOutputOutsideInput(cfg); err != nil {
			log.Error("%v", err)
			stats.Failed++
			return stats
		}
	}

	stats.Total = len(files)
	resolver := naming.NewCollisionResolver()

	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		processFile(ctx, cfg, log, gen, up, path, &stats, resolver)
	}

	logSummary(cfg, log, &stats)
	return stats
}

// processFile handles one video: validate → name → skip-existing →
// generate → upload.
func processFile(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	gen *Generator,
	up Uploader,
	path string,
	stats *RunStats,
	resolver *naming.CollisionResolver,
) {
	basename := filepath.Base(path)
	log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)

	// --- Validate ---
	fi, err := os.Stat(path)
	if err != nil {
		log.Error("File not found: %s", path)
		stats.Failed++
		fmt.Println()
		return
	}
	if fi.Size() < minFileSize {
		log.Error("File too small (possibly corrupt): %s", path)
		stats.Failed++
		fmt.Println()
		return
	}

	if unrecognizedInput(cfg.Backend, path) {
		log.Warn("%s has no MPEG-1 extension (%s); the mpeg1 backend may not decode it",
			basename, strings.Join(mpeg1.Extensions, ", "))
	}

	// --- Resolve output names ---
	art := resolver.Resolve(path, naming.ForVideo(path, cfg.OutputDir))

	// --- Skip-existing check ---
	if cfg.SkipExisting && exists(art.SheetPath()) && exists(art.VTTPath()) {
		log.Warn("Skip (exists): %s", art.VTTName())
		stats.Skipped++
		fmt.Println()
		return
	}

	// --- Generate ---
	opts := NewOptions(cfg)
	opts.BaseName = art.Base

	fileGen := *gen
	fileGen.Log = log.WithField("file", basename)

	start := time.Now()
	res, err := fileGen.Generate(ctx, path, opts)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("Interrupted, %s not written", art.VTTName())
		} else {
			log.Error("%s error: %v", failure.Kind(err), err)
		}
		stats.Failed++
		fmt.Println()
		return
	}

	if res.DryRun {
		log.Success("[DRY] Would write %d thumbnails (%s, %s) -> %s",
			res.Plan.Len(), res.Plan.Size, res.Grid, art.VTTName())
		stats.Generated++
		stats.Thumbnails += res.Plan.Len()
		fmt.Println()
		return
	}

	outSize := int64(res.SheetBytes)
	if vi, err := os.Stat(res.VTTPath); err == nil {
		outSize += vi.Size()
	}
	log.Success("Wrote %d thumbnails in %s (%s, %s)",
		len(res.Thumbnails), time.Since(start).Round(time.Millisecond), res.Grid, display.FormatBytes(outSize))
	log.Info("  -> %s", filepath.Base(res.SheetPath))
	log.Info("  -> %s", filepath.Base(res.VTTPath))
	if res.FramesDir != "" {
		log.Info("  -> %s/", filepath.Base(res.FramesDir))
	}

	// --- Upload ---
	if up != nil {
		keys, err := up.Upload(ctx, res.SheetPath, res.VTTPath)
		if err != nil {
			log.Error("Upload failed: %v", err)
			stats.Failed++
			fmt.Println()
			return
		}
		log.Info("  Uploaded %s", strings.Join(keys, ", "))
		stats.Uploaded++
	}

	stats.Generated++
	stats.Thumbnails += len(res.Thumbnails)
	stats.TotalOutputBytes += outSize
	fmt.Println()
}

// checkOutputOutsideInput resolves both directories and rejects an output
// directory inside the input tree.
func checkOutputOutsideInput(cfg *config.Config) error {
	in, err := resolvePath(cfg.Input)
	if err != nil {
		return err
	}
	out, err := resolvePath(cfg.OutputDir)
	if err != nil {
		return err
	}
	return cfg.ValidatePaths(in, out)
}

// resolvePath returns an absolute, symlink-resolved path. A missing output
// directory is resolved through its parent.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs)), nil
	}
	return abs, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d files", stats.Total)

	log.Info("Sampling: %s", describePolicy(cfg))

	size := "derived from video"
	switch {
	case cfg.Width > 0 && cfg.Height > 0:
		size = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
	case cfg.Width > 0:
		size = fmt.Sprintf("width %d, height from aspect ratio", cfg.Width)
	case cfg.Height > 0:
		size = fmt.Sprintf("height %d, width from aspect ratio", cfg.Height)
	}
	log.Info("Thumbnail size: %s", size)

	if cfg.Columns > 0 {
		log.Info("Sheet columns: %d", cfg.Columns)
	} else {
		log.Info("Sheet columns: auto (near-square)")
	}
	log.Info("Backend: %s, workers: %d", cfg.Backend, cfg.Workers)
	if cfg.KeepFrames {
		log.Info("Frames: kept next to the sheet")
	}
	if cfg.Upload {
		log.Info("Upload: s3://%s/%s", cfg.S3.Bucket, strings.Trim(cfg.S3.Prefix, "/"))
	}
	fmt.Println()
}

func describePolicy(cfg *config.Config) string {
	switch {
	case cfg.SecondsPerThumbnail != 0:
		return fmt.Sprintf("one thumbnail every %ss", display.FormatSeconds(cfg.SecondsPerThumbnail))
	case cfg.FramesPerThumbnail != 0:
		return fmt.Sprintf("one thumbnail every %d frames", cfg.FramesPerThumbnail)
	default:
		return fmt.Sprintf("%d explicit timemarks", len(cfg.Timemarks))
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d generated, %d skipped, %d failed", stats.Generated, stats.Skipped, stats.Failed)
	log.Info("Summary report:")
	log.Info("  Total files processed: %d", stats.Current)
	log.Info("  Thumbnails: %d", stats.Thumbnails)

	if cfg.DryRun {
		log.Info("  Output size: n/a (dry run)")
		return
	}
	log.Info("  Output size: %s", display.FormatBytes(stats.TotalOutputBytes))
	if cfg.Upload {
		log.Info("  Uploaded: %d", stats.Uploaded)
	}
	if stats.Failed == 0 && stats.Generated > 0 {
		log.Success("  All sheets written to %s", cfg.OutputDir)
	}
}
