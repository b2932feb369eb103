package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/thumbvtt/internal/config"
	"github.com/backmassage/thumbvtt/internal/display"
	"github.com/backmassage/thumbvtt/internal/logging"
	"github.com/backmassage/thumbvtt/internal/planner"
	"github.com/backmassage/thumbvtt/internal/sprite"
	"github.com/backmassage/thumbvtt/internal/term"
)

// fileRow holds the probed per-file data for the analysis table.
type fileRow struct {
	Name       string
	Resolution string
	Duration   float64
	FPS        float64
	Thumbs     int    // -1 when no plan could be built
	Sheet      string // sheet pixel size, "" when no plan
}

// Analyze probes every input video and prints a table of duration,
// geometry, and the thumbnail plan the current flags would produce.
// Durations far from the batch's interquartile range are flagged; they
// usually mean a truncated or mis-muxed file. Returns the number of rows
// printed.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger, md MetadataProvider) int {
	files, _, err := Inputs(cfg.Input)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return 0
	}
	if len(files) == 0 {
		log.Warn("No video files found in %s", cfg.Input)
		return 0
	}

	total := len(files)
	log.Info("Analyzing %d files in %s …", total, cfg.Input)
	fmt.Println()

	bar := newProbeBar(total)
	policy, sizePolicy := cfg.Policy(), cfg.SizePolicy()
	planOK := policy.Validate() == nil

	var rows []fileRow
	var skipped int
	var durations []float64

	for _, path := range files {
		if ctx.Err() != nil {
			if bar != nil {
				_ = bar.Clear()
			}
			log.Warn("Interrupted")
			return len(rows)
		}

		meta, err := md.Probe(ctx, path)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			skipped++
			if bar != nil {
				_ = bar.Clear()
			}
			log.Warn("Skip (probe failed): %s: %v", filepath.Base(path), err)
			continue
		}

		row := fileRow{
			Name:       filepath.Base(path),
			Resolution: meta.Resolution(),
			Duration:   meta.Duration,
			FPS:        meta.FPS,
			Thumbs:     -1,
		}
		if planOK {
			if plan, err := planner.BuildPlan(policy, sizePolicy, meta); err == nil {
				row.Thumbs = plan.Len()
				if !plan.IsEmpty() {
					g := sprite.NewGrid(plan.Len(), plan.Size, cfg.Columns)
					row.Sheet = fmt.Sprintf("%dx%d", g.Width(), g.Height())
				}
			}
		}

		rows = append(rows, row)
		if row.Duration > 0 {
			durations = append(durations, row.Duration)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	if skipped > 0 {
		log.Warn("%d of %d files could not be probed", skipped, total)
	}

	if len(rows) == 0 {
		log.Warn("No files could be probed")
		return 0
	}

	f, _ := durationFences(durations)

	printAnalysisTable(rows, f)
	printAnalysisSummary(log, rows, f)
	return len(rows)
}

// durationClass grades how far a duration sits from the batch's middle half.
type durationClass int

const (
	classNormal durationClass = iota
	classOutlier
	classExtreme
)

// fences are Tukey fences over the batch durations: inner at 1.5 IQR,
// outer at 3 IQR. A zero value grades everything normal.
type fences struct {
	q1, q3 float64
	iqr    float64
}

// durationFences needs at least four samples and a nonzero spread.
func durationFences(vals []float64) (fences, bool) {
	if len(vals) < 4 {
		return fences{}, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	f := fences{q1: percentile(sorted, 25), q3: percentile(sorted, 75)}
	f.iqr = f.q3 - f.q1
	if f.iqr <= 0 {
		return fences{}, false
	}
	return f, true
}

func (f fences) grade(v float64) durationClass {
	if f.iqr == 0 || v <= 0 {
		return classNormal
	}
	switch {
	case v < f.q1-3*f.iqr || v > f.q3+3*f.iqr:
		return classExtreme
	case v < f.q1-1.5*f.iqr || v > f.q3+1.5*f.iqr:
		return classOutlier
	}
	return classNormal
}

func printAnalysisTable(rows []fileRow, f fences) {
	nameW := len("File")
	resW := len("Resolution")
	durW := len("Duration")
	fpsW := len("FPS")
	thW := len("Thumbs")
	shW := len("Sheet")

	for _, r := range rows {
		nameW = max(nameW, len(r.Name))
		resW = max(resW, len(r.Resolution))
		durW = max(durW, len(display.FormatDuration(r.Duration)))
		fpsW = max(fpsW, len(fmtFPS(r.FPS)))
		thW = max(thW, len(fmtThumbs(r.Thumbs)))
		shW = max(shW, len(r.Sheet))
	}

	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %-*s  %-*s",
		nameW, "File",
		resW, "Resolution",
		durW, "Duration",
		fpsW, "FPS",
		thW, "Thumbs",
		shW, "Sheet",
	)
	separator := "  " + strings.Repeat("─", len(header)-2)

	fmt.Println(header)
	fmt.Println(separator)

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}

		class := f.grade(r.Duration)
		durCell := colorPad(display.FormatDuration(r.Duration), durW, class)

		fmt.Printf("  %-*s  %-*s  %s  %-*s  %-*s  %-*s  %s\n",
			nameW, name,
			resW, r.Resolution,
			durCell,
			fpsW, fmtFPS(r.FPS),
			thW, fmtThumbs(r.Thumbs),
			shW, r.Sheet,
			formatFlag(class),
		)
	}
	fmt.Println()
}

func printAnalysisSummary(log *logging.Logger, rows []fileRow, f fences) {
	var outliers, extremes, thumbs int
	for _, r := range rows {
		switch f.grade(r.Duration) {
		case classExtreme:
			extremes++
		case classOutlier:
			outliers++
		}
		if r.Thumbs > 0 {
			thumbs += r.Thumbs
		}
	}

	log.Info("Analyzed %d files", len(rows))
	if thumbs > 0 {
		log.Info("  Planned thumbnails: %d", thumbs)
	}
	if f.iqr > 0 {
		log.Info("  Duration IQR: %s – %s (outlier < %s or > %s)",
			display.FormatDuration(f.q1), display.FormatDuration(f.q3),
			display.FormatDuration(math.Max(f.q1-1.5*f.iqr, 0)), display.FormatDuration(f.q3+1.5*f.iqr))
	}
	if outliers > 0 {
		log.Warn("  %d outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func fmtFPS(fps float64) string {
	if fps <= 0 {
		return "n/a"
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", fps), "0"), ".")
}

func fmtThumbs(n int) string {
	if n < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", n)
}

func formatFlag(c durationClass) string {
	switch c {
	case classExtreme:
		return term.Paint(term.Red, "[!]")
	case classOutlier:
		return term.Paint(term.Orange, "[*]")
	}
	return ""
}

// colorPad pads before coloring so escape bytes don't count toward width.
func colorPad(s string, width int, c durationClass) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch c {
	case classExtreme:
		return term.Paint(term.Red, padded)
	case classOutlier:
		return term.Paint(term.Orange, padded)
	}
	return padded
}

// newProbeBar returns a probe counter drawn on stderr, or nil when stderr
// is not interactive (the skip warnings are breadcrumbs enough there).
func newProbeBar(total int) *progressbar.ProgressBar {
	if !term.Interactive(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("  Probing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
