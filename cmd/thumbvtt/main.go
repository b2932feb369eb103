// Command thumbvtt generates a thumbnail sprite sheet and a WebVTT track
// for seek previews, for one video or every video under a directory.
//
// It loads defaults, environment overrides, and CLI flags, validates them,
// and either runs system diagnostics (check), a probe-only report
// (analyze), or the generate pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/thumbvtt/internal/check"
	"github.com/backmassage/thumbvtt/internal/config"
	"github.com/backmassage/thumbvtt/internal/display"
	"github.com/backmassage/thumbvtt/internal/logging"
	"github.com/backmassage/thumbvtt/internal/pipeline"
	"github.com/backmassage/thumbvtt/internal/publish"
	"github.com/backmassage/thumbvtt/internal/term"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.LoadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "thumbvtt: %v\n", err)
		return 1
	}

	code := 0
	root := newRootCmd(&cfg, &code)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "thumbvtt: %v\n", err)
		return 1
	}
	return code
}

// newRootCmd builds the command tree. Each RunE stores its exit status in
// code; a returned error means the invocation itself was invalid.
func newRootCmd(cfg *config.Config, code *int) *cobra.Command {
	var flags *config.FlagState

	root := &cobra.Command{
		Use:   "thumbvtt [flags] <input> <output_dir>",
		Short: "Generate seek-preview sprite sheets and WebVTT tracks",
		Long: `thumbvtt samples frames from a video at fixed intervals (seconds or frames)
or explicit timemarks, packs them into one PNG sprite sheet, and writes a
WebVTT file whose cues point at each thumbnail with #xywh fragments.

<input> may be a video file or a directory searched recursively.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.ArbitraryArgs, // counted by FlagState.Apply
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.Apply(cfg, args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			*code = runGenerate(cfg)
			return nil
		},
	}
	flags = config.BindFlags(root.Flags(), cfg)

	root.AddCommand(newCheckCmd(cfg, code), newAnalyzeCmd(cfg, code))
	return root
}

func newCheckCmd(cfg *config.Config, code *int) *cobra.Command {
	flags := &config.FlagState{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report ffmpeg, ffprobe, frame grab, and upload readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.CheckOnly = true
			if err := flags.Apply(cfg, nil); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logging.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			display.PrintBanner(os.Stdout)
			if !check.RunCheck(cfg, log) {
				*code = 1
			}
			return nil
		},
	}
	config.BindDisplayFlags(cmd.Flags(), cfg, flags)
	return cmd
}

func newAnalyzeCmd(cfg *config.Config, code *int) *cobra.Command {
	var flags *config.FlagState
	cmd := &cobra.Command{
		Use:   "analyze [flags] <input>",
		Short: "Probe videos and print the thumbnail plan without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.ApplyDisplay(cfg)
			cfg.Input = config.NormalizeDirArg(args[0])

			log, err := logging.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gen := pipeline.NewGenerator(cfg, log)
			if pipeline.Analyze(ctx, cfg, log, gen.Metadata) == 0 {
				*code = 1
			}
			return nil
		},
	}
	flags = config.BindFlags(cmd.Flags(), cfg)
	return cmd
}

// runGenerate is the main pipeline flow once flags are valid.
func runGenerate(cfg *config.Config) int {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "thumbvtt: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available; all output goes through log from here on.
	display.PrintBanner(os.Stdout)

	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			log.Error("Cannot create output directory: %s", cfg.OutputDir)
			return 1
		}
	}

	log.Info("=== thumbvtt v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.Input)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN: no frames extracted, no files written")
	}
	log.Info("")

	// Fail fast if the selected backend cannot grab frames.
	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Signal handling. Cancel on SIGINT/SIGTERM so in-flight
	// extractions stop and no partial sheet or VTT is left behind.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping…")
			cancel()
		case <-ctx.Done():
		}
	}()

	gen := pipeline.NewGenerator(cfg, log)
	if cfg.ShowProgress && !cfg.Verbose && term.Interactive(os.Stderr) {
		gen.Progress = newProgressBar(os.Stderr)
	}

	var up pipeline.Uploader
	if cfg.Upload && !cfg.DryRun {
		u, err := newUploader(ctx, cfg)
		if err != nil {
			log.Error("Upload setup failed: %v", err)
			return 1
		}
		up = u
	}

	// Phase 4: Run pipeline (discover → probe → plan → sample → pack → upload).
	stats := pipeline.Run(ctx, cfg, log, gen, up)
	if !stats.OK() {
		return 1
	}
	return 0
}

func newUploader(ctx context.Context, cfg *config.Config) (*publish.Uploader, error) {
	u, err := publish.NewUploader(publish.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
		Bucket:    cfg.S3.Bucket,
		Prefix:    cfg.S3.Prefix,
	})
	if err != nil {
		return nil, err
	}
	if err := u.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return u, nil
}
