package pipeline

import (
	"github.com/backmassage/thumbvtt/internal/config"
	"github.com/backmassage/thumbvtt/internal/ffmpeg"
	"github.com/backmassage/thumbvtt/internal/logging"
	"github.com/backmassage/thumbvtt/internal/mpeg1"
	"github.com/backmassage/thumbvtt/internal/probe"
)

// NewGenerator wires the metadata provider and frame sampler selected by
// cfg.Backend. Sampled frames advance g.Progress when it is set.
func NewGenerator(cfg *config.Config, log *logging.Logger) *Generator {
	g := &Generator{Log: log}
	onFrame := func(int) {
		if g.Progress != nil {
			g.Progress.Advance()
		}
	}

	switch cfg.Backend {
	case config.BackendMPEG1:
		g.Metadata = mpeg1.Provider{}
		g.Sampler = &mpeg1.Sampler{Workers: cfg.Workers, OnFrame: onFrame}
	default:
		s := ffmpeg.NewSampler(cfg.FFmpegPath, cfg.Workers, cfg.Verbose, log)
		s.OnFrame = onFrame
		g.Metadata = probe.Prober{Path: cfg.FFprobePath}
		g.Sampler = s
	}
	return g
}

// unrecognizedInput reports whether the selected backend is likely to reject
// path by its extension alone.
func unrecognizedInput(backend config.Backend, path string) bool {
	return backend == config.BackendMPEG1 && !mpeg1.Supports(path)
}
