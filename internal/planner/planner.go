package planner

import (
	"fmt"

	"github.com/backmassage/thumbvtt/internal/probe"
)

// BuildPlan produces the SamplingPlan for one video. This is the single
// decision point the pipeline calls before handing work to a sampler.
//
// Flow:
//  1. Validate the sampling policy and compute timemarks
//  2. Resolve the thumbnail size from the size policy and native dimensions
func BuildPlan(policy SamplingPolicy, size SizePolicy, meta probe.VideoMetadata) (*SamplingPlan, error) {
	marks, err := Timemarks(policy, meta)
	if err != nil {
		return nil, err
	}

	thumb, err := ResolveSize(size, meta)
	if err != nil {
		return nil, err
	}

	return &SamplingPlan{
		Policy:    policy.Kind(),
		Timemarks: marks,
		Size:      thumb,
		Duration:  meta.Duration,
	}, nil
}

// PairFrames binds sampler output paths to the plan's timemarks by index.
// Samplers that produce files in plan order use this to build their result.
func PairFrames(marks []Timemark, paths []string) ([]Frame, error) {
	if len(marks) != len(paths) {
		return nil, fmt.Errorf("have %d frames for %d timemarks", len(paths), len(marks))
	}
	frames := make([]Frame, len(marks))
	for i, tm := range marks {
		frames[i] = Frame{Timemark: tm, Path: paths[i]}
	}
	return frames, nil
}
