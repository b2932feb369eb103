package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/probe"
)

// --- Helper builders ---

func meta(duration float64, w, h int, fps float64) probe.VideoMetadata {
	return probe.VideoMetadata{Duration: duration, Width: w, Height: h, FPS: fps}
}

func offsets(marks []Timemark) []float64 {
	out := make([]float64, len(marks))
	for i, m := range marks {
		out[i] = m.Offset
	}
	return out
}

// --- Timemark planner ---

func TestTimemarks_SecondsCount(t *testing.T) {
	cases := []struct {
		duration float64
		step     float64
	}{
		{10, 2},
		{10, 3},
		{5, 2},
		{7.5, 2.5},
		{0.5, 1},
		{1437.123, 10},
		{60, 0.25},
	}
	for _, tc := range cases {
		marks, err := Timemarks(SamplingPolicy{SecondsPerThumbnail: tc.step}, meta(tc.duration, 640, 360, 0))
		require.NoError(t, err)

		want := int(math.Ceil(tc.duration / tc.step))
		assert.Len(t, marks, want, "D=%v s=%v", tc.duration, tc.step)
		require.NotEmpty(t, marks)
		assert.Equal(t, 0.0, marks[0].Offset)
		for i, m := range marks {
			assert.Equal(t, i, m.Index)
			assert.Less(t, m.Offset, tc.duration)
			if i > 0 {
				assert.Greater(t, m.Offset, marks[i-1].Offset)
			}
		}
	}
}

func TestTimemarks_StopsOnRawOffset(t *testing.T) {
	// 2*0.5002 reaches the duration exactly but rounds down to 1.000.
	marks, err := Timemarks(SamplingPolicy{SecondsPerThumbnail: 0.5002}, meta(1.0004, 640, 360, 0))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5}, offsets(marks))
}

func TestTimemarks_SecondsFormatting(t *testing.T) {
	marks, err := Timemarks(SamplingPolicy{SecondsPerThumbnail: 0.1}, meta(0.35, 640, 360, 0))
	require.NoError(t, err)
	require.Len(t, marks, 4)
	assert.Equal(t, []float64{0, 0.1, 0.2, 0.3}, offsets(marks))
	assert.Equal(t, "0.300", marks[3].Formatted, "no float drift from accumulation")
}

func TestTimemarks_FramesSpacing(t *testing.T) {
	cases := []struct {
		frames int
		fps    float64
	}{
		{48, 24},
		{24, 24000.0 / 1001.0},
		{10, 30},
		{1, 25},
	}
	for _, tc := range cases {
		marks, err := Timemarks(SamplingPolicy{FramesPerThumbnail: tc.frames}, meta(20, 640, 360, tc.fps))
		require.NoError(t, err)
		require.Greater(t, len(marks), 1)

		step := float64(tc.frames) / tc.fps
		for i := 1; i < len(marks); i++ {
			assert.InDelta(t, step, marks[i].Offset-marks[i-1].Offset, 0.0011,
				"f=%d fps=%v at %d", tc.frames, tc.fps, i)
		}
	}
}

func TestTimemarks_FramesWithoutFPS(t *testing.T) {
	_, err := Timemarks(SamplingPolicy{FramesPerThumbnail: 10}, meta(20, 640, 360, 0))
	require.Error(t, err)
	assert.True(t, failure.IsConfig(err))
}

func TestTimemarks_EmptyDuration(t *testing.T) {
	for _, d := range []float64{0, -3} {
		for _, p := range []SamplingPolicy{
			{SecondsPerThumbnail: 1},
			{FramesPerThumbnail: 5},
			{Timemarks: []float64{0, 1}},
		} {
			marks, err := Timemarks(p, meta(d, 640, 360, 25))
			require.NoError(t, err)
			assert.Empty(t, marks, "duration %v policy %s", d, p.Kind())
		}
	}
}

func TestTimemarks_Explicit(t *testing.T) {
	marks, err := Timemarks(SamplingPolicy{Timemarks: []float64{0, 1.23456, 4}}, meta(10, 640, 360, 0))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1.235, 4}, offsets(marks))
	assert.Equal(t, "1.235", marks[1].Formatted)
}

func TestTimemarks_ExplicitInvalid(t *testing.T) {
	cases := map[string][]float64{
		"negative":          {-1, 2},
		"decreasing":        {3, 2},
		"duplicate":         {1, 1},
		"duplicate rounded": {1.0001, 1.0002},
		"not a number":      {0, math.NaN()},
	}
	for name, marks := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Timemarks(SamplingPolicy{Timemarks: marks}, meta(10, 640, 360, 0))
			require.Error(t, err)
			assert.True(t, failure.IsConfig(err))
		})
	}
}

func TestTimemarks_PolicyValidation(t *testing.T) {
	cases := []struct {
		name   string
		policy SamplingPolicy
	}{
		{"none", SamplingPolicy{}},
		{"empty explicit", SamplingPolicy{Timemarks: []float64{}}},
		{"seconds and frames", SamplingPolicy{SecondsPerThumbnail: 1, FramesPerThumbnail: 2}},
		{"seconds and explicit", SamplingPolicy{SecondsPerThumbnail: 1, Timemarks: []float64{0}}},
		{"negative seconds", SamplingPolicy{SecondsPerThumbnail: -1}},
		{"sub-millisecond seconds", SamplingPolicy{SecondsPerThumbnail: 0.0001}},
		{"negative frames", SamplingPolicy{FramesPerThumbnail: -4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Timemarks(tc.policy, meta(10, 640, 360, 25))
			require.Error(t, err)
			assert.True(t, failure.IsConfig(err))
		})
	}
}

func TestTimemarks_TooMany(t *testing.T) {
	_, err := Timemarks(SamplingPolicy{SecondsPerThumbnail: 0.001}, meta(1000, 640, 360, 0))
	require.Error(t, err)
	assert.True(t, failure.IsConfig(err))
}

func TestPolicyKind(t *testing.T) {
	assert.Equal(t, PolicySeconds, SamplingPolicy{SecondsPerThumbnail: 2}.Kind())
	assert.Equal(t, PolicyFrames, SamplingPolicy{FramesPerThumbnail: 2}.Kind())
	assert.Equal(t, PolicyExplicit, SamplingPolicy{Timemarks: []float64{1}}.Kind())
	assert.Equal(t, PolicyNone, SamplingPolicy{}.Kind())
	assert.Equal(t, "frames-per-thumbnail", PolicyFrames.String())
}

// --- Geometry resolver ---

func TestResolveSize(t *testing.T) {
	cases := []struct {
		name string
		size SizePolicy
		w, h int
		want ThumbnailSize
	}{
		{"width only keeps aspect", SizePolicy{Width: 100}, 800, 400, ThumbnailSize{100, 50}},
		{"height only keeps aspect", SizePolicy{Height: 90}, 1920, 1080, ThumbnailSize{160, 90}},
		{"rounds half up", SizePolicy{Width: 101}, 800, 400, ThumbnailSize{101, 51}},
		{"rounds down below half", SizePolicy{Width: 160}, 1920, 1081, ThumbnailSize{160, 90}},
		{"both given verbatim", SizePolicy{Width: 64, Height: 64}, 1920, 1080, ThumbnailSize{64, 64}},
		{"none uses native", SizePolicy{}, 1280, 720, ThumbnailSize{1280, 720}},
		{"tiny derived clamps to one", SizePolicy{Width: 1}, 4000, 10, ThumbnailSize{1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveSize(tc.size, meta(10, tc.w, tc.h, 0))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveSize_Errors(t *testing.T) {
	_, err := ResolveSize(SizePolicy{}, meta(10, 0, 0, 0))
	assert.True(t, failure.IsConfig(err), "no size and no native dims")

	_, err = ResolveSize(SizePolicy{Width: 100}, meta(10, 0, 0, 0))
	assert.True(t, failure.IsConfig(err), "aspect needs native dims")

	_, err = ResolveSize(SizePolicy{Width: -5}, meta(10, 640, 360, 0))
	assert.True(t, failure.IsConfig(err))

	got, err := ResolveSize(SizePolicy{Width: 32, Height: 18}, meta(10, 0, 0, 0))
	require.NoError(t, err, "explicit size needs no native dims")
	assert.Equal(t, "32x18", got.String())
}

// --- BuildPlan ---

func TestBuildPlan(t *testing.T) {
	plan, err := BuildPlan(SamplingPolicy{SecondsPerThumbnail: 2}, SizePolicy{Width: 100}, meta(5, 800, 400, 25))
	require.NoError(t, err)

	assert.Equal(t, PolicySeconds, plan.Policy)
	assert.Equal(t, []float64{0, 2, 4}, offsets(plan.Timemarks))
	assert.Equal(t, ThumbnailSize{100, 50}, plan.Size)
	assert.Equal(t, 5.0, plan.Duration)
	assert.Equal(t, 3, plan.Len())
	assert.False(t, plan.IsEmpty())
}

func TestBuildPlan_PropagatesConfigError(t *testing.T) {
	_, err := BuildPlan(SamplingPolicy{}, SizePolicy{}, meta(5, 800, 400, 25))
	assert.True(t, failure.IsConfig(err))

	_, err = BuildPlan(SamplingPolicy{SecondsPerThumbnail: 1}, SizePolicy{}, meta(5, 0, 0, 25))
	assert.True(t, failure.IsConfig(err))
}

func TestPairFrames(t *testing.T) {
	marks := []Timemark{NewTimemark(0, 0), NewTimemark(1, 2)}

	frames, err := PairFrames(marks, []string{"a.png", "b.png"})
	require.NoError(t, err)
	assert.Equal(t, "b.png", frames[1].Path)
	assert.Equal(t, 2.0, frames[1].Timemark.Offset)

	_, err = PairFrames(marks, []string{"a.png"})
	assert.Error(t, err)
}
