package sprite

import (
	"bytes"
	"fmt"
	"math"

	"github.com/backmassage/thumbvtt/internal/planner"
)

// Cue is one WebVTT cue pointing at a sheet cell.
type Cue struct {
	Start  float64
	End    float64
	Region Region
	Ref    string // "<sheet>#xywh=x,y,w,h"
}

// BuildCues derives one cue per timemark. Cue i spans [mark i, mark i+1);
// the last cue ends at the video duration. sheetName must be the sheet's
// basename so the reference resolves relative to the VTT file.
func BuildCues(plan *planner.SamplingPlan, grid Grid, sheetName string) []Cue {
	marks := plan.Timemarks
	cues := make([]Cue, len(marks))
	for i, tm := range marks {
		end := plan.Duration
		if i+1 < len(marks) {
			end = marks[i+1].Offset
		}
		r := grid.Cell(i)
		cues[i] = Cue{
			Start:  tm.Offset,
			End:    end,
			Region: r,
			Ref:    sheetName + "#" + r.Fragment(),
		}
	}
	return cues
}

// RenderVTT serializes cues as a WebVTT document:
//
//	WEBVTT
//
//	00:00:00.000 --> 00:00:02.000
//	clip.png#xywh=0,0,64,48
//
// Output depends only on the cues, so reruns are byte-identical.
func RenderVTT(cues []Cue) []byte {
	var b bytes.Buffer
	b.WriteString("WEBVTT\n\n")
	for _, c := range cues {
		b.WriteString(FormatTimestamp(c.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(c.End))
		b.WriteByte('\n')
		b.WriteString(c.Ref)
		b.WriteString("\n\n")
	}
	return b.Bytes()
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm. Hours are not capped at
// two digits. Negative input is clamped to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3600000
	m := ms / 60000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}
