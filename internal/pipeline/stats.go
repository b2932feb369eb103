package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int
	Current          int
	Generated        int
	Skipped          int
	Failed           int
	Uploaded         int
	Thumbnails       int
	TotalOutputBytes int64
}

// OK reports whether no file failed.
func (s *RunStats) OK() bool {
	return s.Failed == 0
}
