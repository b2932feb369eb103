package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/backmassage/thumbvtt/internal/term"
)

// labelKey carries a display label that overrides the level name
// (SUCCESS is an INFO entry with a green tag).
const labelKey = "_label"

const timeLayout = "2006-01-02 15:04:05"

// lineFormatter renders "<time> [LEVEL] message key=value ...".
type lineFormatter struct {
	color bool
}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	label := levelLabel(e)

	var b bytes.Buffer
	b.WriteString(e.Time.Format(timeLayout))
	b.WriteByte(' ')
	if c := labelColor(label); f.color && c != "" {
		b.WriteString(term.Paint(c, "["+label+"]"))
	} else {
		b.WriteString("[" + label + "]")
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != labelKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelLabel(e *logrus.Entry) string {
	if s, ok := e.Data[labelKey].(string); ok && s != "" {
		return s
	}
	switch e.Level {
	case logrus.WarnLevel:
		return "WARN"
	default:
		return strings.ToUpper(e.Level.String())
	}
}

func labelColor(label string) string {
	switch label {
	case "INFO":
		return term.Blue
	case "SUCCESS":
		return term.Green
	case "WARN":
		return term.Yellow
	case "ERROR", "FATAL", "PANIC":
		return term.Red
	case "DEBUG":
		return term.Cyan
	default:
		return ""
	}
}

// writerHook formats entries of the given levels to w.
type writerHook struct {
	mu        sync.Mutex
	w         io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func newWriterHook(w io.Writer, f logrus.Formatter, levels ...logrus.Level) *writerHook {
	return &writerHook{w: w, formatter: f, levels: levels}
}

func (h *writerHook) Levels() []logrus.Level { return h.levels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}
