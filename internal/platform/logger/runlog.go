package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// runTimeFormat is the timestamp layout of run log lines
const runTimeFormat = "2006-01-02T15:04:05"

// NewRunLog builds the per-run logger backing the result directory's out.log.
// Lines render as "<timestamp> LEVEL: message key=value ...", timestamps in UTC;
// debug events are suppressed so the artifact stays an INFO/ERROR narrative
func NewRunLog(w io.Writer) Logger {
	cw := zerolog.ConsoleWriter{
		Out:     w,
		NoColor: true,
		FormatTimestamp: func(i any) string {
			s, ok := i.(string)
			if !ok {
				return fmt.Sprint(i)
			}
			// events embed RFC3339Nano (set by Init); re-render in UTC
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return s
			}
			return t.UTC().Format(runTimeFormat)
		},
		FormatLevel: func(i any) string {
			s, ok := i.(string)
			if !ok || s == "" {
				return "INFO:"
			}
			return strings.ToUpper(s) + ":"
		},
	}
	return zerolog.New(cw).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
