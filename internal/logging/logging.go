package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Key constants for structured log fields.
const (
	KeyRunID   = "runId"
	KeyVersion = "version"
	KeyState   = "state"
	KeyURL     = "url"
	KeyPath    = "path"
	KeyError   = "error"
)

var (
	mu        sync.Mutex
	output    io.Writer = os.Stderr
	level               = log.InfoLevel
	formatter           = log.TextFormatter
	loggers   []*log.Logger
)

// L returns a logger for the given component. Loggers handed out before Init
// are reconfigured when Init runs.
func L(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	l := log.NewWithOptions(output, log.Options{
		Prefix:          component,
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
	})
	loggers = append(loggers, l)
	return l
}

// Init configures every component logger. Call once after config is loaded.
// format: "json", "logfmt" or "text" (default "text")
// level: "debug", "info", "warn", "error" (default "info")
// w: writer to log to (nil = os.Stderr)
func Init(format, lvl string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	output = w
	level = parseLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	for _, l := range loggers {
		l.SetOutput(output)
		l.SetLevel(level)
		l.SetFormatter(formatter)
	}
}

func parseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
