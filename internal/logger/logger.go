// Package logger is a small leveled, module-tagged logger used across the
// tracker, miner and trader processes. It follows the call convention of
// logger.Info("message", "key", value, "key", value) seen throughout the
// teacher codebase (e.g. storage/database/db_manager.go's
// `var logger = log.NewModuleLogger(...)`), built on top of go-stack/stack
// for caller capture and fatih/color + mattn/go-colorable for a
// terminal-aware colored writer.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = map[Level]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

var levelColors = map[Level]*color.Color{
	LevelError: color.New(color.FgRed, color.Bold),
	LevelWarn:  color.New(color.FgYellow),
	LevelInfo:  color.New(color.FgGreen),
	LevelDebug: color.New(color.FgCyan),
	LevelTrace: color.New(color.FgWhite),
}

var (
	globalMu    sync.Mutex
	globalLevel = LevelInfo
	out         io.Writer = colorable.NewColorableStdout()
)

// SetLevel sets the process-wide verbosity threshold. Messages above this
// level are dropped. Intended to be wired from a CLI flag in cmd/.
func SetLevel(l Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLevel = l
}

// SetOutput redirects logger output, primarily for tests.
func SetOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	out = w
}

// Logger is a module-tagged leveled logger, e.g. logger.New("miner").
type Logger struct {
	module string
}

// New returns a Logger tagged with the given module name, mirroring the
// teacher's log.NewModuleLogger(log.SomeModule) convention.
func New(module string) *Logger {
	return &Logger{module: module}
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LevelTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LevelDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LevelInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LevelWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LevelError, msg, ctx) }

func (l *Logger) log(lvl Level, msg string, ctx []interface{}) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if lvl > globalLevel {
		return
	}

	c := stack.Caller(2)
	ts := time.Now().Format("15:04:05.000")

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", ts)
	levelColors[lvl].Fprintf(&b, "%-5s", levelNames[lvl])
	fmt.Fprintf(&b, " %-8s %s", l.module, msg)
	for i := 0; i+1 < len(ctx); i += 2 {
		fmt.Fprintf(&b, " %v=%v", ctx[i], ctx[i+1])
	}
	fmt.Fprintf(&b, " (%n %s:%d)\n", c, c, c)

	io.WriteString(out, b.String())
}

// Root is the default unmodule-tagged logger, used by packages that don't
// warrant their own module name.
var Root = New("root")

func init() {
	if os.Getenv("CRYPTONET_LOG_LEVEL") == "debug" {
		globalLevel = LevelDebug
	}
}
