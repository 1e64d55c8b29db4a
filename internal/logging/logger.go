// Package logging provides the leveled, optionally colored run log with an
// append-only file sink. Lines are rendered by zerolog console writers in
// the "2006-01-02 15:04:05 [LEVEL] message" shape on both sinks.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/synothumb/internal/config"
	"github.com/backmassage/synothumb/internal/term"
)

// TimeFormat is the timestamp layout of every log line.
const TimeFormat = "2006-01-02 15:04:05"

// successLevel is written into the level field of Success lines; zerolog has
// no such level, so those events are emitted with NoLevel.
const successLevel = "success"

// Logger provides leveled, optionally colored logging with optional file sink.
// It is safe for concurrent use by pipeline workers.
type Logger struct {
	mu      sync.Mutex
	zl      zerolog.Logger
	file    *os.File
	verbose bool
}

// NewLogger configures terminal colors from cfg, writes to stdout (errors to
// stderr) and, when cfg.LogFile is set, appends to that file. Call Close()
// when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	var file *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		file = f
	}

	var fileSink io.Writer
	if file != nil {
		fileSink = file
	}
	l := New(os.Stdout, os.Stderr, fileSink, cfg.Verbose)
	l.file = file
	return l, nil
}

// New builds a Logger over explicit writers. stderr receives ERROR lines in
// place of stdout; file, when non-nil, receives every line without color.
func New(stdout, stderr, file io.Writer, verbose bool) *Logger {
	color := term.Enabled()
	console := streamRouter{
		out: consoleWriter(stdout, color),
		err: consoleWriter(stderr, color),
	}

	var w zerolog.LevelWriter = console
	if file != nil {
		w = zerolog.MultiLevelWriter(console, consoleWriter(file, false))
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return &Logger{
		zl:      zerolog.New(w).Level(level).With().Timestamp().Logger(),
		verbose: verbose,
	}
}

// Discard returns a Logger that drops everything; handy in tests.
func Discard() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Verbose reports whether Debug lines are emitted.
func (l *Logger) Verbose() bool { return l.verbose }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.zl = zerolog.Nop()
		return err
	}
	return nil
}

func (l *Logger) emit(e *zerolog.Event, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Msg(fmt.Sprintf(format, args...))
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(l.zl.Info(), format, args)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.emit(l.zl.WithLevel(zerolog.NoLevel).Str(zerolog.LevelFieldName, successLevel), format, args)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(l.zl.Warn(), format, args)
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(l.zl.Error(), format, args)
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(l.zl.Debug(), format, args)
}

// streamRouter sends ERROR events to err and everything else to out.
type streamRouter struct {
	out, err io.Writer
}

func (r streamRouter) Write(p []byte) (int, error) { return r.out.Write(p) }

func (r streamRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level == zerolog.ErrorLevel {
		return r.err.Write(p)
	}
	return r.out.Write(p)
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         out,
		NoColor:     true,
		TimeFormat:  TimeFormat,
		PartsOrder:  []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i interface{}) string { return formatLevel(i, color) },
	}
}

func formatLevel(i interface{}, color bool) string {
	name, _ := i.(string)
	label := "[" + strings.ToUpper(name) + "]"
	if !color {
		return label
	}
	var c string
	switch name {
	case "debug":
		c = term.Cyan
	case "info":
		c = term.Blue
	case successLevel:
		c = term.Green
	case "warn":
		c = term.Yellow
	case "error":
		c = term.Red
	}
	if c == "" {
		return label
	}
	return c + label + term.NC
}
