package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	out *output

	Name  string
	Level LogLevel

	TimeFormat string
	File       string
	NoColor    bool
	JSON       bool
	NoTerminal bool
	Rotation   *LoggerRotation
}

type LoggerRotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// output is shared between a logger and all of its named children.
type output struct {
	mu     sync.Mutex
	writer io.Writer
	file   *lumberjack.Logger
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func NewLogger(name string, level LogLevel, file string, noTerminal bool) *Logger {
	l := &Logger{
		Name:       name,
		Level:      level,
		File:       file,
		NoColor:    colorDisabled(),
		NoTerminal: noTerminal,

		TimeFormat: time.DateTime,
		Rotation: &LoggerRotation{
			MaxSize:    128,
			MaxBackups: 5,
			MaxAge:     16,
		},
	}

	l.out = l.openOutput()
	return l
}

// NewWriterLogger creates a logger writing uncolored lines to w only.
func NewWriterLogger(name string, level LogLevel, w io.Writer) *Logger {
	return &Logger{
		out: &output{writer: w},

		Name:       name,
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    true,
		NoTerminal: true,
	}
}

// Discard returns a logger that drops every message below Fatal.
func Discard() *Logger {
	return NewWriterLogger("", Fatal, io.Discard)
}

func (l *Logger) openOutput() *output {
	out := &output{}
	writers := make([]io.Writer, 0, 2)

	if !l.NoTerminal {
		writers = append(writers, os.Stdout)
	}

	if l.File != "" {
		out.file = &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.Rotation.MaxSize,
			MaxBackups: l.Rotation.MaxBackups,
			MaxAge:     l.Rotation.MaxAge,
			Compress:   l.Rotation.Compress,
		}
		writers = append(writers, out.file)
	}

	// Never lose messages silently
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	out.writer = io.MultiWriter(writers...)
	return out
}

// Close releases the log file, if any. Named children share it.
func (l *Logger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if l.out.file == nil {
		return nil
	}

	return l.out.file.Close()
}

func (l *Logger) format(level LogLevel, timestamp, message string) string {
	if l.JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   l.Name,
			Message:   message,
		}

		encoded, _ := json.Marshal(entry)
		return string(encoded) + "\n"
	}

	var line strings.Builder
	colored := !l.NoTerminal && !l.NoColor
	if colored {
		line.WriteString(level.color())
	}

	fmt.Fprintf(&line, "[%s] %-5s", timestamp, level)
	if l.Name != "" {
		fmt.Fprintf(&line, " [%s]", l.Name)
	}
	line.WriteString(" " + message)

	if colored {
		line.WriteString(resetColor)
	}

	line.WriteString("\n")
	return line.String()
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.Level {
		return
	}

	line := l.format(level, time.Now().Format(l.TimeFormat), fmt.Sprintf(msg, args...))

	l.out.mu.Lock()
	io.WriteString(l.out.writer, line)
	l.out.mu.Unlock()

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named returns a child logger sharing the output, with name appended to the service name.
func (l *Logger) Named(name string) *Logger {
	if l.Name != "" {
		name = l.Name + "/" + name
	}

	child := *l
	child.Name = name
	return &child
}
