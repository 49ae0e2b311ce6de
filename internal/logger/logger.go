package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Fields represents structured logging fields
type Fields map[string]interface{}

// Logger provides leveled structured logging. Each backend instance
// owns its own Logger; there is no process-wide default.
type Logger struct {
	mu        sync.Mutex
	level     Level
	output    io.Writer
	component string
	format    string // "text" or "json"
}

// New creates a logger writing to stderr.
func New(levelStr, format, component string) *Logger {
	return &Logger{
		level:     parseLevel(levelStr),
		output:    os.Stderr,
		component: component,
		format:    format,
	}
}

// SetOutput redirects log output, mainly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// WithComponent creates a new logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		level:     l.level,
		output:    l.output,
		component: component,
		format:    l.format,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(DEBUG, msg, mergeFields(fields...))
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(INFO, msg, mergeFields(fields...))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(WARN, msg, mergeFields(fields...))
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(ERROR, msg, mergeFields(fields...))
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	if l.format == "json" {
		l.logJSON(timestamp, level, msg, fields)
	} else {
		l.logText(timestamp, level, msg, fields)
	}
}

// logText logs in human-readable text format:
// [TIMESTAMP] LEVEL [COMPONENT] message key=value key=value
func (l *Logger) logText(timestamp string, level Level, msg string, fields Fields) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("[%s] %-5s", timestamp, levelNames[level]))

	if l.component != "" {
		output.WriteString(fmt.Sprintf(" [%s]", l.component))
	}

	output.WriteString(fmt.Sprintf(" %s", msg))

	for k, v := range fields {
		output.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}

	output.WriteString("\n")
	fmt.Fprint(l.output, output.String())
}

// logJSON logs one JSON object per line
func (l *Logger) logJSON(timestamp string, level Level, msg string, fields Fields) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     levelNames[level],
		"message":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			entry[k] = err.Error()
			continue
		}
		entry[k] = v
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.output, `{"level":"ERROR","message":"failed to encode log entry: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(l.output, "%s\n", data)
}

// parseLevel converts string to Level
func parseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// mergeFields combines multiple Fields maps
func mergeFields(fields ...Fields) Fields {
	if len(fields) == 0 {
		return Fields{}
	}

	result := Fields{}
	for _, f := range fields {
		for k, v := range f {
			result[k] = v
		}
	}
	return result
}
