// internal/logging/logging.go

// Package logging mirrors console activity to an append-only log file so a
// comparison session can be reconstructed after the TUI exits.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type sink struct {
	mu   sync.Mutex
	file *os.File
}

var console sink

// Init routes the standard logger to stdout and, when logPath is non-empty,
// to an append-only file at that path. Missing parent directories are
// created. Calling Init again closes the previous file first.
func Init(logPath string) error {
	console.mu.Lock()
	defer console.mu.Unlock()

	if console.file != nil {
		_ = console.file.Close()
		console.file = nil
	}

	out := io.Writer(os.Stdout)
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return err
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		console.file = file
		out = io.MultiWriter(os.Stdout, file)
	}

	log.SetOutput(out)
	return nil
}

// Close flushes nothing (writes are unbuffered) but releases the log file
// and restores the default logger output.
func Close() error {
	console.mu.Lock()
	defer console.mu.Unlock()

	if console.file == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := console.file.Close()
	console.file = nil
	return err
}

// LogEvent records a console lifecycle event.
func LogEvent(format string, args ...any) {
	log.Println(fmt.Sprintf(format, args...))
}

// LogRequest records one evaluation API round trip. Direction is "out" for
// requests issued by the console and "in" for responses.
func LogRequest(direction, host, path string, payload any) {
	log.Println(requestLine(direction, host, path, payload))
}

func requestLine(direction, host, path string, payload any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(strings.TrimSpace(direction)))
	fmt.Fprintf(&b, " host=%s", orUnknown(host))
	fmt.Fprintf(&b, " path=%s", orUnknown(path))
	fmt.Fprintf(&b, " payload=%s", payloadText(payload))
	return b.String()
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "unknown"
	}
	return v
}

// payloadText renders a request or response body on a single log line.
// Structured payloads are marshaled; raw bodies pass through as-is.
func payloadText(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
