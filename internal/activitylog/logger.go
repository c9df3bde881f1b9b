// Package activitylog writes one JSON object per line describing recording
// and rendering lifecycle events, for operators who want a machine-readable
// trail of what termcap did without parsing stderr.
package activitylog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends JSON lines to a file. A disabled Logger (or one returned
// by Nop) discards every call without touching the filesystem.
type Logger struct {
	mu        sync.Mutex
	f         *os.File
	enabled   bool
	actor     string
	sessionID string
}

// New opens path for appending (creating it and its parent directory if
// necessary) when enabled is true. When enabled is false, the returned
// Logger is a no-op and path is never touched.
func New(enabled bool, path, actor, sessionID string) *Logger {
	l := &Logger{enabled: enabled, actor: actor, sessionID: sessionID}
	if !enabled {
		return l
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.enabled = false
		return l
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.enabled = false
		return l
	}
	l.f = f
	return l
}

// Nop returns a Logger that discards every call.
func Nop() *Logger {
	return &Logger{}
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// RecordStart logs the beginning of a PTY recording session.
func (l *Logger) RecordStart(command string, columns, rows int) {
	l.write(map[string]any{
		"event":   "record_start",
		"command": command,
		"columns": columns,
		"rows":    rows,
	})
}

// RecordEnd logs the end of a recording session, including how many events
// were written and why the loop terminated.
func (l *Logger) RecordEnd(events int, reason string) {
	l.write(map[string]any{
		"event":  "record_end",
		"events": events,
		"reason": reason,
	})
}

// FrameClamped logs a single occurrence of the max-duration clamp dropping
// idle time out of the frame stream.
func (l *Logger) FrameClamped(droppedSeconds float64, frameIndex int) {
	l.write(map[string]any{
		"event":           "frame_clamped",
		"dropped_seconds": droppedSeconds,
		"frame_index":     frameIndex,
	})
}

// RenderComplete logs a finished render: how many frames were produced and
// the output path.
func (l *Logger) RenderComplete(frames int, outputPath string, durationMs int) {
	l.write(map[string]any{
		"event":       "render_complete",
		"frames":      frames,
		"output_path": outputPath,
		"duration_ms": durationMs,
	})
}

func (l *Logger) write(fields map[string]any) {
	if !l.enabled {
		return
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if l.actor != "" {
		fields["actor"] = l.actor
	}
	if l.sessionID != "" {
		fields["session_id"] = l.sessionID
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	_, _ = l.f.Write(data)
}
