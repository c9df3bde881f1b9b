// Package cast reads and writes asciicast v2 session recordings: a header
// object followed by one JSON event array per line.
//
// https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
package cast

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidHeader is returned when the first non-empty line of a cast file
// is missing or does not parse as a JSON object.
var ErrInvalidHeader = errors.New("cast: invalid header")

// ErrUnsupportedVersion is returned when a header's version field is not 2.
var ErrUnsupportedVersion = errors.New("cast: unsupported version")

// EventKind distinguishes recorded output from recorded input.
type EventKind string

const (
	KindOutput EventKind = "o"
	KindInput  EventKind = "i"
)

// Header is the single JSON object that opens a cast file.
type Header struct {
	Version       int               `json:"version"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Timestamp     int64             `json:"timestamp,omitempty"`
	Duration      float64           `json:"duration,omitempty"`
	IdleTimeLimit float64           `json:"idle_time_limit,omitempty"`
	Command       string            `json:"command,omitempty"`
	Title         string            `json:"title,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
	Theme         map[string]string `json:"theme,omitempty"`
}

// Validate checks the invariants required of a header regardless of source.
func (h Header) Validate() error {
	if h.Version != 2 {
		return fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Width < 1 || h.Height < 1 {
		return fmt.Errorf("%w: width and height must be >= 1", ErrInvalidHeader)
	}
	return nil
}

// Event is one `[time, kind, payload]` record.
type Event struct {
	Time    float64
	Kind    EventKind
	Payload string
}

// Writer emits a compact header followed by one event array per line, each
// terminated with a trailing newline.
type Writer struct {
	w           io.Writer
	wroteHeader bool
}

// NewWriter wraps w. WriteHeader must be called exactly once before any
// WriteEvent call.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader marshals and writes h, omitting unset optional fields.
func (cw *Writer) WriteHeader(h Header) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("cast: marshal header: %w", err)
	}
	if _, err := cw.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cast: write header: %w", err)
	}
	cw.wroteHeader = true
	return nil
}

// WriteEvent marshals and writes one event line.
func (cw *Writer) WriteEvent(e Event) error {
	if !cw.wroteHeader {
		return fmt.Errorf("cast: write event before header")
	}
	arr := []any{e.Time, string(e.Kind), e.Payload}
	data, err := json.Marshal(arr)
	if err != nil {
		return fmt.Errorf("cast: marshal event: %w", err)
	}
	if _, err := cw.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cast: write event: %w", err)
	}
	return nil
}

// ReadAll parses a complete cast stream from r. The first non-empty line
// must be a valid header; subsequent malformed event lines are silently
// skipped rather than failing the read.
func ReadAll(r io.Reader) (Header, []Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header Header
	haveHeader := false
	var events []Event

	for sc.Scan() {
		line := sc.Bytes()
		if len(trimSpace(line)) == 0 {
			continue
		}
		if !haveHeader {
			if err := json.Unmarshal(line, &header); err != nil {
				return Header{}, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
			}
			if err := header.Validate(); err != nil {
				return Header{}, nil, err
			}
			haveHeader = true
			continue
		}

		var arr []json.RawMessage
		if err := json.Unmarshal(line, &arr); err != nil || len(arr) < 3 {
			continue
		}
		var t float64
		var kind string
		var payload string
		if err := json.Unmarshal(arr[0], &t); err != nil {
			continue
		}
		if err := json.Unmarshal(arr[1], &kind); err != nil {
			continue
		}
		if err := json.Unmarshal(arr[2], &payload); err != nil {
			continue
		}
		events = append(events, Event{Time: t, Kind: EventKind(kind), Payload: payload})
	}
	if err := sc.Err(); err != nil {
		return Header{}, nil, fmt.Errorf("cast: read: %w", err)
	}
	if !haveHeader {
		return Header{}, nil, ErrInvalidHeader
	}
	return header, events, nil
}

// Reader pulls events lazily, one line at a time, after parsing the header
// eagerly (the header must be known before any event can be interpreted).
type Reader struct {
	sc     *bufio.Scanner
	Header Header
}

// NewReader parses the header from r and returns a Reader positioned at the
// first event line.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header Header
	for sc.Scan() {
		line := sc.Bytes()
		if len(trimSpace(line)) == 0 {
			continue
		}
		if err := json.Unmarshal(line, &header); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
		if err := header.Validate(); err != nil {
			return nil, err
		}
		return &Reader{sc: sc, Header: header}, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cast: read: %w", err)
	}
	return nil, ErrInvalidHeader
}

// Next returns the next well-formed event, skipping malformed lines. The
// second return value is false at end of stream.
func (cr *Reader) Next() (Event, bool, error) {
	for cr.sc.Scan() {
		line := cr.sc.Bytes()
		if len(trimSpace(line)) == 0 {
			continue
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(line, &arr); err != nil || len(arr) < 3 {
			continue
		}
		var t float64
		var kind string
		var payload string
		if json.Unmarshal(arr[0], &t) != nil || json.Unmarshal(arr[1], &kind) != nil || json.Unmarshal(arr[2], &payload) != nil {
			continue
		}
		return Event{Time: t, Kind: EventKind(kind), Payload: payload}, true, nil
	}
	if err := cr.sc.Err(); err != nil {
		return Event{}, false, fmt.Errorf("cast: read: %w", err)
	}
	return Event{}, false, nil
}

func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
