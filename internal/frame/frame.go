// Package frame drives a VT/ANSI screen emulator from a cast event stream,
// grouping events into time-bounded frames and snapshotting the visible
// buffer (including cursor overlay) at each frame boundary.
package frame

import (
	headlessterm "github.com/danielgatis/go-headless-term"

	"github.com/rexwzh/termcap/internal/cast"
)

// CharacterCell is one rendered glyph position: a grapheme plus the
// foreground/background tokens and style flags needed to draw it.
type CharacterCell struct {
	Text            string
	Color           string
	BackgroundColor string
	Bold            bool
	Italics         bool
	Underscore      bool
	Strikethrough   bool
}

// Row is a sparse column -> cell mapping; absent columns render as
// background.
type Row map[int]CharacterCell

// TimedFrame is one screen snapshot paired with its position in the
// timeline.
type TimedFrame struct {
	StartMs    int
	DurationMs int
	Buffer     map[int]Row
}

// EventSource is anything that can be pulled lazily for "o"/"i" events, the
// shape cast.Reader implements.
type EventSource interface {
	Next() (cast.Event, bool, error)
}

// Sampler groups a cast event stream into TimedFrames by replaying each
// group into a VT/ANSI emulator and snapshotting its buffer.
type Sampler struct {
	term *headlessterm.Terminal
	cols int
	rows int

	minFrameDurMs  int
	maxFrameDurMs  int // 0 means unset
	lastFrameDurMs int

	// OnClamp, when set, is called each time the max-duration clamp drops
	// idle time, with the seconds dropped and the index of the frame being
	// emitted.
	OnClamp func(droppedSeconds float64, frameIndex int)
}

// NewSampler constructs a Sampler for a (cols, rows) geometry. minFrameDurMs
// is floored to 1; maxFrameDurMs of 0 means unset (no clamp).
func NewSampler(cols, rows, minFrameDurMs, maxFrameDurMs, lastFrameDurMs int) *Sampler {
	if minFrameDurMs < 1 {
		minFrameDurMs = 1
	}
	return &Sampler{
		term:           headlessterm.New(headlessterm.WithSize(rows, cols)),
		cols:           cols,
		rows:           rows,
		minFrameDurMs:  minFrameDurMs,
		maxFrameDurMs:  maxFrameDurMs,
		lastFrameDurMs: lastFrameDurMs,
	}
}

// Geometry returns the (cols, rows) this sampler was constructed with.
func (s *Sampler) Geometry() (cols, rows int) {
	return s.cols, s.rows
}

// Sample consumes every "o" event from src. Events closer together than
// minFrameDurMs coalesce into one frame; a gap larger than maxFrameDurMs
// (if set) is clamped, with the suppressed
// time accumulated into dropped_time so later gaps are measured against
// wall-clock time, not frame time. A final frame is always emitted holding
// whatever is buffered when the stream ends, with duration lastFrameDurMs.
func (s *Sampler) Sample(src EventSource) ([]TimedFrame, error) {
	maxDurSec := 0.0
	if s.maxFrameDurMs > 0 {
		maxDurSec = float64(s.maxFrameDurMs) / 1000.0
	}

	currentTimeSec := 0.0
	droppedTimeSec := 0.0
	var currentBytes []byte

	var frames []TimedFrame

	for {
		e, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if e.Kind != cast.KindOutput {
			continue
		}

		gap := e.Time - (currentTimeSec + droppedTimeSec)
		if gap*1000 < float64(s.minFrameDurMs) {
			currentBytes = append(currentBytes, e.Payload...)
			continue
		}

		if maxDurSec > 0 && gap > maxDurSec {
			droppedTimeSec += gap - maxDurSec
			if s.OnClamp != nil {
				s.OnClamp(gap-maxDurSec, len(frames))
			}
			gap = maxDurSec
		}

		frames = append(frames, s.emit(currentTimeSec, gap, currentBytes))
		currentTimeSec += gap
		currentBytes = currentBytes[:0]
		currentBytes = append(currentBytes, e.Payload...)
	}

	lastDurSec := float64(s.lastFrameDurMs) / 1000.0
	frames = append(frames, s.emit(currentTimeSec, lastDurSec, currentBytes))

	return frames, nil
}

func (s *Sampler) emit(startSec, durSec float64, payload []byte) TimedFrame {
	if len(payload) > 0 {
		_, _ = s.term.Write(payload)
	}
	return TimedFrame{
		StartMs:    int(1000 * startSec),
		DurationMs: int(1000 * durSec),
		Buffer:     s.snapshot(),
	}
}

// snapshot reads the emulator's buffer as a sparse row -> column -> cell
// mapping: only cells that differ from the emulator's freshly-initialized
// default (a blank space in the template colors) are included, so untouched
// cells render as background. The cursor, if visible and in bounds,
// overlays its cell with fg/bg swapped.
func (s *Sampler) snapshot() map[int]Row {
	buf := make(map[int]Row, s.rows)
	for row := 0; row < s.rows; row++ {
		var line Row
		for col := 0; col < s.cols; col++ {
			cell := s.term.Cell(row, col)
			if cell == nil || isBlankCell(cell) {
				continue
			}
			if line == nil {
				line = make(Row)
			}
			line[col] = cellToCharacterCell(cell)
		}
		buf[row] = line
	}

	if s.term.CursorVisible() {
		cr, cc := s.term.CursorPos()
		if cr >= 0 && cr < s.rows && cc >= 0 && cc < s.cols {
			cell := s.term.Cell(cr, cc)
			if cell != nil {
				if buf[cr] == nil {
					buf[cr] = make(Row)
				}
				buf[cr][cc] = cursorOverlayCell(cell)
			}
		}
	}

	return buf
}
