package frame

import (
	"testing"

	"github.com/rexwzh/termcap/internal/cast"
)

type fakeSource struct {
	events []cast.Event
	i      int
}

func (f *fakeSource) Next() (cast.Event, bool, error) {
	if f.i >= len(f.events) {
		return cast.Event{}, false, nil
	}
	e := f.events[f.i]
	f.i++
	return e, true, nil
}

func rowText(row Row, cols int) string {
	s := make([]rune, 0, cols)
	for c := 0; c < cols; c++ {
		if cell, ok := row[c]; ok && cell.Text != "" {
			s = append(s, []rune(cell.Text)...)
		} else {
			s = append(s, ' ')
		}
	}
	return string(s)
}

func TestHeaderOnlyProducesOneFinalFrame(t *testing.T) {
	s := NewSampler(80, 24, 1, 0, 1000)
	frames, err := s.Sample(&fakeSource{})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].StartMs != 0 || frames[0].DurationMs != 1000 {
		t.Errorf("frame = %+v, want start=0 duration=1000", frames[0])
	}
}

func TestCoalescedEventsProduceSingleFinalFrame(t *testing.T) {
	s := NewSampler(80, 24, 50, 0, 1000)
	src := &fakeSource{events: []cast.Event{
		{Time: 0.010, Kind: cast.KindOutput, Payload: "a"},
		{Time: 0.020, Kind: cast.KindOutput, Payload: "b"},
	}}
	frames, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame (both events coalesce below min), got %d", len(frames))
	}
	if frames[0].DurationMs != 1000 {
		t.Errorf("duration = %d, want 1000 (last_frame_dur)", frames[0].DurationMs)
	}
	if got := rowText(frames[0].Buffer[0], 80)[:2]; got != "ab" {
		t.Errorf("row 0 = %q, want %q", got, "ab")
	}
}

func TestMaxClampDropsTime(t *testing.T) {
	s := NewSampler(80, 24, 1, 1000, 1000)
	src := &fakeSource{events: []cast.Event{
		{Time: 0.0, Kind: cast.KindOutput, Payload: "x"},
		{Time: 5.0, Kind: cast.KindOutput, Payload: "y"},
	}}
	frames, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].StartMs != 0 || frames[0].DurationMs != 1000 {
		t.Errorf("frame0 = %+v, want start=0 duration=1000 (clamped)", frames[0])
	}
	if frames[1].StartMs != 1000 || frames[1].DurationMs != 1000 {
		t.Errorf("frame1 = %+v, want start=1000 duration=1000", frames[1])
	}
	// The emulator keeps the "x" drawn in frame 0; "y" follows it.
	if got := rowText(frames[1].Buffer[0], 80)[:2]; got != "xy" {
		t.Errorf("frame1 row 0 = %q, want %q", got, "xy")
	}
}

func TestFrameTimingInvariant(t *testing.T) {
	s := NewSampler(10, 5, 10, 500, 200)
	src := &fakeSource{events: []cast.Event{
		{Time: 0.05, Kind: cast.KindOutput, Payload: "1"},
		{Time: 0.2, Kind: cast.KindOutput, Payload: "2"},
		{Time: 2.0, Kind: cast.KindOutput, Payload: "3"},
	}}
	frames, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i := 0; i+1 < len(frames); i++ {
		if frames[i+1].StartMs != frames[i].StartMs+frames[i].DurationMs {
			t.Errorf("frame %d: start %d != prev start %d + duration %d", i+1, frames[i+1].StartMs, frames[i].StartMs, frames[i].DurationMs)
		}
		if frames[i].DurationMs < 10 {
			t.Errorf("frame %d duration %d below min 10", i, frames[i].DurationMs)
		}
		if frames[i].DurationMs > 500 {
			t.Errorf("frame %d duration %d above max 500", i, frames[i].DurationMs)
		}
	}
}

func TestWideGlyphSpacerKeepsRunContiguous(t *testing.T) {
	s := NewSampler(10, 3, 1, 0, 100)
	src := &fakeSource{events: []cast.Event{
		{Time: 0, Kind: cast.KindOutput, Payload: "你x"},
	}}
	frames, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	row := frames[len(frames)-1].Buffer[0]
	if got := row[0].Text; got != "你" {
		t.Errorf("col 0 = %q, want 你", got)
	}
	spacer, ok := row[1]
	if !ok {
		t.Fatal("expected a spacer cell at col 1")
	}
	if spacer.Text != "" {
		t.Errorf("spacer text = %q, want empty", spacer.Text)
	}
	if got := row[2].Text; got != "x" {
		t.Errorf("col 2 = %q, want x", got)
	}
}

func TestAnsiColorsResolveToClassNames(t *testing.T) {
	s := NewSampler(10, 3, 1, 0, 100)
	src := &fakeSource{events: []cast.Event{
		{Time: 0, Kind: cast.KindOutput, Payload: "\x1b[31mr\x1b[92mg\x1b[0m"},
	}}
	frames, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	row := frames[len(frames)-1].Buffer[0]
	if got := row[0].Color; got != "red" {
		t.Errorf("SGR 31 cell color = %q, want class name red", got)
	}
	if got := row[1].Color; got != "brightgreen" {
		t.Errorf("SGR 92 cell color = %q, want class name brightgreen", got)
	}
}

func TestCursorOverlayOnReversedCellStaysInverted(t *testing.T) {
	s := NewSampler(10, 3, 1, 0, 100)
	// Reverse-video cell, then cursor moved back onto it.
	src := &fakeSource{events: []cast.Event{
		{Time: 0, Kind: cast.KindOutput, Payload: "\x1b[7mA\x1b[27m\x1b[D"},
	}}
	frames, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	cell, ok := frames[len(frames)-1].Buffer[0][0]
	if !ok {
		t.Fatal("expected the cursor cell at col 0")
	}
	// A single swap of the cell's own colors, not a re-swap of its
	// already-reversed rendering.
	if cell.Color != "background" || cell.BackgroundColor != "foreground" {
		t.Errorf("cursor cell = %+v, want fg=background bg=foreground", cell)
	}
}

func TestCursorOverlaySwapsColors(t *testing.T) {
	s := NewSampler(10, 3, 1, 0, 100)
	src := &fakeSource{events: []cast.Event{
		{Time: 0, Kind: cast.KindOutput, Payload: "hi"},
	}}
	frames, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	last := frames[len(frames)-1]
	cursorRow := last.Buffer[0]
	cell, ok := cursorRow[2]
	if !ok {
		t.Fatalf("expected cursor to overlay column 2 after writing 2 chars")
	}
	if cell.Color != "background" || cell.BackgroundColor != "foreground" {
		t.Errorf("cursor cell = %+v, want fg/bg swapped from defaults", cell)
	}
}
