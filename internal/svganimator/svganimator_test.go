package svganimator

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rexwzh/termcap/internal/frame"
	"github.com/rexwzh/termcap/internal/svgtemplate"
)

const testTemplate = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:tc="https://github.com/rexwzh/termcap" width="80" height="51" viewBox="0 0 80 51">
  <defs>
    <tc:template_settings>
      <tc:screen_geometry columns="10" rows="3"/>
    </tc:template_settings>
    <style id="generated-style"></style>
  </defs>
  <svg id="screen" width="80" height="51" viewBox="0 0 80 51"></svg>
</svg>`

func parseTemplate(t *testing.T) *svgtemplate.Template {
	t.Helper()
	tpl, err := svgtemplate.Parse(strings.NewReader(testTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tpl
}

func sampleFrames() []frame.TimedFrame {
	return []frame.TimedFrame{
		{StartMs: 0, DurationMs: 100, Buffer: map[int]frame.Row{
			0: {0: {Text: "h", Color: "foreground", BackgroundColor: "background"}},
		}},
		{StartMs: 100, DurationMs: 200, Buffer: map[int]frame.Row{
			0: {0: {Text: "h", Color: "foreground", BackgroundColor: "background"}},
			1: {0: {Text: "i", Color: "foreground", BackgroundColor: "background"}},
		}},
	}
}

func TestRenderAnimationProducesKeyframes(t *testing.T) {
	tpl := parseTemplate(t)
	var buf bytes.Buffer
	if err := RenderAnimation(tpl, sampleFrames(), 3, &buf); err != nil {
		t.Fatalf("RenderAnimation: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "@keyframes roll") {
		t.Errorf("missing @keyframes roll: %s", out)
	}
	if !strings.Contains(out, `id="screen_view"`) {
		t.Errorf("missing screen_view group: %s", out)
	}
	if !strings.Contains(out, "animation-duration: 300ms") {
		t.Errorf("expected total duration 300ms, got %s", out)
	}
}

func TestRenderAnimationOffsetsStackedFrames(t *testing.T) {
	tpl := parseTemplate(t)
	var buf bytes.Buffer
	if err := RenderAnimation(tpl, sampleFrames(), 3, &buf); err != nil {
		t.Fatalf("RenderAnimation: %v", err)
	}
	out := buf.String()
	// rows=3, FrameCellSpacing=1 => rowsPerFrame=4, ceilEven(4)=4, step=4*17=68
	if !strings.Contains(out, "translateY(-68px)") {
		t.Errorf("expected second frame offset -68px, got %s", out)
	}
}

func TestRenderAnimationRejectsZeroDuration(t *testing.T) {
	tpl := parseTemplate(t)
	frames := []frame.TimedFrame{{StartMs: 0, DurationMs: 0, Buffer: map[int]frame.Row{}}}
	var buf bytes.Buffer
	err := RenderAnimation(tpl, frames, 3, &buf)
	if !errors.Is(err, ErrInvalidAnimation) {
		t.Errorf("err = %v, want %v", err, ErrInvalidAnimation)
	}
}

func TestRenderAnimationRejectsEmptyFrames(t *testing.T) {
	tpl := parseTemplate(t)
	var buf bytes.Buffer
	err := RenderAnimation(tpl, nil, 3, &buf)
	if !errors.Is(err, ErrInvalidAnimation) {
		t.Errorf("err = %v, want %v", err, ErrInvalidAnimation)
	}
}

func TestRenderStillFramesWritesNumberedFiles(t *testing.T) {
	tpl := parseTemplate(t)
	dir := t.TempDir()
	if err := RenderStillFrames(tpl, sampleFrames(), dir); err != nil {
		t.Fatalf("RenderStillFrames: %v", err)
	}
	for _, name := range []string{"frame_00000.svg", "frame_00001.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "frame_00000.svg"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "@keyframes") {
		t.Errorf("still frame should not contain keyframes: %s", data)
	}
	if strings.Contains(string(data), "screen_view") {
		t.Errorf("still frame should not contain screen_view wrapper: %s", data)
	}
}
