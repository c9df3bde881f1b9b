// Package svganimator assembles a sequence of TimedFrames, rendered through
// svglines, into either one looping SVG animation or a directory of still
// frame SVGs.
package svganimator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rexwzh/termcap/internal/frame"
	"github.com/rexwzh/termcap/internal/svgdom"
	"github.com/rexwzh/termcap/internal/svglines"
	"github.com/rexwzh/termcap/internal/svgtemplate"
)

// ErrInvalidAnimation is returned when the frame sequence has zero total
// duration, which would produce a CSS animation with no duration.
var ErrInvalidAnimation = errors.New("svganimator: invalid animation")

const baseCSS = `#screen {
    font-family: 'DejaVu Sans Mono', monospace;
    font-style: normal;
    font-size: 14px;
}

text {
    dominant-baseline: text-before-edge;
    white-space: pre;
}
`

// RenderAnimation assembles tpl (already resized to the frames' geometry)
// into a single looping SVG animation written to w.
func RenderAnimation(tpl *svgtemplate.Template, frames []frame.TimedFrame, rows int, w io.Writer) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalidAnimation)
	}
	last := frames[len(frames)-1]
	duration := last.StartMs + last.DurationMs
	if duration == 0 {
		return fmt.Errorf("%w: zero total duration", ErrInvalidAnimation)
	}

	tpl.Screen.ClearChildren()
	tpl.Screen.AppendChild(backgroundRect())

	builder := svglines.NewBuilder(svgtemplate.CellWidth, svgtemplate.CellHeight)
	screenView := svgdom.NewElement("g", map[string]string{"id": "screen_view"})
	timings := make(map[int]int) // start_ms -> -offset

	rowsPerFrame := rows + svgtemplate.FrameCellSpacing
	frameStep := ceilEven(rowsPerFrame) * svgtemplate.CellHeight

	for i, f := range frames {
		offset := i * frameStep
		frameGroup := svgdom.NewElement("g", nil)
		for _, rowNumber := range sortedRowKeys(f.Buffer) {
			line := f.Buffer[rowNumber]
			if len(line) == 0 {
				continue
			}
			for _, tag := range builder.RenderRow(offset, rowNumber, line) {
				frameGroup.AppendChild(tag)
			}
		}
		screenView.AppendChild(frameGroup)
		timings[f.StartMs] = -offset
	}

	defsTag := svgdom.NewElement("defs", nil)
	for _, def := range builder.Definitions() {
		defsTag.AppendChild(def)
	}
	tpl.Screen.AppendChild(defsTag)
	tpl.Screen.AppendChild(screenView)

	embedCSS(tpl.Style, timings, duration)

	return svgdom.Render(w, tpl.Root)
}

// RenderStillFrames assembles tpl (already resized) into one SVG file per
// frame under dir, named frame_00000.svg, frame_00001.svg, ... Each frame is
// self-contained: no stacking offset, no keyframe animation.
func RenderStillFrames(tpl *svgtemplate.Template, frames []frame.TimedFrame, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for i, f := range frames {
		builder := svglines.NewBuilder(svgtemplate.CellWidth, svgtemplate.CellHeight)

		tpl.Screen.ClearChildren()
		tpl.Screen.AppendChild(backgroundRect())

		frameGroup := svgdom.NewElement("g", nil)
		for _, rowNumber := range sortedRowKeys(f.Buffer) {
			line := f.Buffer[rowNumber]
			if len(line) == 0 {
				continue
			}
			for _, tag := range builder.RenderRow(0, rowNumber, line) {
				frameGroup.AppendChild(tag)
			}
		}

		defsTag := svgdom.NewElement("defs", nil)
		for _, def := range builder.Definitions() {
			defsTag.AppendChild(def)
		}
		tpl.Screen.AppendChild(defsTag)
		tpl.Screen.AppendChild(frameGroup)

		embedCSS(tpl.Style, nil, 0)

		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.svg", i))
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		err = svgdom.Render(out, tpl.Root)
		closeErr := out.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}

func backgroundRect() *svgdom.Node {
	return svgdom.NewElement("rect", map[string]string{
		"class":  "background",
		"x":      "0",
		"y":      "0",
		"width":  "100%",
		"height": "100%",
	})
}

// embedCSS populates the template's generated-style element. timings maps a
// frame's start time (ms) to the negative pixel offset it should translate
// to; when nil, only the base block is written (still-frames mode).
func embedCSS(style *svgdom.Node, timings map[int]int, animationDurationMs int) {
	var b strings.Builder
	b.WriteString(baseCSS)

	if timings != nil && animationDurationMs > 0 {
		starts := make([]int, 0, len(timings))
		for t := range timings {
			starts = append(starts, t)
		}
		sort.Ints(starts)

		var transforms []string
		var lastOffset int
		for _, t := range starts {
			offset := timings[t]
			pct := 100.0 * float64(t) / float64(animationDurationMs)
			transforms = append(transforms, fmt.Sprintf("%.3f%%{transform:translateY(%dpx)}", pct, offset))
			lastOffset = offset
		}
		transforms = append(transforms, fmt.Sprintf("100%%{transform:translateY(%dpx)}", lastOffset))

		b.WriteString("\n:root {\n    --animation-duration: ")
		b.WriteString(strconv.Itoa(animationDurationMs))
		b.WriteString("ms;\n}\n\n@keyframes roll {\n    ")
		b.WriteString(strings.Join(transforms, "\n    "))
		b.WriteString("\n}\n\n#screen_view {\n    animation-duration: ")
		b.WriteString(strconv.Itoa(animationDurationMs))
		b.WriteString("ms;\n    animation-iteration-count: infinite;\n    animation-name: roll;\n    animation-timing-function: steps(1,end);\n    animation-fill-mode: forwards;\n}\n")
	}

	style.CharData = b.String()
}

func sortedRowKeys(buf map[int]frame.Row) []int {
	keys := make([]int, 0, len(buf))
	for k := range buf {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func ceilEven(n int) int {
	return n + n%2
}
