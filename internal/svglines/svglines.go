// Package svglines converts one terminal row into SVG background rects and
// text runs, with run-compression and <g> definition reuse.
package svglines

import (
	"encoding/xml"
	"sort"
	"strconv"
	"strings"

	"github.com/unilibs/uniwidth"

	"github.com/rexwzh/termcap/internal/frame"
	"github.com/rexwzh/termcap/internal/svgdom"
)

// Builder accumulates reusable <g> text-run definitions across every row it
// renders, keyed by their canonical serialization, and hands out stable ids.
type Builder struct {
	defs  map[string]*svgdom.Node // canonical text -> named <g>
	order []string                // insertion order of canonical keys
	cellW int
	cellH int
}

// NewBuilder constructs a Builder. cellW/cellH are normally
// svgtemplate.CellWidth/CellHeight.
func NewBuilder(cellW, cellH int) *Builder {
	return &Builder{
		defs:  make(map[string]*svgdom.Node),
		cellW: cellW,
		cellH: cellH,
	}
}

// Definitions returns the accumulated <g> definitions in the order they were
// first created, for embedding in <defs>.
func (b *Builder) Definitions() []*svgdom.Node {
	out := make([]*svgdom.Node, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.defs[key])
	}
	return out
}

// RenderRow converts one row's sparse cell map into the elements it
// contributes to a frame: background rects, then one <use> referencing a
// (possibly newly created, possibly reused) text-run <g>. yOffset is the
// frame's vertical pixel offset; rowNumber is the row's index within the
// frame's cell grid.
func (b *Builder) RenderRow(yOffset, rowNumber int, row frame.Row) []*svgdom.Node {
	if len(row) == 0 {
		return nil
	}
	cols := sortedColumns(row)

	var tags []*svgdom.Node
	tags = append(tags, b.renderBackground(yOffset, rowNumber, row, cols)...)
	tags = append(tags, b.renderText(yOffset, rowNumber, row, cols))
	return tags
}

func sortedColumns(row frame.Row) []int {
	cols := make([]int, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

func (b *Builder) renderBackground(yOffset, rowNumber int, row frame.Row, cols []int) []*svgdom.Node {
	var tags []*svgdom.Node
	y := yOffset + rowNumber*b.cellH

	i := 0
	for i < len(cols) {
		bg := row[cols[i]].BackgroundColor
		if bg == "background" {
			i++
			continue
		}
		start := i
		length := 0
		for i < len(cols) && row[cols[i]].BackgroundColor == bg && (i == start || cols[i] == cols[i-1]+1) {
			length += uniwidth.StringWidth(row[cols[i]].Text)
			i++
		}
		tags = append(tags, makeRect(cols[start], length, y, b.cellW, b.cellH, bg))
	}
	return tags
}

func makeRect(column, length, y, cellW, cellH int, bg string) *svgdom.Node {
	n := svgdom.NewElement("rect", map[string]string{
		"x":      strconv.Itoa(column * cellW),
		"y":      strconv.Itoa(y),
		"width":  strconv.Itoa(length * cellW),
		"height": strconv.Itoa(cellH),
	})
	setColorAttr(n, bg)
	return n
}

type textAttrs struct {
	color         string
	bold          bool
	italics       bool
	underscore    bool
	strikethrough bool
}

func attrsOf(c frame.CharacterCell) textAttrs {
	return textAttrs{c.Color, c.Bold, c.Italics, c.Underscore, c.Strikethrough}
}

func (b *Builder) renderText(yOffset, rowNumber int, row frame.Row, cols []int) *svgdom.Node {
	group := svgdom.NewElement("g", nil)

	i := 0
	for i < len(cols) {
		attrs := attrsOf(row[cols[i]])
		start := i
		var text strings.Builder
		for i < len(cols) && attrsOf(row[cols[i]]) == attrs && (i == start || cols[i] == cols[i-1]+1) {
			text.WriteString(row[cols[i]].Text)
			i++
		}
		group.AppendChild(makeText(cols[start], attrs, text.String(), b.cellW))
	}

	key := svgdom.Canonical(group)
	if existing, ok := b.defs[key]; ok {
		return useTag(existing.ID(), yOffset+rowNumber*b.cellH)
	}

	id := "g" + strconv.Itoa(len(b.defs)+1)
	group.SetID(id)
	b.defs[key] = group
	b.order = append(b.order, key)
	return useTag(id, yOffset+rowNumber*b.cellH)
}

func makeText(column int, attrs textAttrs, text string, cellW int) *svgdom.Node {
	n := svgdom.NewElement("text", map[string]string{
		"x":          strconv.Itoa(column * cellW),
		"textLength": strconv.Itoa(uniwidth.StringWidth(text) * cellW),
	})
	if attrs.bold {
		n.Set("font-weight", "bold")
	}
	if attrs.italics {
		n.Set("font-style", "italic")
	}
	var decoration []string
	if attrs.underscore {
		decoration = append(decoration, "underline")
	}
	if attrs.strikethrough {
		decoration = append(decoration, "line-through")
	}
	if len(decoration) > 0 {
		n.Set("text-decoration", strings.Join(decoration, " "))
	}
	setColorAttr(n, attrs.color)
	n.CharData = text
	return n
}

func setColorAttr(n *svgdom.Node, color string) {
	if strings.HasPrefix(color, "#") {
		n.Set("fill", color)
	} else {
		n.Set("class", color)
	}
}

func useTag(id string, y int) *svgdom.Node {
	n := &svgdom.Node{Name: xml.Name{Local: "use"}}
	n.Attr = append(n.Attr, svgdom.Attr{
		Name:  xml.Name{Space: svgdom.XlinkNamespace, Local: "href"},
		Value: "#" + id,
	})
	n.Set("y", strconv.Itoa(y))
	return n
}
