// Package svgtemplate validates and resizes the SVG templates that
// SvgAnimator renders frames into.
package svgtemplate

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rexwzh/termcap/internal/svgdom"
)

// Cell geometry constants, fixed for every template.
const (
	CellWidth        = 8
	CellHeight       = 17
	FrameCellSpacing = 1
)

// ErrInvalidTemplate is returned when a template is missing one of its
// required elements or carries unparsable geometry attributes.
var ErrInvalidTemplate = errors.New("svgtemplate: invalid template")

// Template is a parsed, validated SVG template ready for resizing.
type Template struct {
	Root            *svgdom.Node
	Screen          *svgdom.Node
	Style           *svgdom.Node
	ScreenGeometry  *svgdom.Node
	TemplateColumns int
	TemplateRows    int
}

// Parse reads and validates a template document. It must contain a
// tc:template_settings/tc:screen_geometry subtree with integer columns/rows
// attributes, an <svg id="screen"> element, and a <style
// id="generated-style"> element. Each is found by a depth-first search of
// the whole document: whether they sit inside <defs> is not checked, and
// neither is whether the generated-style element is empty.
func Parse(r io.Reader) (*Template, error) {
	root, err := svgdom.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	settings := svgdom.Find(root, "template_settings", "", "")
	if settings == nil {
		return nil, fmt.Errorf("%w: missing template_settings", ErrInvalidTemplate)
	}

	geometry := svgdom.Find(settings, "screen_geometry", "", "")
	if geometry == nil {
		return nil, fmt.Errorf("%w: missing screen_geometry", ErrInvalidTemplate)
	}

	cols, rows, err := parseGeometry(geometry)
	if err != nil {
		return nil, err
	}

	screen := svgdom.Find(root, "svg", "id", "screen")
	if screen == nil {
		return nil, fmt.Errorf(`%w: missing svg element with id="screen"`, ErrInvalidTemplate)
	}

	style := svgdom.Find(root, "style", "id", "generated-style")
	if style == nil {
		return nil, fmt.Errorf(`%w: missing style element with id="generated-style"`, ErrInvalidTemplate)
	}

	return &Template{
		Root:            root,
		Screen:          screen,
		Style:           style,
		ScreenGeometry:  geometry,
		TemplateColumns: cols,
		TemplateRows:    rows,
	}, nil
}

func parseGeometry(geometry *svgdom.Node) (cols, rows int, err error) {
	colsStr, ok := geometry.Get("columns")
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing columns attribute", ErrInvalidTemplate)
	}
	rowsStr, ok := geometry.Get("rows")
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing rows attribute", ErrInvalidTemplate)
	}
	cols, err = strconv.Atoi(colsStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid columns attribute %q", ErrInvalidTemplate, colsStr)
	}
	rows, err = strconv.Atoi(rowsStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid rows attribute %q", ErrInvalidTemplate, rowsStr)
	}
	return cols, rows, nil
}

// Resize scales the template in place to a (columns, rows) cell grid,
// updating the screen_geometry attributes and the viewBox/width/height of
// both the root element and the #screen element.
func (t *Template) Resize(columns, rows int) {
	dw := CellWidth * (columns - t.TemplateColumns)
	dh := CellHeight * (rows - t.TemplateRows)

	t.ScreenGeometry.Set("columns", strconv.Itoa(columns))
	t.ScreenGeometry.Set("rows", strconv.Itoa(rows))

	scaleElement(t.Root, dw, dh)
	scaleElement(t.Screen, dw, dh)
}

func scaleElement(n *svgdom.Node, dw, dh int) {
	if vb, ok := n.Get("viewBox"); ok {
		if scaled, ok := scaleViewBox(vb, dw, dh); ok {
			n.Set("viewBox", scaled)
		}
	}
	if w, ok := n.Get("width"); ok {
		if v, err := strconv.Atoi(w); err == nil {
			n.Set("width", strconv.Itoa(v+dw))
		}
	}
	if h, ok := n.Get("height"); ok {
		if v, err := strconv.Atoi(h); err == nil {
			n.Set("height", strconv.Itoa(v+dh))
		}
	}
}

func scaleViewBox(vb string, dw, dh int) (string, bool) {
	fields := strings.Fields(strings.ReplaceAll(vb, ",", " "))
	if len(fields) != 4 {
		return "", false
	}
	nums := make([]int, 4)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return "", false
		}
		nums[i] = v
	}
	nums[2] += dw
	nums[3] += dh
	return fmt.Sprintf("%d %d %d %d", nums[0], nums[1], nums[2], nums[3]), true
}
