package svglines

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rexwzh/termcap/internal/frame"
	"github.com/rexwzh/termcap/internal/svgdom"
)

func cell(text, color, bg string) frame.CharacterCell {
	return frame.CharacterCell{Text: text, Color: color, BackgroundColor: bg}
}

func render(t *testing.T, n *svgdom.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := svgdom.Render(&buf, n); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderRowEmptyProducesNoTags(t *testing.T) {
	b := NewBuilder(8, 17)
	tags := b.RenderRow(0, 0, frame.Row{})
	if tags != nil {
		t.Errorf("expected nil for empty row, got %v", tags)
	}
}

func TestRenderRowSkipsDefaultBackground(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{
		0: cell("h", "foreground", "background"),
		1: cell("i", "foreground", "background"),
	}
	tags := b.RenderRow(0, 0, row)
	for _, tag := range tags {
		if tag.Name.Local == "rect" {
			t.Errorf("expected no rect for all-background row, got %s", render(t, tag))
		}
	}
}

func TestRenderRowCompressesConsecutiveBackground(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{
		0: cell("a", "foreground", "#FF0000"),
		1: cell("b", "foreground", "#FF0000"),
		2: cell("c", "foreground", "#FF0000"),
	}
	tags := b.RenderRow(0, 0, row)
	var rectCount int
	for _, tag := range tags {
		if tag.Name.Local == "rect" {
			rectCount++
			out := render(t, tag)
			if !strings.Contains(out, `width="24"`) {
				t.Errorf("expected one compressed rect of width 24, got %s", out)
			}
		}
	}
	if rectCount != 1 {
		t.Errorf("expected 1 rect, got %d", rectCount)
	}
}

func TestRenderRowBreaksBackgroundRunOnColumnGap(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{
		0: cell("a", "foreground", "#FF0000"),
		2: cell("b", "foreground", "#FF0000"),
	}
	tags := b.RenderRow(0, 0, row)
	var rectCount int
	for _, tag := range tags {
		if tag.Name.Local == "rect" {
			rectCount++
		}
	}
	if rectCount != 2 {
		t.Errorf("expected 2 rects across the gap, got %d", rectCount)
	}
}

func TestRenderRowGroupsTextByAttributesAndContiguity(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{
		0: cell("a", "foreground", "background"),
		1: cell("b", "foreground", "background"),
		2: cell("c", "#00FF00", "background"),
	}
	tags := b.RenderRow(0, 0, row)
	use := tags[len(tags)-1]
	if use.Name.Local != "use" {
		t.Fatalf("last tag = %s, want use", use.Name.Local)
	}
	defs := b.Definitions()
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	texts := svgdom.FindAll(defs[0], "text")
	if len(texts) != 2 {
		t.Fatalf("expected 2 text runs (ab, c), got %d", len(texts))
	}
	if texts[0].CharData != "ab" || texts[1].CharData != "c" {
		t.Errorf("text runs = %q, %q, want ab, c", texts[0].CharData, texts[1].CharData)
	}
}

func TestRenderRowReusesIdenticalDefinition(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{0: cell("x", "foreground", "background")}

	b.RenderRow(0, 0, row)
	b.RenderRow(17, 1, row)

	defs := b.Definitions()
	if len(defs) != 1 {
		t.Errorf("expected definition reuse, got %d distinct definitions", len(defs))
	}
}

func TestRenderRowAssignsSequentialIdsToDistinctGroups(t *testing.T) {
	b := NewBuilder(8, 17)
	b.RenderRow(0, 0, frame.Row{0: cell("x", "foreground", "background")})
	b.RenderRow(0, 1, frame.Row{0: cell("y", "foreground", "background")})

	defs := b.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 distinct definitions, got %d", len(defs))
	}
	if defs[0].ID() != "g1" || defs[1].ID() != "g2" {
		t.Errorf("ids = %q, %q, want g1, g2", defs[0].ID(), defs[1].ID())
	}
}

func TestMakeTextSetsStyleAttributes(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{0: {Text: "x", Color: "foreground", BackgroundColor: "background", Bold: true, Underscore: true, Strikethrough: true}}
	b.RenderRow(0, 0, row)
	defs := b.Definitions()
	texts := svgdom.FindAll(defs[0], "text")
	out := render(t, texts[0])
	if !strings.Contains(out, `font-weight="bold"`) {
		t.Errorf("missing font-weight: %s", out)
	}
	if !strings.Contains(out, `text-decoration="underline line-through"`) {
		t.Errorf("missing text-decoration: %s", out)
	}
}

func TestRenderRowEscapesXMLSpecialCharsInText(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{
		0: cell("a", "foreground", "background"),
		1: cell("<", "foreground", "background"),
		2: cell("b", "foreground", "background"),
		3: cell("&", "foreground", "background"),
	}
	b.RenderRow(0, 0, row)
	defs := b.Definitions()
	texts := svgdom.FindAll(defs[0], "text")
	if len(texts) != 1 {
		t.Fatalf("expected 1 text run, got %d", len(texts))
	}
	if texts[0].CharData != "a<b&" {
		t.Fatalf("CharData = %q, want %q", texts[0].CharData, "a<b&")
	}

	out := render(t, texts[0])
	if strings.Contains(out, "a<b&") {
		t.Fatalf("raw special characters leaked into serialized output: %s", out)
	}
	if !strings.Contains(out, "a&lt;b&amp;") {
		t.Errorf("expected escaped text content, got %s", out)
	}
}

func TestWideCharacterTextLength(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{
		0: cell("你", "foreground", "background"),
		1: cell("", "foreground", "background"),
		2: cell("x", "foreground", "background"),
	}
	b.RenderRow(0, 0, row)
	defs := b.Definitions()
	texts := svgdom.FindAll(defs[0], "text")
	if len(texts) != 1 {
		t.Fatalf("expected 1 contiguous text run, got %d", len(texts))
	}
	// 你 spans two cells, x one: 3 cells * 8px.
	if v, _ := texts[0].Get("textLength"); v != "24" {
		t.Errorf("textLength = %q, want 24", v)
	}
	if texts[0].CharData != "你x" {
		t.Errorf("CharData = %q, want 你x", texts[0].CharData)
	}
}

func TestUseTagReferencesDefinitionId(t *testing.T) {
	b := NewBuilder(8, 17)
	row := frame.Row{0: cell("x", "foreground", "background")}
	tags := b.RenderRow(34, 2, row)
	use := tags[len(tags)-1]
	out := render(t, use)
	if !strings.Contains(out, `xlink:href="#g1"`) {
		t.Errorf("missing xlink:href: %s", out)
	}
	if !strings.Contains(out, `y="68"`) {
		t.Errorf("expected y offset 34 + 2*17=68, got %s", out)
	}
}
