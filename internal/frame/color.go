package frame

import (
	"fmt"
	"image/color"

	headlessterm "github.com/danielgatis/go-headless-term"
)

// cellToCharacterCell resolves one emulator cell into the template's color
// vocabulary. A cell flagged reverse has its resolved colors swapped.
func cellToCharacterCell(cell *headlessterm.Cell) CharacterCell {
	return convertCell(cell, cell.HasFlag(headlessterm.CellFlagReverse))
}

// cursorOverlayCell resolves the cell under the cursor: a single swap of
// the cell's own colors, ignoring any reverse flag the cell already
// carries, so the overlay never un-swaps an already-reversed cell.
func cursorOverlayCell(cell *headlessterm.Cell) CharacterCell {
	return convertCell(cell, true)
}

func convertCell(cell *headlessterm.Cell, reversed bool) CharacterCell {
	fg := colorToken(cell.Fg, true)
	bg := colorToken(cell.Bg, false)
	if reversed {
		fg, bg = bg, fg
	}
	text := string(cell.Char)
	if cell.HasFlag(headlessterm.CellFlagWideCharSpacer) {
		// The trailing half of a wide glyph. Empty text keeps the run
		// contiguous without adding display width the glyph already covers.
		text = ""
	}
	return CharacterCell{
		Text:            text,
		Color:           fg,
		BackgroundColor: bg,
		Bold:            cell.HasFlag(headlessterm.CellFlagBold),
		Italics:         cell.HasFlag(headlessterm.CellFlagItalic),
		Underscore:      cell.HasFlag(headlessterm.CellFlagUnderline),
		Strikethrough:   cell.HasFlag(headlessterm.CellFlagStrike),
	}
}

// isBlankCell reports whether cell is indistinguishable from the emulator's
// untouched default, i.e. it carries no information worth emitting. The
// dirty bit is bookkeeping the terminal sets on every touched cell and says
// nothing about appearance, so it is masked out.
func isBlankCell(cell *headlessterm.Cell) bool {
	return cell.Char == ' ' &&
		cell.Flags&^headlessterm.CellFlagDirty == 0 &&
		cell.Hyperlink == nil &&
		cell.Image == nil &&
		isNamedColor(cell.Fg, headlessterm.NamedColorForeground) &&
		isNamedColor(cell.Bg, headlessterm.NamedColorBackground)
}

func isNamedColor(c color.Color, name int) bool {
	nc, ok := c.(*headlessterm.NamedColor)
	return ok && nc.Name == name
}

var ansiColorNames = [8]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
}

// ansiClassName names ANSI palette entries 0-15 in the template's CSS class
// vocabulary: the 8 base names plus their bright variants.
func ansiClassName(i int) string {
	if i < 8 {
		return ansiColorNames[i]
	}
	return "bright" + ansiColorNames[i-8]
}

// colorToken converts a cell's raw color into the template's vocabulary:
// "foreground"/"background" for the theme defaults, a named class for the
// 16 ANSI colors (and their bright/dim named variants), or a literal
// #RRGGBB for the 256-cube, grayscale, and truecolor cases. Named tokens
// stay names so the template's CSS palette decides the actual color;
// downstream emitters pick fill vs class by prefix.
func colorToken(c color.Color, fg bool) string {
	switch v := c.(type) {
	case nil:
		if fg {
			return "foreground"
		}
		return "background"
	case *headlessterm.NamedColor:
		return namedColorToken(v.Name, fg)
	case *headlessterm.IndexedColor:
		switch {
		case v.Index >= 0 && v.Index < 16:
			return ansiClassName(v.Index)
		case v.Index >= 16 && v.Index < 256:
			return hexColor(headlessterm.DefaultPalette[v.Index])
		}
		if fg {
			return "foreground"
		}
		return "background"
	case color.RGBA:
		return hexColor(v)
	default:
		r, g, b, _ := c.RGBA()
		return hexColor(color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255})
	}
}

func namedColorToken(name int, fg bool) string {
	switch {
	case name >= 0 && name < 16:
		return ansiClassName(name)
	case name >= headlessterm.NamedColorDimBlack && name <= headlessterm.NamedColorDimWhite:
		return ansiClassName(name - headlessterm.NamedColorDimBlack)
	case name == headlessterm.NamedColorForeground,
		name == headlessterm.NamedColorDimForeground:
		return "foreground"
	case name == headlessterm.NamedColorBackground:
		return "background"
	case name == headlessterm.NamedColorBrightForeground:
		return "brightwhite"
	case name == headlessterm.NamedColorCursor:
		return hexColor(headlessterm.DefaultCursorColor)
	default:
		if fg {
			return "foreground"
		}
		return "background"
	}
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
