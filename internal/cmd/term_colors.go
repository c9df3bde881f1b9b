package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// detectTheme captures the invoking terminal's colors for CastHeader.theme:
// OSC 10/11 foreground/background, a COLORFGBG fallback hint, and TERM/
// COLORTERM for capability detection on playback. Returns nil on a non-tty
// stdout, since there is nothing to probe.
func detectTheme() map[string]string {
	if !isatty.IsTerminal(os.Stdout.Fd()) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}

	theme := map[string]string{}
	output := termenv.NewOutput(os.Stdout)

	if fg := output.ForegroundColor(); fg != nil {
		theme["osc_fg"] = fg.String()
	}
	if bg := output.BackgroundColor(); bg != nil {
		theme["osc_bg"] = bg.String()
	}

	colorFGBG := os.Getenv("COLORFGBG")
	if colorFGBG == "" {
		if output.HasDarkBackground() {
			colorFGBG = "15;0"
		} else {
			colorFGBG = "0;15"
		}
	}
	theme["colorfgbg"] = colorFGBG

	if t := os.Getenv("TERM"); t != "" {
		theme["term"] = t
	}
	if ct := os.Getenv("COLORTERM"); ct != "" {
		theme["colorterm"] = ct
	}

	return theme
}
