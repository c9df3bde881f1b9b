// Command termcap records interactive terminal sessions and renders them as
// looping SVG animations.
package main

import (
	"fmt"
	"os"

	"github.com/rexwzh/termcap/internal/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
