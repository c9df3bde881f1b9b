package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// parseGeometry parses a "COLSxROWS" geometry string.
func parseGeometry(s string) (cols, rows int, err error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid geometry %q: expected COLSxROWS", s)
	}
	cols, err = strconv.Atoi(parts[0])
	if err != nil || cols < 1 {
		return 0, 0, fmt.Errorf("invalid geometry %q: bad columns", s)
	}
	rows, err = strconv.Atoi(parts[1])
	if err != nil || rows < 1 {
		return 0, 0, fmt.Errorf("invalid geometry %q: bad rows", s)
	}
	return cols, rows, nil
}
