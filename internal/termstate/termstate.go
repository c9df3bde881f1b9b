// Package termstate saves and restores a tty's attributes and window size
// around a raw-mode recording session.
package termstate

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Size is a terminal's column/row geometry.
type Size struct {
	Cols int
	Rows int
}

// State captures a tty's window size at construction time and its attributes
// when switching to raw mode, so both can be restored later. On a non-tty fd
// every method is a no-op.
type State struct {
	fd       int
	isTTY    bool
	saved    *term.State
	origSize Size
}

// Capture records the current window size of fd without modifying the
// terminal; the attributes are saved later by MakeRaw. If fd is not a
// terminal, the returned State is inert.
func Capture(fd int) (*State, error) {
	if !term.IsTerminal(fd) {
		return &State{fd: fd}, nil
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return &State{fd: fd}, nil
	}
	return &State{fd: fd, isTTY: true, origSize: Size{Cols: cols, Rows: rows}}, nil
}

// Size returns the window size captured at Capture time.
func (s *State) Size() Size {
	return s.origSize
}

// MakeRaw saves the fd's current attributes and switches it into raw mode.
// No-op on a non-tty.
func (s *State) MakeRaw() error {
	if !s.isTTY {
		return nil
	}
	saved, err := term.MakeRaw(s.fd)
	if err != nil {
		return err
	}
	s.saved = saved
	return nil
}

// Restore puts back the attributes saved by MakeRaw and the window size
// Capture observed. Safe to call multiple times and safe to call without a prior
// MakeRaw. Guaranteed to be the last line of defense: callers should invoke
// it via defer immediately after a successful Capture so it runs on every
// exit path.
func (s *State) Restore() error {
	if !s.isTTY {
		return nil
	}
	var err error
	if s.saved != nil {
		err = term.Restore(s.fd, s.saved)
		s.saved = nil
	}
	if sizeErr := s.restoreSize(); sizeErr != nil && err == nil {
		err = sizeErr
	}
	return err
}

// restoreSize writes origSize back to the fd via TIOCSWINSZ, undoing any
// resize the session performed while recording.
func (s *State) restoreSize() error {
	return unix.IoctlSetWinsize(s.fd, unix.TIOCSWINSZ, &unix.Winsize{
		Row: uint16(s.origSize.Rows),
		Col: uint16(s.origSize.Cols),
	})
}
