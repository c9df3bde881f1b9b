// Package recorder forks a child process under a pseudo-terminal and
// multiplexes I/O between the controlling terminal and the child, producing
// a lazy stream of asciicast events.
package recorder

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/rexwzh/termcap/internal/cast"
)

const readChunk = 1024

// ErrEmptyArgv is returned by Start when no command was given to run.
var ErrEmptyArgv = errors.New("recorder: argv must not be empty")

// Session is the live recording of one PTY-wrapped child process. Events
// are produced lazily: each call to Next runs the readiness loop until it
// has something to emit or the session has ended.
type Session struct {
	cmd    *exec.Cmd
	master *os.File
	input  *os.File
	output *os.File

	dec  incrementalDecoder
	t0   time.Time
	done bool
}

// Start emits the header synchronously (geometry and wall-clock timestamp
// are known before the child even forks) and, on success, returns a Session
// whose Next method lazily produces output events. If the fork fails, the
// header is still valid and the caller should treat the event stream as
// immediately exhausted.
func Start(argv []string, cols, rows int, input, output *os.File) (cast.Header, *Session, error) {
	if len(argv) == 0 {
		return cast.Header{}, nil, ErrEmptyArgv
	}

	header := cast.Header{
		Version:   2,
		Width:     cols,
		Height:    rows,
		Timestamp: time.Now().Unix(),
		Command:   joinArgv(argv),
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	ws := &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}
	master, err := pty.StartWithSize(cmd, ws)
	if err != nil {
		return header, nil, fmt.Errorf("recorder: start pty: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		master: master,
		input:  input,
		output: output,
		t0:     time.Now(),
	}
	return header, s, nil
}

func joinArgv(argv []string) string {
	out := argv[0]
	for _, a := range argv[1:] {
		out += " " + a
	}
	return out
}

// Next runs the select/read/reap loop until it can emit an output event, or
// until the session ends, in which case ok is false. Callers should keep
// calling Next until ok is false, then call Close.
func (s *Session) Next() (cast.Event, bool, error) {
	if s.done {
		return cast.Event{}, false, nil
	}

	buf := make([]byte, readChunk)
	inputFd := int(s.input.Fd())
	masterFd := int(s.master.Fd())

	for {
		ready, err := waitReadable([]int{inputFd, masterFd})
		if err != nil {
			return s.finish(err)
		}

		for _, fd := range ready {
			switch fd {
			case inputFd:
				n, rerr := s.input.Read(buf)
				if rerr != nil || n == 0 {
					return s.finish(nil)
				}
				if _, werr := s.master.Write(buf[:n]); werr != nil {
					return s.finish(nil)
				}

			case masterFd:
				n, rerr := s.master.Read(buf)
				if rerr != nil || n == 0 {
					return s.finish(nil)
				}
				if _, werr := s.output.Write(buf[:n]); werr != nil {
					return s.finish(nil)
				}
				if text := s.dec.decode(buf[:n]); text != "" {
					return cast.Event{
						Time:    time.Since(s.t0).Seconds(),
						Kind:    cast.KindOutput,
						Payload: text,
					}, true, nil
				}
			}
		}

		if s.childExited() {
			return s.finish(nil)
		}
	}
}

// childExited performs a non-blocking reap of the child process.
func (s *Session) childExited() bool {
	if s.cmd.Process == nil {
		return false
	}
	var status syscall.WaitStatus
	pid, err := syscall.Wait4(s.cmd.Process.Pid, &status, syscall.WNOHANG, nil)
	return err == nil && pid == s.cmd.Process.Pid
}

// finish flushes the decoder, closes the master fd, and returns the final
// residual event (if any) produced by the flush.
func (s *Session) finish(err error) (cast.Event, bool, error) {
	s.done = true
	_ = s.master.Close()
	if err != nil {
		return cast.Event{}, false, err
	}
	if text := s.dec.flush(); text != "" {
		return cast.Event{
			Time:    time.Since(s.t0).Seconds(),
			Kind:    cast.KindOutput,
			Payload: text,
		}, true, nil
	}
	return cast.Event{}, false, nil
}

// Close releases the master fd if it has not already been closed by the
// loop reaching end of stream.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.master.Close()
}
