package recorder

import "golang.org/x/sys/unix"

// waitReadable blocks until at least one of fds is readable (or a signal
// interrupts the wait, in which case it retries), returning the subset that
// is ready.
func waitReadable(fds []int) ([]int, error) {
	for {
		var set unix.FdSet
		maxFd := 0
		for _, fd := range fds {
			fdSet(&set, fd)
			if fd > maxFd {
				maxFd = fd
			}
		}

		_, err := unix.Select(maxFd+1, &set, nil, nil, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}

		var ready []int
		for _, fd := range fds {
			if fdIsSet(&set, fd) {
				ready = append(ready, fd)
			}
		}
		if len(ready) > 0 {
			return ready, nil
		}
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
