//go:build linux || darwin

package termio

import "golang.org/x/sys/unix"

// WindowSize reports the terminal's row/column count for fd, for
// startup diagnostics. It mirrors the OS-specific ioctl split in
// elsie's cmd/internal/tty (tty_linux.go / tty_darwin.go), which
// likewise isolates the one piece of terminal plumbing that is not
// already covered by golang.org/x/term.
func WindowSize(fd int) (rows, cols int, ok bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, false
	}

	return int(ws.Row), int(ws.Col), true
}
