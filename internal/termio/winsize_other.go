//go:build !linux && !darwin

package termio

// WindowSize is unsupported on this platform; callers treat ok == false
// as "diagnostic unavailable" rather than an error.
func WindowSize(fd int) (rows, cols int, ok bool) {
	return 0, 0, false
}
