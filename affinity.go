//go:build linux

package checkqueue

import (
	"golang.org/x/sys/unix"
)

// PinToCPU locks the calling goroutine's OS thread to a single CPU core.
// Callers must have already called runtime.LockOSThread on the current
// goroutine; PinToCPU only sets the affinity mask of the underlying
// thread.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}
