//go:build linux

package kmsg

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Device is a write-only handle on the kernel log device. The kernel turns
// every write(2) on it into exactly one ring buffer record, so WriteEntry
// never splits or completes a buffer across calls.
type Device struct {
	path string

	mu     sync.RWMutex // Protects fd against Close
	fd     int
	closed bool
}

// Open opens path for writing.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CLOEXEC|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, &DeviceError{Op: "open", Path: path, Kind: openErrorKind(err), Err: err}
	}

	return &Device{path: path, fd: fd}, nil
}

func openErrorKind(err error) error {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EROFS):
		return ErrPermissionDenied
	default:
		return ErrDeviceUnavailable
	}
}

// Path returns the path the device was opened from.
func (d *Device) Path() string {
	return d.path
}

// WriteEntry hands p to the device in a single write call. A short write is
// reported as ErrWriteFailed and is not completed: the accepted prefix is
// already a record of its own.
func (d *Device) WriteEntry(p []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return &DeviceError{Op: "write", Path: d.path, Kind: ErrWriteFailed, Err: unix.EBADF}
	}

	for {
		n, err := unix.Write(d.fd, p)
		if errors.Is(err, unix.EINTR) {
			// nothing was written
			continue
		}
		if err != nil {
			return &DeviceError{Op: "write", Path: d.path, Kind: ErrWriteFailed, Err: err}
		}
		if n != len(p) {
			return &DeviceError{
				Op:   "write",
				Path: d.path,
				Kind: ErrWriteFailed,
				Err:  fmt.Errorf("short write: %d of %d bytes", n, len(p)),
			}
		}
		return nil
	}
}

// Close releases the handle. Sinks registered for the process lifetime do
// not call it.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return unix.Close(d.fd)
}
