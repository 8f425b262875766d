package kmsg

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied indicates the caller may not open the device for writing
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDeviceUnavailable indicates the device path is missing or cannot be opened for writing
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrWriteFailed indicates the device did not accept a whole entry
	ErrWriteFailed = errors.New("write failed")
)

// DeviceError represents a failed operation on the kernel log device
type DeviceError struct {
	Op   string // Operation that failed
	Path string // Device path
	Kind error  // One of the sentinel errors above
	Err  error  // Underlying error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *DeviceError) Is(target error) bool {
	return target == e.Kind
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
