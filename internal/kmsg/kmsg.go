// Package kmsg writes entries to the kernel ring buffer through /dev/kmsg.
package kmsg

// DefaultPath is the kernel log device node.
const DefaultPath = "/dev/kmsg"

// EntryWriter appends one pre-formatted entry per call.
type EntryWriter interface {
	WriteEntry(p []byte) error
}
