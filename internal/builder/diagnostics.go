package builder

import (
	"fmt"
	"io"
	"sync"
)

// Diagnostics accumulates non-fatal quality warnings during a build. They
// are reported in bulk after the build completes and never alter output.
type Diagnostics struct {
	mu    sync.Mutex
	items []string
}

// Warnf records one warning. Safe for concurrent use.
func (d *Diagnostics) Warnf(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, fmt.Sprintf(format, args...))
}

// Merge appends another collector's warnings in their recorded order.
func (d *Diagnostics) Merge(other *Diagnostics) {
	other.mu.Lock()
	items := other.items
	other.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, items...)
}

// Items returns a copy of the recorded warnings in order.
func (d *Diagnostics) Items() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.items))
	copy(out, d.items)
	return out
}

// Emit writes the warning report to w, numbered, or nothing when clean.
func (d *Diagnostics) Emit(w io.Writer) {
	items := d.Items()
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n=== WARNINGS (non-fatal) ===\n")
	for i, msg := range items {
		fmt.Fprintf(w, "[%d] %s\n", i+1, msg)
	}
}
