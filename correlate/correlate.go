// Package correlate is the process-wide correlation context Mystic's
// wrapper and MCP handlers use to tie a call's log events together, per
// spec.md §4.C. Go has no true thread-locals, so "thread-scoped" is read
// as goroutine-scoped: the active id is tracked per calling goroutine,
// using the same github.com/google/uuid generator the teacher uses for
// run IDs in runtime/fanout.go.
package correlate

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

var (
	mu      sync.Mutex
	current = make(map[int64]string)
)

// Generate returns a new random correlation id. It does not set it as
// current; callers combine Generate with SetCurrent.
func Generate() string {
	return uuid.NewString()
}

// SetCurrent marks id as the active correlation id for the calling
// goroutine. Inner calls made on the same goroutine inherit it via
// Current until the frame clears it.
func SetCurrent(id string) {
	gid := goroutineID()
	mu.Lock()
	current[gid] = id
	mu.Unlock()
}

// Current returns the active correlation id for the calling goroutine,
// or "" if none is set.
func Current() string {
	gid := goroutineID()
	mu.Lock()
	id := current[gid]
	mu.Unlock()
	return id
}

// Clear removes the active correlation id for the calling goroutine.
func Clear() {
	gid := goroutineID()
	mu.Lock()
	delete(current, gid)
	mu.Unlock()
}

// EnterFrame generates (if needed) and activates a correlation id for the
// duration of one call, returning a restore func that an outer frame's
// defer uses to put the previous id back in place — this is how a nested
// hijacked call inherits its caller's correlation id instead of minting
// its own, and how an MCP request handler installs the incoming request
// id as current for the life of the handler.
func EnterFrame(id string) (restore func()) {
	prev := Current()
	if id == "" {
		if prev != "" {
			id = prev
		} else {
			id = Generate()
		}
	}
	SetCurrent(id)
	return func() {
		if prev == "" {
			Clear()
		} else {
			SetCurrent(prev)
		}
	}
}

// goroutineID extracts the calling goroutine's runtime id by parsing the
// "goroutine N [...]" header off a small stack trace. This is the
// standard emulation of a thread-local key in Go; it is slow enough that
// it must not sit on the wrapper's hot path for every call, only at
// frame-entry/exit boundaries.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
