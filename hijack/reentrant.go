package hijack

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// reentrantLock is the "re-entrant lock" spec.md §4.G asks a Wrapper to
// carry: the same goroutine may re-enter Call (a hijacked function calling
// itself, directly or through a Redirect strategy targeting another
// wrapper on the same chain) without deadlocking, while a different
// goroutine still blocks until the holder's outermost call exits. Go's
// sync.Mutex has no such notion, so this tracks the holding goroutine id
// and a depth counter, the same runtime.Stack-parsing technique
// correlate.Current uses to emulate a thread-local.
type reentrantLock struct {
	mu     sync.Mutex
	holder int64
	depth  int
	cond   *sync.Cond
}

func newReentrantLock() *reentrantLock {
	l := &reentrantLock{holder: -1}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// lock acquires the lock for the calling goroutine, returning an unlock
// func to defer. Safe to call recursively from the same goroutine.
func (l *reentrantLock) lock() (unlock func()) {
	gid := goroutineID()

	l.mu.Lock()
	for l.holder != -1 && l.holder != gid {
		l.cond.Wait()
	}
	l.holder = gid
	l.depth++
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		l.depth--
		if l.depth == 0 {
			l.holder = -1
			l.cond.Broadcast()
		}
		l.mu.Unlock()
	}
}

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
		return -2
	}
	return id
}
