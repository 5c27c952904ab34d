package hijack

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
)

// RedirectSelectStrategy names how a Redirect strategy picks among
// multiple targets, mirroring proxy.Selector's pool strategies but
// retargeted from ProxyEndpoint pools onto Redirect's plain callable
// targets: round-robin, random (optionally recency-windowed), or sticky
// by an arbitrary caller-supplied key.
type RedirectSelectStrategy int

const (
	SelectRoundRobin RedirectSelectStrategy = iota
	SelectRandom
	SelectSticky
)

// targetSelector picks an index into a fixed target list. One instance
// backs exactly one Redirect strategy's target pool — unlike
// proxy.Selector, which multiplexes many named pools, a Redirect only
// ever owns one, so the pool-name indirection is dropped.
type targetSelector struct {
	mu       sync.Mutex
	count    int
	strategy RedirectSelectStrategy

	rrIndex int

	recencyRing []int
	recencyPos  int
	recencyLen  int

	stickyMap map[string]int
}

// newTargetSelector builds a selector over count targets. recencyWindow
// of 0 disables recency exclusion for SelectRandom.
func newTargetSelector(count int, strategy RedirectSelectStrategy, recencyWindow int) *targetSelector {
	s := &targetSelector{count: count, strategy: strategy, stickyMap: make(map[string]int)}
	if recencyWindow > 0 {
		s.recencyRing = make([]int, recencyWindow)
		for i := range s.recencyRing {
			s.recencyRing[i] = -1
		}
	}
	return s
}

// Select returns the chosen target index. stickyKey is consulted only
// when strategy is SelectSticky; an empty key falls back to random
// selection without persisting an assignment.
func (s *targetSelector) Select(stickyKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == 0 {
		return 0, errors.New("hijack: redirect target pool is empty")
	}
	if s.count == 1 {
		return 0, nil
	}

	switch s.strategy {
	case SelectRoundRobin:
		idx := s.rrIndex % s.count
		s.rrIndex++
		return idx, nil
	case SelectSticky:
		if stickyKey == "" {
			return s.selectRandomLocked()
		}
		if idx, ok := s.stickyMap[stickyKey]; ok {
			return idx, nil
		}
		idx, err := s.selectRandomLocked()
		if err != nil {
			return 0, err
		}
		s.stickyMap[stickyKey] = idx
		return idx, nil
	default:
		return s.selectRandomLocked()
	}
}

func (s *targetSelector) selectRandomLocked() (int, error) {
	if s.recencyRing == nil {
		return s.randInt(s.count)
	}

	excluded := make(map[int]bool, s.recencyLen)
	for i := 0; i < s.recencyLen; i++ {
		if idx := s.recencyRing[i]; idx >= 0 {
			excluded[idx] = true
		}
	}

	candidates := make([]int, 0, s.count-len(excluded))
	for i := 0; i < s.count; i++ {
		if !excluded[i] {
			candidates = append(candidates, i)
		}
	}

	var idx int
	if len(candidates) == 0 {
		idx = s.recencyRing[s.recencyPos]
	} else {
		ci, err := s.randInt(len(candidates))
		if err != nil {
			return 0, err
		}
		idx = candidates[ci]
	}

	s.recencyRing[s.recencyPos] = idx
	s.recencyPos = (s.recencyPos + 1) % len(s.recencyRing)
	if s.recencyLen < len(s.recencyRing) {
		s.recencyLen++
	}
	return idx, nil
}

func (s *targetSelector) randInt(n int) (int, error) {
	bigIdx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(bigIdx.Int64()), nil
}

// resetSticky clears all sticky assignments. Redirect targets carry no
// TTL concept (unlike Cache entries), so this is the only way to force
// re-selection for a given key.
func (s *targetSelector) resetSticky() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stickyMap = make(map[string]int)
}
