package hijack

import "testing"

func TestTargetSelector_RoundRobin(t *testing.T) {
	s := newTargetSelector(3, SelectRoundRobin, 0)
	var got []int
	for i := 0; i < 6; i++ {
		idx, err := s.Select("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, idx)
	}
	want := []int{0, 1, 2, 0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected round-robin sequence %v, got %v", want, got)
		}
	}
}

func TestTargetSelector_SingleTargetAlwaysZero(t *testing.T) {
	s := newTargetSelector(1, SelectRandom, 0)
	for i := 0; i < 5; i++ {
		idx, err := s.Select("")
		if err != nil || idx != 0 {
			t.Fatalf("expected idx=0, err=nil, got idx=%d err=%v", idx, err)
		}
	}
}

func TestTargetSelector_EmptyPoolErrors(t *testing.T) {
	s := newTargetSelector(0, SelectRoundRobin, 0)
	if _, err := s.Select(""); err == nil {
		t.Fatal("expected error for empty pool")
	}
}

func TestTargetSelector_RandomRecencyWindowExcludesRecent(t *testing.T) {
	s := newTargetSelector(3, SelectRandom, 2)
	var prev int = -1
	seen := make(map[int]bool)
	for i := 0; i < 20; i++ {
		idx, err := s.Select("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx == prev {
			t.Fatalf("expected recency window to exclude the immediately prior pick %d, got it again", prev)
		}
		prev = idx
		seen[idx] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all 3 targets eventually selected, got %v", seen)
	}
}

func TestTargetSelector_StickyRemembersAssignment(t *testing.T) {
	s := newTargetSelector(4, SelectSticky, 0)
	first, err := s.Select("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		idx, err := s.Select("user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx != first {
			t.Fatalf("expected sticky key to always resolve to %d, got %d", first, idx)
		}
	}
}

func TestTargetSelector_StickyEmptyKeyDoesNotPersist(t *testing.T) {
	s := newTargetSelector(4, SelectSticky, 0)
	if _, err := s.Select(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.stickyMap) != 0 {
		t.Fatal("expected empty sticky key to not create a sticky assignment")
	}
}

func TestTargetSelector_ResetSticky(t *testing.T) {
	s := newTargetSelector(4, SelectSticky, 0)
	if _, err := s.Select("user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.resetSticky()
	if len(s.stickyMap) != 0 {
		t.Fatal("expected resetSticky to clear assignments")
	}
}
