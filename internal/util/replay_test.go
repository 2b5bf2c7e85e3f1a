package util

import "testing"

func TestReplayDetectorAcceptsMonotonic(t *testing.T) {
	d := NewReplayDetector(64, 48)
	for _, seq := range []uint64{0, 1, 2, 3, 100} {
		if !d.Check(seq) {
			t.Fatalf("expected seq %d to be fresh", seq)
		}
		d.Accept(seq)
	}
}

func TestReplayDetectorRejectsDuplicate(t *testing.T) {
	d := NewReplayDetector(64, 48)
	d.Accept(10)
	if d.Check(10) {
		t.Fatal("duplicate sequence number should not be fresh")
	}
}

func TestReplayDetectorCheckIsIdempotent(t *testing.T) {
	d := NewReplayDetector(64, 48)
	d.Accept(50)
	first := d.Check(20)
	second := d.Check(20)
	if first != second {
		t.Fatal("Check without Accept must be idempotent")
	}
}

func TestReplayDetectorOutOfOrderWithinWindow(t *testing.T) {
	d := NewReplayDetector(64, 48)
	d.Accept(100)
	if !d.Check(90) {
		t.Fatal("seq within window behind highest should be fresh")
	}
	d.Accept(90)
	if d.Check(90) {
		t.Fatal("seq already accepted should not be fresh again")
	}
}

func TestReplayDetectorOutsideWindowRejected(t *testing.T) {
	d := NewReplayDetector(64, 48)
	d.Accept(1000)
	if d.Check(900) {
		t.Fatal("seq far behind window should be rejected")
	}
}

func TestReplayDetectorNoDoubleAccept(t *testing.T) {
	d := NewReplayDetector(64, 16)
	seen := map[uint64]bool{}
	seqs := []uint64{5, 3, 9, 3, 5, 20, 19, 21, 3}
	for _, s := range seqs {
		if d.Check(s) {
			if seen[s] {
				t.Fatalf("seq %d accepted twice", s)
			}
			d.Accept(s)
			seen[s] = true
		}
	}
}
