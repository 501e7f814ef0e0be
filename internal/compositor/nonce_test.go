package compositor

import "testing"

func TestNonceSource_Unique(t *testing.T) {
	s := newNonceSource()
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		n := s.next()
		if seen[n] {
			t.Fatalf("duplicate nonce %q", n)
		}
		if n == diagnosticNonce {
			t.Fatalf("nonce source produced the reserved diagnostic nonce")
		}
		seen[n] = true
	}
}

func TestNonceSource_DistinctInstances(t *testing.T) {
	a := newNonceSource()
	b := newNonceSource()
	if a.next() == b.next() {
		t.Error("two sources produced the same first nonce")
	}
}
