package partition

import (
	"strconv"
	"testing"
)

func TestFor_Determinism(t *testing.T) {
	// Same key must always produce the same stripe.
	id := For("logs.x", "e1")
	for i := 0; i < 100; i++ {
		if got := For("logs.x", "e1"); got != id {
			t.Fatalf("For(\"logs.x\", \"e1\") = %d on iteration %d, want %d", got, i, id)
		}
	}
}

func TestFor_Range(t *testing.T) {
	// All outputs must be in [0, Count).
	inputs := [][2]string{{"", ""}, {"a", "b"}, {"logs.x", "e1"}, {"very-long-topic-name-that-should-still-hash", "evt"}}
	for _, in := range inputs {
		p := For(in[0], in[1])
		if p < 0 || p >= Count {
			t.Errorf("For(%q, %q) = %d, want [0, %d)", in[0], in[1], p, Count)
		}
	}
}

func TestFor_Distribution(t *testing.T) {
	// 1 000 event ids should hit at least 100 distinct stripes. With 256 stripes
	// and 1000 keys the expected unique count is ~248.
	seen := make(map[int]struct{})
	for i := 0; i < 1000; i++ {
		seen[For("logs.x", "evt-"+strconv.Itoa(i))] = struct{}{}
	}
	if len(seen) < 100 {
		t.Errorf("only %d distinct stripes from 1000 inputs, want >= 100", len(seen))
	}
}
