package main

import (
	"testing"
)

func TestParseSweepParams(t *testing.T) {
	names, ranges, err := parseSweepParams([]string{"damping=0.9, 0.99", "cell_size=16"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "damping" || names[1] != "cell_size" {
		t.Errorf("unexpected names %v", names)
	}
	if len(ranges[0]) != 2 || ranges[0][1] != 0.99 || ranges[1][0] != 16 {
		t.Errorf("unexpected ranges %v", ranges)
	}

	for _, bad := range []string{"damping", "damping=x", "damping=0.9,"} {
		if _, _, err := parseSweepParams([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
