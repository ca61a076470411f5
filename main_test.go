// main_test.go - CLI mode-string parsing.

package main

import "testing"

func TestParseModesWithAndWithoutDepth(t *testing.T) {
	modes, err := parseModes("1024x768,800x600x8,640x480x4")
	if err != nil {
		t.Fatal(err)
	}
	want := []DisplayMode{
		{Index: 0, Width: 1024, Height: 768, Depth: 1},
		{Index: 1, Width: 800, Height: 600, Depth: 8},
		{Index: 2, Width: 640, Height: 480, Depth: 4},
	}
	if len(modes) != len(want) {
		t.Fatalf("parsed %d modes, want %d", len(modes), len(want))
	}
	for i := range want {
		if modes[i] != want[i] {
			t.Fatalf("mode %d = %+v, want %+v", i, modes[i], want[i])
		}
	}
}

func TestParseModesRejectsBadInput(t *testing.T) {
	for _, bad := range []string{"1024", "axb", "1024x768x2", "1024x768x8x1"} {
		if _, err := parseModes(bad); err == nil {
			t.Fatalf("parseModes(%q) should fail", bad)
		}
	}
}
