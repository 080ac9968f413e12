package models

import "testing"

func TestVersionCompare(t *testing.T) {
	cases := []struct {
		a, b     string
		expected int
	}{
		{"1.5.0", "1.5.0", 0},
		{"1.5.1", "1.5.0", 1},
		{"1.5.0", "1.5.1", -1},
		{"1.5.1", "1.5", 1},
		{"1.5-1", "1.5", 0},
		{"1.5.0-1", "1.5.0-2", -1},
		{"1.5.0-10", "1.5.0-9", 1},
		{"1:1.0", "2.0", 1},
		{"0:1.0", "1.0", 0},
		{":1.0", "1.0", 0},
		{"1.0a", "1.0", -1},
		{"1.0rc1", "1.0", -1},
		{"1.0alpha", "1.0beta", -1},
		{"1.0", "1.0.1", -1},
		{"1.10", "1.9", 1},
		{"1.001", "1.1", 0},
		{"2.0-1", "1.9-10", 1},
		{"5.19.g82c3d4a-1", "5.18.g0000000-3", 1},
		{"1.0..1", "1.0.1", 1},
		{"1a", "1.0", -1},
	}

	for _, c := range cases {
		if got := VersionCompare(c.a, c.b); got != c.expected {
			t.Errorf("VersionCompare(%q, %q): expected %d, got %d", c.a, c.b, c.expected, got)
		}
		if got := VersionCompare(c.b, c.a); got != -c.expected {
			t.Errorf("VersionCompare(%q, %q): expected %d, got %d", c.b, c.a, -c.expected, got)
		}
	}
}

func TestSplitEVR(t *testing.T) {
	epoch, version, release := splitEVR("2:1.4.7-3")
	if epoch != "2" || version != "1.4.7" || release != "3" {
		t.Errorf("Unexpected split: %q %q %q", epoch, version, release)
	}

	epoch, version, release = splitEVR("r1234.abcdef")
	if epoch != "0" || version != "r1234.abcdef" || release != "" {
		t.Errorf("Unexpected split: %q %q %q", epoch, version, release)
	}
}
