package httpapi

import "testing"

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"", 0, true},
		{"10", 10, true},
		{"5000", maxEventsLimit, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"ten", 0, false},
	}
	for _, c := range cases {
		got, ok := parseLimit(c.in)
		if got != c.want || ok != c.wantOK {
			t.Fatalf("parseLimit(%q)=%d,%v want %d,%v", c.in, got, ok, c.want, c.wantOK)
		}
	}
}
