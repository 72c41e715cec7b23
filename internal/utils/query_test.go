package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{" 42 ", 7, 42},
		{"-13", 1, -13},
		{"x", 5, 5},
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ n, want int }{{-5, 1}, {0, 1}, {1, 1}, {50, 50}, {100, 100}, {101, 100}}
	for _, tc := range cases {
		if got := Clamp(tc.n, 1, 100); got != tc.want {
			t.Fatalf("Clamp(%d) = %d; want %d", tc.n, got, tc.want)
		}
	}
}
