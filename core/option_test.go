package core

import (
	"errors"
	"testing"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		in      string
		want    Option
		wantErr bool
	}{
		{"A", OptionA, false},
		{"h", OptionH, false},
		{" c ", OptionC, false},
		{"I", "", true},
		{"", "", true},
		{"AB", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOption(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidOption) {
				t.Errorf("ParseOption(%q) error = %v, want ErrInvalidOption", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseOption(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestAllOptionsIsCopy(t *testing.T) {
	a := AllOptions()
	a[0] = "Z"
	if AllOptions()[0] != OptionA {
		t.Fatal("AllOptions exposed internal storage")
	}
	if len(a) != OptionCount || OptionCount != 8 {
		t.Fatalf("expected 8 options, got %d", len(a))
	}
}

func TestWithout(t *testing.T) {
	got := Without(AllOptions(), OptionB, OptionH, OptionB)
	want := []Option{OptionA, OptionC, OptionD, OptionE, OptionF, OptionG}
	if len(got) != len(want) {
		t.Fatalf("Without = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Without = %v, want %v", got, want)
		}
	}
	if IndexOf(got, OptionB) != -1 {
		t.Fatal("excluded option still present")
	}
}

func TestColorBlendAndScale(t *testing.T) {
	c := RGB{100, 100, 100}
	if got := c.Blend(RGBWhite, 0); got != c {
		t.Errorf("Blend alpha 0 = %v", got)
	}
	if got := c.Blend(RGBWhite, 1); got != RGBWhite {
		t.Errorf("Blend alpha 1 = %v", got)
	}
	if got := c.Scale(0.5); got != (RGB{50, 50, 50}) {
		t.Errorf("Scale 0.5 = %v", got)
	}
	if got := RGBBlack.DistanceSq(RGB{1, 2, 2}); got != 9 {
		t.Errorf("DistanceSq = %d", got)
	}
}
