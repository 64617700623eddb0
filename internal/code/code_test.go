package code

import "testing"

func TestNew_Format(t *testing.T) {
	// 10,000 draws, every one must match AAA-999.
	for i := 0; i < 10000; i++ {
		c := New()
		if !Pattern.MatchString(c) {
			t.Fatalf("New() = %q, does not match %s", c, Pattern)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-123", "ABC-123"},
		{"  ABC-123  ", "ABC-123"},
		{"aBc-123", "ABC-123"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ABC-123", true},
		{"abc-123", true}, // normalized before matching
		{"AB-123", false},
		{"ABC123", false},
		{"ABC-12X", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
