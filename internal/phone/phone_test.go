package phone

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw    string
		region string
		want   string
	}{
		{"(650) 253-0000", "US", "+16502530000"},
		{"650.253.0000", "US", "+16502530000"},
		{"+1 650 253 0000", "US", "+16502530000"},
		{"+44 20 7031 3000", "US", "+442070313000"},
		{"020 7031 3000", "GB", "+442070313000"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.raw, tc.region)
		if err != nil {
			t.Fatalf("normalize %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("normalize %q: expected %s got %s", tc.raw, tc.want, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"(650) 253-0000", "+44 20 7031 3000", "1-650-253-0000"} {
		once, err := Normalize(raw, "US")
		if err != nil {
			t.Fatalf("normalize %q: %v", raw, err)
		}
		twice, err := Normalize(once, "US")
		if err != nil {
			t.Fatalf("renormalize %q: %v", once, err)
		}
		if once != twice {
			t.Fatalf("not idempotent: %s -> %s", once, twice)
		}
	}
}

func TestNormalizeInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "hello", "123"} {
		if _, err := Normalize(raw, "US"); !errors.Is(err, ErrInvalidPhone) {
			t.Fatalf("expected ErrInvalidPhone for %q, got %v", raw, err)
		}
	}
}
