package auth

import (
	"errors"
	"testing"
)

const testURL = "https://goals.example.com/sms/inbound"

func testParams() map[string][]string {
	return map[string][]string{
		"To":         {"+18005551212"},
		"From":       {"+16502530000"},
		"Body":       {"Walk the dog - 5"},
		"MessageSid": {"SM0123456789abcdef"},
	}
}

func TestSignKnownValue(t *testing.T) {
	v := NewValidator("12345")
	if got := v.Sign(testURL, testParams()); got != "3E87I4DbQd6dE0vA/pU+WM1MebU=" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestValidateAcceptsOwnSignature(t *testing.T) {
	v := NewValidator("12345")
	sig := v.Sign(testURL, testParams())
	if err := v.Validate(testURL, testParams(), sig); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	v := NewValidator("12345")
	sig := v.Sign(testURL, testParams())

	tampered := testParams()
	tampered["Body"] = []string{"Walk the cat - 5"}

	cases := map[string]error{
		"tampered body": v.Validate(testURL, tampered, sig),
		"other url":     v.Validate(testURL+"?x=1", testParams(), sig),
		"missing":       v.Validate(testURL, testParams(), ""),
		"other token":   NewValidator("54321").Validate(testURL, testParams(), sig),
		"empty token":   NewValidator("").Validate(testURL, testParams(), sig),
	}
	for name, err := range cases {
		if !errors.Is(err, ErrAuthentication) {
			t.Fatalf("%s: expected ErrAuthentication, got %v", name, err)
		}
	}
}
