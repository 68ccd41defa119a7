package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestNewOTPLengthAndAlphabet(t *testing.T) {
	for digits := 4; digits <= 10; digits++ {
		code, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("digits=%d: %v", digits, err)
		}
		if len(code) != digits || strings.Trim(code, "0123456789") != "" {
			t.Fatalf("digits=%d: bad code %q", digits, code)
		}
	}
}

func TestNewOTPRejectsBadLength(t *testing.T) {
	for _, digits := range []int{0, 3, 11} {
		if _, err := NewOTP(digits); !errors.Is(err, ErrInvalidOTPDigits) {
			t.Fatalf("digits=%d: expected ErrInvalidOTPDigits, got %v", digits, err)
		}
	}
}

func TestNewOTPKeepsLeadingZeros(t *testing.T) {
	// With 2000 draws of 4 digits a leading zero is all but certain.
	for i := 0; i < 2000; i++ {
		code, err := NewOTP(4)
		if err != nil {
			t.Fatal(err)
		}
		if code[0] == '0' {
			return
		}
	}
	t.Fatal("never saw a leading zero")
}

func TestIDs(t *testing.T) {
	if a, b := NewID(), NewID(); a == b || len(a) != 36 {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
	if len(ShortID()) != 8 {
		t.Fatal("short id should be 8 characters")
	}
}
