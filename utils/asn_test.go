package utils

import (
	"errors"
	"testing"
)

func TestNormalizeASN(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"13335", "AS13335"},
		{"AS13335", "AS13335"},
		{"as13335", "AS13335"},
		{" As13335 ", "AS13335"},
		{"asfoo", "ASFOO"},
	}

	for _, test := range tests {
		result := NormalizeASN(test.input)
		if result != test.expected {
			t.Errorf("NormalizeASN(%q) = %q; want %q", test.input, result, test.expected)
		}
		if again := NormalizeASN(result); again != result {
			t.Errorf("NormalizeASN is not idempotent for %q: %q then %q", test.input, result, again)
		}
	}
}

func TestIsASN(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"AS12345", true},
		{"as12345", false},
		{"ASfoo", false},
		{"AS", false},
		{"12345", false},
		{"", false},
	}

	for _, test := range tests {
		result := IsASN(test.input)
		if result != test.expected {
			t.Errorf("IsASN(%q) = %v; want %v", test.input, result, test.expected)
		}
	}
}

func TestASNNumber(t *testing.T) {
	tests := []struct {
		input   string
		number  string
		numeric bool
	}{
		{"AS65000", "65000", true},
		{"ASfoo", "foo", false},
		{"AS", "", false},
	}

	for _, test := range tests {
		number, numeric := ASNNumber(test.input)
		if number != test.number || numeric != test.numeric {
			t.Errorf("ASNNumber(%q) = %q, %v; want %q, %v", test.input, number, numeric, test.number, test.numeric)
		}
	}
}

func TestResult(t *testing.T) {
	ok := Ok("wrote %d files", 2)
	if !ok.IsOk() || ok.ExitCode() != 0 || ok.Message != "wrote 2 files" {
		t.Errorf("unexpected ok result: %+v", ok)
	}

	cause := errors.New("boom")
	failed := Err(ErrorKindAccessDenied, cause)
	if failed.IsOk() || failed.ExitCode() != 1 {
		t.Errorf("unexpected failed result: %+v", failed)
	}
	if !errors.Is(failed, cause) {
		t.Error("expected result to unwrap to its cause")
	}
	if failed.Error() != "access_denied: boom" {
		t.Errorf("unexpected error string: %q", failed.Error())
	}
}
