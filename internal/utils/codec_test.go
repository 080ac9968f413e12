package utils

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestParseUnsigned(t *testing.T) {
	v, err := ParseUnsigned("832421")
	if err != nil {
		t.Fatalf("ParseUnsigned failed: %v", err)
	}
	if v != 832421 {
		t.Errorf("Expected 832421, got %d", v)
	}

	max := strconv.FormatUint(math.MaxUint64, 10)
	v, err = ParseUnsigned(max)
	if err != nil {
		t.Fatalf("ParseUnsigned(%s) failed: %v", max, err)
	}
	if v != math.MaxUint64 {
		t.Errorf("Expected %d, got %d", uint64(math.MaxUint64), v)
	}
}

func TestParseUnsignedOverflow(t *testing.T) {
	// math.MaxUint64 + 1
	v, err := ParseUnsigned("18446744073709551616")
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("Expected ErrOverflow, got %v", err)
	}
	if errors.Is(err, ErrInvalidFormat) {
		t.Error("Overflow must be distinguishable from a format error")
	}
	if v != 0 {
		t.Errorf("Expected zero output on overflow, got %d", v)
	}
}

func TestParseUnsignedInvalid(t *testing.T) {
	inputs := []string{"", "-", "+", "+1", "-1", "12a", " 12", "12 ", "0x10", "1_000"}
	for _, input := range inputs {
		v, err := ParseUnsigned(input)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ParseUnsigned(%q): expected ErrInvalidFormat, got %v", input, err)
		}
		if v != 0 {
			t.Errorf("ParseUnsigned(%q): expected zero output, got %d", input, v)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]int64{
		"1448690669":           1448690669,
		"0":                    0,
		"-86400":               -86400,
		"9223372036854775807":  math.MaxInt64,
		"-9223372036854775808": math.MinInt64,
	}

	for input, expected := range cases {
		v, err := ParseTimestamp(input)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", input, err)
			continue
		}
		if v != expected {
			t.Errorf("ParseTimestamp(%q): expected %d, got %d", input, expected, v)
		}
	}
}

func TestParseTimestampErrors(t *testing.T) {
	for _, input := range []string{"9223372036854775808", "-9223372036854775809"} {
		v, err := ParseTimestamp(input)
		if !errors.Is(err, ErrOverflow) {
			t.Errorf("ParseTimestamp(%q): expected ErrOverflow, got %v", input, err)
		}
		if v != 0 {
			t.Errorf("ParseTimestamp(%q): expected zero output, got %d", input, v)
		}
	}

	for _, input := range []string{"", "-", "+5", "--5", "5-", "1.5", "now"} {
		if _, err := ParseTimestamp(input); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ParseTimestamp(%q): expected ErrInvalidFormat, got %v", input, err)
		}
	}
}

func TestJoin(t *testing.T) {
	cases := [][]string{
		{"foo ", "bar ", "baz"},
		{"Hello ", "", "World", "!"},
		{},
	}
	expected := []string{"foo bar baz", "Hello World!", ""}

	for i, fragments := range cases {
		if got := Join(fragments...); got != expected[i] {
			t.Errorf("Join(%q): expected %q, got %q", fragments, expected[i], got)
		}
	}
}

func TestTrim(t *testing.T) {
	inputs := []string{
		"Hello World",
		"Hello World  ",
		"    Hello World",
		"\tHello World   ",
		"\r\nHello World\r\n",
	}
	for _, input := range inputs {
		if got := Trim(input); got != "Hello World" {
			t.Errorf("Trim(%q): expected %q, got %q", input, "Hello World", got)
		}
		if got := string(TrimBytes([]byte(input))); got != "Hello World" {
			t.Errorf("TrimBytes(%q): expected %q, got %q", input, "Hello World", got)
		}
	}
}

func TestTrimIdempotent(t *testing.T) {
	inputs := []string{"", " ", "\t\n\r ", "a", " a ", "a b", "\v\fx\f\v"}
	for _, input := range inputs {
		once := Trim(input)
		if twice := Trim(once); twice != once {
			t.Errorf("Trim(%q) not idempotent: %q vs %q", input, once, twice)
		}

		onceBytes := TrimBytes([]byte(input))
		if twice := TrimBytes(onceBytes); string(twice) != string(onceBytes) {
			t.Errorf("TrimBytes(%q) not idempotent: %q vs %q", input, onceBytes, twice)
		}
		if string(onceBytes) != once {
			t.Errorf("Trim and TrimBytes disagree on %q: %q vs %q", input, once, onceBytes)
		}
	}

	if got := Trim(" \t\n"); got != "" {
		t.Errorf("Expected empty result for all-whitespace input, got %q", got)
	}
}

func TestBase64Encode(t *testing.T) {
	if got := Base64Encode([]byte("signature")); got != "c2lnbmF0dXJl" {
		t.Errorf("Unexpected encoding: %s", got)
	}
	if got := Base64Encode([]byte{0xff, 0xfe}); got != "//4=" {
		t.Errorf("Expected padded standard alphabet, got %s", got)
	}
}

func TestBase64Decode(t *testing.T) {
	data, err := Base64Decode("c2lnbmF0dXJl")
	if err != nil || string(data) != "signature" {
		t.Errorf("Unexpected decoding: %q, %v", data, err)
	}
	if _, err := Base64Decode("not base64!"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}
}
