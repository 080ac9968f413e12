package utils

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrInvalidFormat is returned when text is not a well-formed number or timestamp
	ErrInvalidFormat = errors.New("invalid format")

	// ErrOverflow is returned when a number does not fit the target width
	ErrOverflow = errors.New("value out of range")
)

const whitespace = " \t\n\v\f\r"

// ParseUnsigned parses a base-10 unsigned integer that occupies the whole
// input. Leading or trailing whitespace is not tolerated; trimming is the
// caller's job. On failure the returned value is always zero.
func ParseUnsigned(s string) (uint64, error) {
	if !isDigits(s) {
		return 0, ErrInvalidFormat
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrOverflow
		}
		return 0, ErrInvalidFormat
	}
	return v, nil
}

// ParseTimestamp parses signed seconds since the epoch. Only a leading '-'
// is accepted as a sign.
func ParseTimestamp(s string) (int64, error) {
	digits := strings.TrimPrefix(s, "-")
	if !isDigits(digits) {
		return 0, ErrInvalidFormat
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrOverflow
		}
		return 0, ErrInvalidFormat
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Join concatenates fragments in order into a freshly allocated string
func Join(fragments ...string) string {
	n := 0
	for _, f := range fragments {
		n += len(f)
	}

	var b strings.Builder
	b.Grow(n)
	for _, f := range fragments {
		b.WriteString(f)
	}
	return b.String()
}

// Trim removes leading and trailing ASCII whitespace. The result shares
// storage with s.
func Trim(s string) string {
	return strings.Trim(s, whitespace)
}

// TrimBytes is the []byte form of Trim; the result aliases b.
func TrimBytes(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && strings.IndexByte(whitespace, b[start]) >= 0 {
		start++
	}
	for end > start && strings.IndexByte(whitespace, b[end-1]) >= 0 {
		end--
	}
	return b[start:end]
}

// Base64Encode encodes a detached signature for embedding in a desc record
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Base64Decode reverses Base64Encode
func Base64Decode(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	return data, nil
}
