package models

import "strings"

// VersionCompare orders two pacman versions of the form
// [epoch:]pkgver[-pkgrel]. It returns -1, 0 or 1. A missing epoch is 0 and
// the release is only compared when both versions carry one.
func VersionCompare(a, b string) int {
	if a == b {
		return 0
	}

	epochA, verA, relA := splitEVR(a)
	epochB, verB, relB := splitEVR(b)

	ret := segmentCompare(epochA, epochB)
	if ret == 0 {
		ret = segmentCompare(verA, verB)
		if ret == 0 && relA != "" && relB != "" {
			ret = segmentCompare(relA, relB)
		}
	}
	return ret
}

func splitEVR(evr string) (epoch, version, release string) {
	i := 0
	for i < len(evr) && isDigit(evr[i]) {
		i++
	}

	rest := evr
	epoch = "0"
	if i < len(evr) && evr[i] == ':' {
		if i > 0 {
			epoch = evr[:i]
		}
		rest = evr[i+1:]
	}

	if dash := strings.LastIndexByte(rest, '-'); dash >= 0 {
		return epoch, rest[:dash], rest[dash+1:]
	}
	return epoch, rest, ""
}

// segmentCompare walks both strings as alternating runs of digits and
// letters separated by any other characters. Numeric runs compare by
// value, alphabetic runs lexically, and a numeric run always beats an
// alphabetic one.
func segmentCompare(a, b string) int {
	if a == b {
		return 0
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		si, sj := i, j
		for i < len(a) && !isAlnum(a[i]) {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) {
			j++
		}

		if i >= len(a) || j >= len(b) {
			break
		}

		// Differing separator lengths decide on their own
		if i-si != j-sj {
			if i-si < j-sj {
				return -1
			}
			return 1
		}

		startA, startB := i, j
		numeric := isDigit(a[i])
		if numeric {
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
		} else {
			for i < len(a) && isAlpha(a[i]) {
				i++
			}
			for j < len(b) && isAlpha(b[j]) {
				j++
			}
		}

		segA, segB := a[startA:i], b[startB:j]

		// The segments are of different types: numbers are newer
		if segB == "" {
			if numeric {
				return 1
			}
			return -1
		}

		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
		}

		if c := strings.Compare(segA, segB); c != 0 {
			return c
		}
	}

	if i >= len(a) && j >= len(b) {
		return 0
	}

	// A remaining alphabetic run never beats an empty string:
	// 1.0alpha < 1.0 < 1.0.1
	if (i >= len(a) && !isAlpha(b[j])) || (i < len(a) && isAlpha(a[i])) {
		return -1
	}
	return 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }
