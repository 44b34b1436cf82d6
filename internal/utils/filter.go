package utils

import (
	"strings"
	"unicode"
)

// IsDelimiter checks if a byte is one of the syllable delimiters
func IsDelimiter(b byte, delimiters string) bool {
	return strings.IndexByte(delimiters, b) >= 0
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsForeignChars checks if a string holds anything but ASCII letters
// and delimiters
func ContainsForeignChars(s, delimiters string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || IsDelimiter(c, delimiters) {
			continue
		}
		return true
	}
	return false
}

// IsValidInput checks if input should be syllabified.
// Returns false for empty strings, strings of delimiters only, and strings
// holding numbers or symbols that no spelling can start with.
func IsValidInput(s, delimiters string) bool {
	if len(s) == 0 {
		return false
	}
	if IsOnlyNumbers(s) || ContainsForeignChars(s, delimiters) {
		return false
	}
	if IsDelimiter(s[0], delimiters) {
		return false
	}
	return true
}
