package utils

import "unicode/utf8"

// IsBinary reports whether the provided byte slice appears to contain binary
// data. Content is treated as binary when it is not valid UTF-8 or contains a
// NUL byte; such files are skipped rather than embedded in the payload.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}
