// Package util provides small helpers shared across the go-insight packages.
package util

// IsASCII reports whether every byte of data is 7-bit ASCII.
func IsASCII(data []byte) bool {
	for _, b := range data {
		if b > 0x7F {
			return false
		}
	}

	return true
}

// CloneSlice clones slice with cloneSize.
// This function will use src length as the clone size if cloneSize is 0.
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}

// IsHexDigit reports whether c is an ASCII hexadecimal digit.
func IsHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}
