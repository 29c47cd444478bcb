package provider

import (
	"fmt"
	"strconv"
)

// ParseCounter decodes a counter value written by Increment.
func ParseCounter(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotCounter, b)
	}
	return n, nil
}

// FormatCounter encodes n the way Increment stores it.
func FormatCounter(n int64) []byte {
	return strconv.AppendInt(nil, n, 10)
}
