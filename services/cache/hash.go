package cache

import (
	"strconv"
	"unicode/utf16"
)

const keyPrefix = "summary_cache_"

// Key returns the cache key for a transcript.
func Key(transcript string) string {
	return keyPrefix + Hash(transcript)
}

// Hash is the 32-bit shift-subtract string hash (h = h*31 + c) over UTF-16
// code units, with int32 wraparound, rendered as the base-36 absolute value.
// Keys written by earlier clients use the same function, so it must not
// change.
func Hash(s string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 36)
}
