package ptrace

import (
	"encoding/binary"
)

const wordSize = 8

// wordPeeker reads one machine word from the target's address space.
type wordPeeker func(addr uintptr) (uint64, error)

// readCString reads a NUL terminated string one aligned word at a time,
// so a word never spans into the next page. It never returns more than
// maxLen bytes. A failed read after some bytes were collected returns
// the partial string.
func readCString(peek wordPeeker, addr uintptr, maxLen int) (string, bool) {
	if addr == 0 || maxLen <= 0 {
		return "", false
	}

	start := addr &^ (wordSize - 1)
	skip := int(addr - start)

	out := make([]byte, 0, min(maxLen, 64))
	var word [wordSize]byte
	for wordAddr := start; len(out) < maxLen; wordAddr += wordSize {
		val, err := peek(wordAddr)
		if err != nil {
			if wordAddr == start {
				return "", false
			}
			break
		}

		binary.NativeEndian.PutUint64(word[:], val)
		for _, b := range word[skip:] {
			if b == 0 || len(out) == maxLen {
				return string(out), true
			}
			out = append(out, b)
		}
		skip = 0
	}

	return string(out), true
}
