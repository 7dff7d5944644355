package ptrace

import (
	"encoding/binary"
	"errors"
	"testing"
)

type fakeMemory struct {
	base  uintptr
	data  []byte
	peeks int
	// pageEnd rejects words that extend past the mapped data
	pageEnd bool
	addrs   []uintptr
}

func newFakeMemory(base uintptr, data string) *fakeMemory {
	return &fakeMemory{base: base, data: []byte(data)}
}

func (m *fakeMemory) peek(addr uintptr) (uint64, error) {
	m.peeks++
	m.addrs = append(m.addrs, addr)
	if addr < m.base || addr >= m.base+uintptr(len(m.data)) {
		return 0, errors.New("EIO")
	}

	if m.pageEnd && addr+wordSize > m.base+uintptr(len(m.data)) {
		return 0, errors.New("EIO")
	}

	var word [wordSize]byte
	copy(word[:], m.data[addr-m.base:])
	return binary.NativeEndian.Uint64(word[:]), nil
}

func TestReadCString(t *testing.T) {
	const base = uintptr(0x7ffc0000)

	tt := []struct {
		name   string
		memory string
		addr   uintptr
		maxLen int
		want   string
		ok     bool
	}{
		{name: "short", memory: "abc\x00", addr: base, maxLen: 256, want: "abc", ok: true},
		{name: "word.aligned", memory: "/etc/pas\x00", addr: base, maxLen: 256, want: "/etc/pas", ok: true},
		{name: "multi.word", memory: "/etc/passwd\x00garbage", addr: base, maxLen: 256, want: "/etc/passwd", ok: true},
		{name: "empty", memory: "\x00", addr: base, maxLen: 256, want: "", ok: true},
		{name: "bounded", memory: "abcdefghijklmnop\x00", addr: base, maxLen: 5, want: "abcde", ok: true},
		{name: "bounded.on.word", memory: "abcdefghijklmnop\x00", addr: base, maxLen: 8, want: "abcdefgh", ok: true},
		{name: "unterminated.tail", memory: "abcdefghij", addr: base, maxLen: 256, want: "abcdefghij", ok: true},
		{name: "partial", memory: "abcdefgh", addr: base, maxLen: 256, want: "abcdefgh", ok: true},
		{name: "unaligned", memory: "xxxabc\x00", addr: base + 3, maxLen: 256, want: "abc", ok: true},
		{name: "unaligned.multi.word", memory: "xxxxx/etc/passwd\x00", addr: base + 5, maxLen: 256, want: "/etc/passwd", ok: true},
		{name: "unaligned.bounded", memory: "xx/etc/passwd\x00", addr: base + 2, maxLen: 4, want: "/etc", ok: true},
		{name: "unmapped", memory: "abc\x00", addr: base + 0x1000, maxLen: 256, want: "", ok: false},
		{name: "zero.max", memory: "abc\x00", addr: base, maxLen: 0, want: "", ok: false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			mem := newFakeMemory(base, tc.memory)
			got, ok := readCString(mem.peek, tc.addr, tc.maxLen)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadCString_NullAddressNeverPeeks(t *testing.T) {
	mem := newFakeMemory(0, "abc\x00")
	if _, ok := readCString(mem.peek, 0, 256); ok {
		t.Error("null address must not be readable")
	}
	if mem.peeks != 0 {
		t.Errorf("unexpected peeks: %d", mem.peeks)
	}
}

func TestReadCString_PeeksAreBounded(t *testing.T) {
	mem := newFakeMemory(0x1000, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	got, ok := readCString(mem.peek, 0x1000, 20)
	if !ok || len(got) != 20 {
		t.Fatalf("unexpected result: %q (ok=%v)", got, ok)
	}
	if mem.peeks != 3 {
		t.Errorf("expected 3 word reads, got %d", mem.peeks)
	}
}

func TestReadCString_EndOfMapping(t *testing.T) {
	const base = uintptr(0x7ffc0000)

	//the string occupies the last bytes of the mapping
	mem := newFakeMemory(base, "0123456789abc/x\x00")
	mem.pageEnd = true

	got, ok := readCString(mem.peek, base+13, 256)
	if !ok || got != "/x" {
		t.Fatalf("unexpected result: %q (ok=%v)", got, ok)
	}

	for _, addr := range mem.addrs {
		if addr%wordSize != 0 {
			t.Errorf("unaligned word read at %#x", addr)
		}
	}
}
