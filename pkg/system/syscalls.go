package system

import (
	"strconv"
)

//NOTES:
//* only the file access calls are cataloged (x86_64 numbers)
//* argument roles are listed in calling convention order

const (
	SyscallRead   = 0
	SyscallWrite  = 1
	SyscallOpen   = 2
	SyscallClose  = 3
	SyscallOpenat = 257
)

const (
	CallNameRead   = "read"
	CallNameWrite  = "write"
	CallNameOpen   = "open"
	CallNameClose  = "close"
	CallNameOpenat = "openat"
)

// Argument role names
const (
	ArgFilename = "filename"
	ArgFlags    = "flags"
	ArgMode     = "mode"
	ArgDirFD    = "dirfd"
	ArgFD       = "fd"
	ArgBuffer   = "buffer"
	ArgCount    = "count"
)

const unknownCallNamePrefix = "syscall_"

type SyscallDescriptor struct {
	Number uint64
	Name   string
	Args   []string
}

var fileSyscalls = map[uint64]*SyscallDescriptor{
	SyscallRead: {
		Number: SyscallRead,
		Name:   CallNameRead,
		Args:   []string{ArgFD, ArgBuffer, ArgCount},
	},
	SyscallWrite: {
		Number: SyscallWrite,
		Name:   CallNameWrite,
		Args:   []string{ArgFD, ArgBuffer, ArgCount},
	},
	SyscallOpen: {
		Number: SyscallOpen,
		Name:   CallNameOpen,
		Args:   []string{ArgFilename, ArgFlags, ArgMode},
	},
	SyscallClose: {
		Number: SyscallClose,
		Name:   CallNameClose,
		Args:   []string{ArgFD},
	},
	SyscallOpenat: {
		Number: SyscallOpenat,
		Name:   CallNameOpenat,
		Args:   []string{ArgDirFD, ArgFilename, ArgFlags, ArgMode},
	},
}

var fileSyscallsByName = func() map[string]*SyscallDescriptor {
	byName := make(map[string]*SyscallDescriptor, len(fileSyscalls))
	for _, d := range fileSyscalls {
		byName[d.Name] = d
	}
	return byName
}()

// IsTraced returns true for the file access syscalls the tracer reports.
func IsTraced(num uint64) bool {
	_, ok := fileSyscalls[num]
	return ok
}

// CallName never fails: unknown numbers get a synthetic "syscall_<n>" name.
func CallName(num uint64) string {
	if d, ok := fileSyscalls[num]; ok {
		return d.Name
	}

	return unknownCallNamePrefix + strconv.FormatUint(num, 10)
}

func CallNumber(name string) (uint64, bool) {
	if d, ok := fileSyscallsByName[name]; ok {
		return d.Number, true
	}

	return 0, false
}

// ArgumentRoles returns a copy of the ordered argument roles for the call
// (nil for unknown names).
func ArgumentRoles(name string) []string {
	d, ok := fileSyscallsByName[name]
	if !ok {
		return nil
	}

	roles := make([]string, len(d.Args))
	copy(roles, d.Args)
	return roles
}

// TracedCallNames returns the cataloged call names in syscall number order.
func TracedCallNames() []string {
	return []string{
		CallNameRead,
		CallNameWrite,
		CallNameOpen,
		CallNameClose,
		CallNameOpenat,
	}
}
