package ptrace

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/slimtoolkit/fstrace/pkg/system"
)

type ArgKind string

const (
	ArgKindInt    ArgKind = "int"
	ArgKindString ArgKind = "string"
)

// ArgValue is a decoded syscall argument. A string value that could not
// be read from the target has Valid == false.
type ArgValue struct {
	Kind  ArgKind
	Int   uint64
	Str   string
	Valid bool
}

func (v ArgValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}

	if v.Kind == ArgKindString {
		return json.Marshal(v.Str)
	}

	return []byte(strconv.FormatUint(v.Int, 10)), nil
}

type Argument struct {
	Role  string
	Value ArgValue
}

// Arguments keeps the roles in calling convention order.
type Arguments []Argument

func (a Arguments) Get(role string) (ArgValue, bool) {
	for _, arg := range a {
		if arg.Role == role {
			return arg.Value, true
		}
	}

	return ArgValue{}, false
}

func (a Arguments) Int(role string) (uint64, bool) {
	v, ok := a.Get(role)
	if !ok || !v.Valid || v.Kind != ArgKindInt {
		return 0, false
	}

	return v.Int, true
}

func (a Arguments) String(role string) (string, bool) {
	v, ok := a.Get(role)
	if !ok || !v.Valid || v.Kind != ArgKindString {
		return "", false
	}

	return v.Str, true
}

// MarshalJSON encodes the arguments as an object with ordered keys.
func (a Arguments) MarshalJSON() ([]byte, error) {
	var out bytes.Buffer
	out.WriteByte('{')
	for i, arg := range a {
		if i > 0 {
			out.WriteByte(',')
		}

		key, err := json.Marshal(arg.Role)
		if err != nil {
			return nil, err
		}
		val, err := arg.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}

		out.Write(key)
		out.WriteByte(':')
		out.Write(val)
	}
	out.WriteByte('}')

	return out.Bytes(), nil
}

type argLayout struct {
	role     string
	argIndex int
	isString bool
}

// The "buffer" role of read/write is never decoded (content is not read).
var argLayouts = map[string][]argLayout{
	system.CallNameOpen: {
		{role: system.ArgFilename, argIndex: 0, isString: true},
		{role: system.ArgFlags, argIndex: 1},
		{role: system.ArgMode, argIndex: 2},
	},
	system.CallNameOpenat: {
		{role: system.ArgDirFD, argIndex: 0},
		{role: system.ArgFilename, argIndex: 1, isString: true},
		{role: system.ArgFlags, argIndex: 2},
		{role: system.ArgMode, argIndex: 3},
	},
	system.CallNameRead: {
		{role: system.ArgFD, argIndex: 0},
		{role: system.ArgCount, argIndex: 2},
	},
	system.CallNameWrite: {
		{role: system.ArgFD, argIndex: 0},
		{role: system.ArgCount, argIndex: 2},
	},
	system.CallNameClose: {
		{role: system.ArgFD, argIndex: 0},
	},
}

type Decoder struct {
	mem          StringReader
	maxStringLen int
}

func NewDecoder(mem StringReader, maxStringLen int) *Decoder {
	if maxStringLen <= 0 {
		maxStringLen = DefaultMaxStringLen
	}

	return &Decoder{
		mem:          mem,
		maxStringLen: maxStringLen,
	}
}

// Decode extracts the typed arguments of a cataloged syscall.
// Unknown names produce an empty argument list.
func (d *Decoder) Decode(snap RegisterSnapshot, name string) Arguments {
	layout := argLayouts[name]
	args := make(Arguments, 0, len(layout))
	for _, l := range layout {
		raw := snap.Arg(l.argIndex)
		val := ArgValue{Kind: ArgKindInt, Int: raw, Valid: true}
		if l.isString {
			val = ArgValue{Kind: ArgKindString}
			if d.mem != nil {
				val.Str, val.Valid = d.mem.ReadCString(uintptr(raw), d.maxStringLen)
			}
		}

		args = append(args, Argument{Role: l.role, Value: val})
	}

	return args
}
