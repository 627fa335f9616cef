package host

import (
	"bytes"

	"github.com/tetratelabs/wazero/api"
)

// stubGuest assembles a minimal verification guest by hand. allocate is a
// bump allocator starting at stubHeapBase that never reuses memory, so records
// stay readable after a call. The exported globals "allocated" and "freed"
// count the bytes handed out by allocate and returned through deallocate.
//
// start_verify returns the first proof byte minus '0' and executes
// unreachable when that byte is 'T'. start_verify_len returns the last proof
// byte minus '0' and is only exported when withLen is set.
func stubGuest(withLen bool) []byte {
	i32 := api.ValueTypeI32
	types := [][]byte{
		funcType([]byte{i32}, []byte{i32}),                // allocate
		funcType([]byte{i32, i32}, nil),                   // deallocate
		funcType([]byte{i32, i32}, []byte{i32}),           // start_verify
		funcType([]byte{i32, i32, i32, i32}, []byte{i32}), // start_verify_len
	}
	funcs := [][]byte{{0}, {1}, {2}}
	codes := [][]byte{
		// allocated += size; ptr := next; next += size; return ptr
		funcBody(globalGet(1), localGet(0), opI32Add, globalSet(1),
			globalGet(0), globalGet(0), localGet(0), opI32Add, globalSet(0)),
		// freed += capacity
		funcBody(globalGet(2), localGet(1), opI32Add, globalSet(2)),
		funcBody(localGet(0), opLoad8U, i32Const('T'), opI32Eq,
			[]byte{0x04, 0x40}, opUnreachable, opEnd,
			localGet(0), opLoad8U, i32Const('0'), opI32Sub),
	}
	exports := [][]byte{
		export("memory", api.ExternTypeMemory, 0),
		export("allocate", api.ExternTypeFunc, 0),
		export("deallocate", api.ExternTypeFunc, 1),
		export("start_verify", api.ExternTypeFunc, 2),
		export("allocated", api.ExternTypeGlobal, 1),
		export("freed", api.ExternTypeGlobal, 2),
	}
	if withLen {
		funcs = append(funcs, []byte{3})
		codes = append(codes, funcBody(localGet(0), localGet(1), opI32Add, i32Const(1), opI32Sub,
			opLoad8U, i32Const('0'), opI32Sub))
		exports = append(exports, export("start_verify_len", api.ExternTypeFunc, 3))
	}

	return concat(
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
		section(1, types...),
		section(3, funcs...),
		section(5, []byte{0x00, 0x01}), // one memory, min 1 page, no max
		section(6, mutableI32(stubHeapBase), mutableI32(0), mutableI32(0)),
		section(7, exports...),
		section(10, codes...),
	)
}

const stubHeapBase = 1024

var (
	opI32Add      = []byte{0x6a}
	opI32Sub      = []byte{0x6b}
	opI32Eq       = []byte{0x46}
	opLoad8U      = []byte{0x2d, 0x00, 0x00}
	opUnreachable = []byte{0x00}
	opEnd         = []byte{0x0b}
)

func localGet(idx uint32) []byte  { return append([]byte{0x20}, uleb(idx)...) }
func globalGet(idx uint32) []byte { return append([]byte{0x23}, uleb(idx)...) }
func globalSet(idx uint32) []byte { return append([]byte{0x24}, uleb(idx)...) }
func i32Const(v int32) []byte     { return append([]byte{0x41}, sleb(v)...) }

func mutableI32(init int32) []byte {
	return concat([]byte{api.ValueTypeI32, 0x01}, i32Const(init), opEnd)
}

func funcType(params, results []byte) []byte {
	return concat([]byte{0x60}, uleb(uint32(len(params))), params, uleb(uint32(len(results))), results)
}

func funcBody(code ...[]byte) []byte {
	body := concat([]byte{0x00}, concat(code...), opEnd) // no locals
	return concat(uleb(uint32(len(body))), body)
}

func export(name string, kind api.ExternType, idx uint32) []byte {
	return concat(uleb(uint32(len(name))), []byte(name), []byte{kind}, uleb(idx))
}

func section(id byte, items ...[]byte) []byte {
	content := concat(uleb(uint32(len(items))), concat(items...))
	return concat([]byte{id}, uleb(uint32(len(content))), content)
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int32) []byte {
	var out []byte
	x := int64(v)
	for {
		b := byte(x & 0x7f)
		x >>= 7
		if (x == 0 && b&0x40 == 0) || (x == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
