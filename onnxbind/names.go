package onnxbind

import "strings"

// NameTable holds NUL-terminated copies of a set of tensor names together
// with a parallel array of pointers to them, in the layout the engine's run
// entry point expects. The table owns its copies: the pointers stay valid
// for as long as the table is reachable, independent of the input strings.
type NameTable struct {
	names    []string
	cstrings [][]byte
	ptrs     []*byte
}

// BuildNameTable copies names into a new table. Names must not contain an
// embedded NUL byte, since the native side reads them as C strings.
func BuildNameTable(names []string) (*NameTable, error) {
	t := &NameTable{
		names:    make([]string, len(names)),
		cstrings: make([][]byte, len(names)),
		ptrs:     make([]*byte, len(names)),
	}
	for i, name := range names {
		if strings.IndexByte(name, 0) >= 0 {
			return nil, &InvalidNameError{Name: name}
		}
		t.names[i] = name
		t.cstrings[i] = append([]byte(name), 0)
		t.ptrs[i] = &t.cstrings[i][0]
	}
	return t, nil
}

// Len returns the number of names in the table.
func (t *NameTable) Len() int {
	return len(t.names)
}

// Names returns a copy of the table's names in order.
func (t *NameTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// pointerArray returns the parallel C-string pointer array. The table must
// be kept alive for as long as the engine may dereference the pointers.
func (t *NameTable) pointerArray() []*byte {
	return t.ptrs
}
