// Package symbol implements the stack graph symbol interner.
//
// A Handle is a dense, process-local integer standing in for a byte string.
// Equal strings always map to the same Handle within one Interner, so
// callers can compare symbols with a single integer comparison instead of a
// string comparison. Handles are only comparable within the Interner that
// produced them.
package symbol

import "sort"

// Handle is an interned symbol. The zero Handle is never produced by
// Interner.Intern; it is reserved to mean "no symbol" in contexts that need
// one, such as an unset map value.
type Handle uint32

// IsZero reports whether h is the reserved "no symbol" value.
func (h Handle) IsZero() bool { return h == 0 }

// Interner maps byte strings to dense Handles. The same string always
// yields the same Handle; distinct strings always yield distinct Handles.
// An Interner is not safe for concurrent use; callers needing concurrent
// access must provide their own synchronization (see stack.Interner for the
// same tradeoff applied to hash-consed stacks).
type Interner struct {
	byString map[string]Handle
	byHandle []string
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{
		byString: make(map[string]Handle),
		// index 0 is reserved, so byHandle[0] is never read through Handle(0).
		byHandle: []string{""},
	}
}

// Intern returns the Handle for s, allocating a new one if s has not been
// seen before.
func (in *Interner) Intern(s string) Handle {
	if h, ok := in.byString[s]; ok {
		return h
	}
	h := Handle(len(in.byHandle))
	in.byHandle = append(in.byHandle, s)
	in.byString[s] = h
	return h
}

// Value returns the string that h was interned from. It panics if h was not
// produced by this Interner.
func (in *Interner) Value(h Handle) string {
	if int(h) <= 0 || int(h) >= len(in.byHandle) {
		panic("symbol: handle not produced by this interner")
	}
	return in.byHandle[h]
}

// Lookup returns the Handle for s and whether s has already been interned,
// without allocating a new Handle.
func (in *Interner) Lookup(s string) (Handle, bool) {
	h, ok := in.byString[s]
	return h, ok
}

// Len returns the number of distinct symbols interned so far.
func (in *Interner) Len() int {
	return len(in.byHandle) - 1
}

// Sorted returns every interned Handle in ascending order, useful for
// deterministic test output and JSON rendering.
func (in *Interner) Sorted() []Handle {
	out := make([]Handle, 0, in.Len())
	for h := range in.byHandle {
		if h == 0 {
			continue
		}
		out = append(out, Handle(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
