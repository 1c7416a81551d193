package generate

import (
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// ValueKind indicates which handles a Value carries.
type ValueKind int

// Enumeration of value kinds.
const (
	// Empty values are produced by operations in unreachable code.
	Empty ValueKind = iota

	// RValue values carry only a computed result.
	RValue

	// LValue values carry a storage address and possibly a cached result
	// loaded from that address.
	LValue
)

// Value is the unit that flows between the generator's entry points: either
// a computed result or a storage location.  An LValue with no Val is a
// deferred load: its result is loaded from Addr the first time it is needed.
type Value struct {
	Kind ValueKind

	// Val is the computed result.  It is nil for empty values and deferred
	// loads.
	Val value.Value

	// Addr is the pointer to the storage of an lvalue.
	Addr value.Value
}

// rvalue creates a new result-only value.
func rvalue(v value.Value) Value {
	return Value{Kind: RValue, Val: v}
}

// lvalue creates a new lvalue over addr with the (possibly nil) cached result
// val.
func lvalue(addr, val value.Value) Value {
	return Value{Kind: LValue, Addr: addr, Val: val}
}

// IsEmpty returns whether v is the empty value.
func (v Value) IsEmpty() bool {
	return v.Kind == Empty
}

// Deferred returns whether v is an lvalue whose result has not been loaded.
func (v Value) Deferred() bool {
	return v.Kind == LValue && v.Val == nil
}

// Type returns the type of the value's result: for deferred loads this is
// the pointee type of its address.  Empty values have no type.
func (v Value) Type() types.Type {
	switch {
	case v.Val != nil:
		return v.Val.Type()
	case v.Addr != nil:
		return pointee(v.Addr)
	default:
		return nil
	}
}

// pointee returns the element type of a pointer-typed value.
func pointee(addr value.Value) types.Type {
	return addr.Type().(*types.PointerType).ElemType
}
