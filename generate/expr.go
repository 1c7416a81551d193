package generate

import (
	"fmt"

	"lowc/report"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// BinaryOp enumerates the binary operators.
type BinaryOp int

// Enumeration of binary operators.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod

	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr

	OpBoolAnd
	OpBoolOr

	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEq
	OpNotEq
)

var binaryOpNames = [...]string{
	"+", "-", "*", "/", "%",
	"&", "|", "^", "<<", ">>",
	"&&", "||",
	"<", "<=", ">", ">=", "==", "!=",
}

func (op BinaryOp) String() string {
	return binaryOpNames[op]
}

// UnaryOp enumerates the arithmetic and logical unary operators.
type UnaryOp int

// Enumeration of unary operators.
const (
	OpNeg UnaryOp = iota
	OpBitNot
	OpBoolNot
)

var unaryOpNames = [...]string{"-", "~", "!"}

func (op UnaryOp) String() string {
	return unaryOpNames[op]
}

// -----------------------------------------------------------------------------

// IntConst creates an integer constant of the narrowest type that can hold n:
// 0 and 1 are booleans; otherwise the first of int8, int16, int32 and int64
// whose signed minimum and unsigned maximum bound n.  Values that exceed the
// signed range of the chosen type are stored wrapped.
func (g *Generator) IntConst(n int64) Value {
	var t *types.IntType
	switch {
	case n == 0 || n == 1:
		t = types.I1
	case n >= int8Min && n <= uint8Max:
		t = types.I8
	case n >= int16Min && n <= uint16Max:
		t = types.I16
	case n >= int32Min && n <= uint32Max:
		t = types.I32
	default:
		t = types.I64
	}

	return rvalue(newInt(t, n))
}

const (
	int8Min   = -1 << 7
	uint8Max  = 1<<8 - 1
	int16Min  = -1 << 15
	uint16Max = 1<<16 - 1
	int32Min  = -1 << 31
	uint32Max = 1<<32 - 1
)

// FloatConst creates a `double` constant.
func (g *Generator) FloatConst(f float64) Value {
	return rvalue(constant.NewFloat(types.Double, f))
}

// StringConst creates a private global holding the null terminated string s
// and returns a `*i8` pointing to its first character.
func (g *Generator) StringConst(s string) Value {
	data := constant.NewCharArrayFromString(s + "\x00")

	glob := g.mod.NewGlobalDef(fmt.Sprintf(".str.%d", g.stringCounter), data)
	glob.Linkage = enum.LinkagePrivate
	glob.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
	glob.Immutable = true
	g.stringCounter++

	zero := constant.NewInt(types.I64, 0)
	return rvalue(constant.NewGetElementPtr(data.Typ, glob, zero, zero))
}

// Identifier looks up a name.  Scalar variables are loaded immediately;
// aggregates are loaded when their value is first needed.
func (g *Generator) Identifier(name string) (result Value, err error) {
	defer report.Catch(&err)

	v, err := g.scopes.Lookup(name)
	check(err)

	return g.autoLoad(v), nil
}

// Assign stores rhs to the storage of lhs and returns rhs.
func (g *Generator) Assign(lhs, rhs Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return rhs, nil
	}

	if lhs.Addr == nil {
		throw(report.NotAssignable, "cannot assign to a value without storage")
	}

	g.requireBlock("assignment")

	src := g.cast(g.materialize(rhs), pointee(lhs.Addr), false)
	g.block.NewStore(src, lhs.Addr)
	return rhs, nil
}

// Call calls callee with args.  Arguments in the declared parameter slots are
// implicitly cast to the parameter types; extra arguments of a variadic
// function are passed unchanged.
func (g *Generator) Call(callee Value, args []Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	fn := g.materialize(callee)
	ft, ok := funcTypeOf(fn.Type())
	if !ok {
		throw(report.NotCallable, "cannot call a value of type %s", fn.Type())
	}

	if (!ft.Variadic && len(args) != len(ft.Params)) || len(args) < len(ft.Params) {
		throw(report.ArityMismatch, "expected %d arguments but got %d", len(ft.Params), len(args))
	}

	llArgs := make([]value.Value, len(args))
	for i, arg := range args {
		llArgs[i] = g.materialize(arg)

		if i < len(ft.Params) {
			llArgs[i] = g.cast(llArgs[i], ft.Params[i], false)
		}
	}

	g.requireBlock("a function call")
	return rvalue(g.block.NewCall(fn, llArgs...)), nil
}

// funcTypeOf returns the function type of a pointer to a function.
func funcTypeOf(t types.Type) (*types.FuncType, bool) {
	if pt, ok := t.(*types.PointerType); ok {
		ft, ok := pt.ElemType.(*types.FuncType)
		return ft, ok
	}

	return nil, false
}

// -----------------------------------------------------------------------------

// Binary applies a binary operator to lhs and rhs.  The operands are promoted
// to a common type first.
func (g *Generator) Binary(op BinaryOp, lhs, rhs Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	x, y := g.materialize(lhs), g.materialize(rhs)

	switch op {
	case OpBoolAnd:
		return rvalue(g.binary(opAnd, g.truthy(x), g.truthy(y))), nil
	case OpBoolOr:
		return rvalue(g.binary(opOr, g.truthy(x), g.truthy(y))), nil
	}

	x, y = g.promote(x, y)

	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return rvalue(g.arithmetic(op, x, y)), nil
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		if _, ok := x.Type().(*types.IntType); !ok {
			throw(report.BitwiseOnInteger, "operator %s requires integer operands, not %s", op, x.Type())
		}

		return rvalue(g.binary(bitwiseOps[op-OpBitAnd], x, y)), nil
	default:
		return rvalue(g.compare(op, x, y)), nil
	}
}

var bitwiseOps = [...]binOp{opAnd, opOr, opXor, opShl, opAShr}

// arithmetic emits an arithmetic operator over operands of the same type.
func (g *Generator) arithmetic(op BinaryOp, x, y value.Value) value.Value {
	switch x.Type().(type) {
	case *types.IntType:
		return g.binary([...]binOp{opAdd, opSub, opMul, opSDiv, opSRem}[op-OpAdd], x, y)
	case *types.FloatType:
		return g.binary([...]binOp{opFAdd, opFSub, opFMul, opFDiv, opFRem}[op-OpAdd], x, y)
	}

	throw(report.InvalidOperands, "operator %s is not defined for %s", op, x.Type())
	return nil
}

// compare emits a comparison over operands of the same type.  Integers are
// compared signed, floating point values ordered and pointers as unsigned
// addresses.
func (g *Generator) compare(op BinaryOp, x, y value.Value) value.Value {
	i := op - OpLess

	switch x.Type().(type) {
	case *types.IntType:
		return g.icmp([...]enum.IPred{
			enum.IPredSLT, enum.IPredSLE, enum.IPredSGT, enum.IPredSGE, enum.IPredEQ, enum.IPredNE,
		}[i], x, y)
	case *types.FloatType:
		return g.fcmp([...]enum.FPred{
			enum.FPredOLT, enum.FPredOLE, enum.FPredOGT, enum.FPredOGE, enum.FPredOEQ, enum.FPredONE,
		}[i], x, y)
	case *types.PointerType:
		return g.icmp([...]enum.IPred{
			enum.IPredULT, enum.IPredULE, enum.IPredUGT, enum.IPredUGE, enum.IPredEQ, enum.IPredNE,
		}[i], x, y)
	}

	throw(report.InvalidOperands, "operator %s is not defined for %s", op, x.Type())
	return nil
}

// Unary applies an arithmetic or logical unary operator to v.
func (g *Generator) Unary(op UnaryOp, v Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	x := g.materialize(v)

	switch op {
	case OpNeg:
		switch t := x.Type().(type) {
		case *types.IntType:
			return rvalue(g.binary(opSub, newInt(t, 0), x)), nil
		case *types.FloatType:
			return rvalue(g.fneg(x)), nil
		}

		throw(report.InvalidOperands, "cannot negate a value of type %s", x.Type())
	case OpBitNot:
		if t, ok := x.Type().(*types.IntType); ok {
			return rvalue(g.binary(opXor, x, newInt(t, -1))), nil
		}

		throw(report.BitwiseOnInteger, "operator ~ requires an integer operand, not %s", x.Type())
	}

	return rvalue(g.binary(opXor, g.truthy(x), constant.NewBool(true))), nil
}

// -----------------------------------------------------------------------------

// Ref takes the address of v.
func (g *Generator) Ref(v Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	if v.Addr == nil {
		throw(report.NotAddressable, "cannot take the address of a value without storage")
	}

	return rvalue(v.Addr), nil
}

// Deref dereferences the pointer v.  The result refers to the pointee.
func (g *Generator) Deref(v Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	ptr := g.materialize(v)
	if pt, ok := ptr.Type().(*types.PointerType); !ok || !sized(pt.ElemType) {
		throw(report.NotDereferenceable, "cannot dereference a value of type %s", ptr.Type())
	}

	return g.autoLoad(lvalue(ptr, nil)), nil
}

// Index computes the element idx of the array or pointer base.  Pointers are
// indexed by explicit address arithmetic.
func (g *Generator) Index(base, idx Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	index := g.materialize(idx)
	if _, ok := index.Type().(*types.IntType); !ok {
		throw(report.InvalidIndex, "cannot index with a value of type %s", index.Type())
	}

	index = g.cast(index, types.I64, false)

	switch bt := base.Type().(type) {
	case *types.ArrayType:
		if base.Addr == nil {
			throw(report.InvalidIndex, "cannot index an array value without storage")
		}

		addr := g.gep(bt, base.Addr, constant.NewInt(types.I64, 0), index)
		return g.autoLoad(lvalue(addr, nil)), nil
	case *types.PointerType:
		if !sized(bt.ElemType) {
			throw(report.InvalidIndex, "cannot index a pointer to %s", bt.ElemType)
		}

		ptr := g.materialize(base)
		offset := g.binary(opMul, index, g.sizeOf(bt.ElemType))
		addrInt := g.binary(opAdd, g.convert(opPtrToInt, ptr, types.I64), offset)
		addr := g.convert(opIntToPtr, addrInt, bt)
		return g.autoLoad(lvalue(addr, nil)), nil
	}

	throw(report.InvalidIndex, "cannot index a value of type %s", base.Type())
	return
}

// Dot accesses the field named field of the struct base.  If base has
// storage, the result refers to the field's storage.
func (g *Generator) Dot(base Value, field string) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	st, ok := base.Type().(*types.StructType)
	if !ok {
		throw(report.NotAStruct, "cannot access field `%s` of a value of type %s", field, base.Type())
	}

	agg, ok := g.types.AggregateOf(st)
	if !ok {
		throw(report.NoSuchField, "struct %s has no definition", st.Name())
	}

	n, ok := agg.FieldIndex(field)
	if !ok {
		throw(report.NoSuchField, "struct %s has no field named `%s`", st.Name(), field)
	}

	if base.Addr != nil {
		addr := g.gep(st, base.Addr, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(n)))
		return g.autoLoad(lvalue(addr, nil)), nil
	}

	g.requireBlock("a field access")
	return rvalue(g.block.NewExtractValue(base.Val, uint64(n))), nil
}

// SizeOf returns the size of t in bytes as an `int64` constant.
func (g *Generator) SizeOf(t types.Type) (result Value, err error) {
	defer report.Catch(&err)

	if !sized(t) {
		throw(report.InvalidOperands, "cannot take the size of %s", t)
	}

	return rvalue(g.sizeOf(t)), nil
}

// sizeOf computes the size of t as the address of the second element of an
// array of t starting at null.
func (g *Generator) sizeOf(t types.Type) constant.Constant {
	end := constant.NewGetElementPtr(t, constant.NewNull(types.NewPointer(t)), constant.NewInt(types.I32, 1))
	return constant.NewPtrToInt(end, types.I64)
}

// -----------------------------------------------------------------------------

// materialize returns the computed result of v, loading it if it is deferred.
func (g *Generator) materialize(v Value) value.Value {
	switch {
	case v.Val != nil:
		return v.Val
	case v.Addr != nil:
		return g.load(v.Addr)
	default:
		report.ReportICE("empty value used in reachable code")
		return nil
	}
}

// autoLoad loads a deferred lvalue of scalar type.  Aggregates are left
// deferred, as is everything outside of reachable function code.
func (g *Generator) autoLoad(v Value) Value {
	if v.Deferred() && g.block != nil && !g.finished() && !isAggregate(v.Type()) {
		v.Val = g.load(v.Addr)
	}

	return v
}

// sized returns whether values of type t occupy memory.
func sized(t types.Type) bool {
	switch v := t.(type) {
	case *types.VoidType, *types.FuncType, *types.LabelType, *types.MetadataType:
		return false
	case *types.StructType:
		return !v.Opaque
	}

	return true
}
