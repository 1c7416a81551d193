package generate

import (
	"math"

	"lowc/report"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// The functions in this file are the only places instructions for values are
// created.  When every operand is a constant, the result is folded into a
// constant instead: this keeps implicit casts of literals out of the
// instruction stream and is what makes global initializers possible.  When
// the generator is not positioned inside a function body, a non-constant
// operand is an error.

// castOp enumerates the conversion instructions.
type castOp int

const (
	opTrunc castOp = iota
	opZExt
	opSExt
	opFPTrunc
	opFPExt
	opFPToSI
	opSIToFP
	opUIToFP
	opPtrToInt
	opIntToPtr
	opBitCast
)

// binOp enumerates the binary arithmetic and bitwise instructions.
type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opSDiv
	opSRem
	opFAdd
	opFSub
	opFMul
	opFDiv
	opFRem
	opAnd
	opOr
	opXor
	opShl
	opAShr
)

// requireBlock fails if there is no block to emit into.
func (g *Generator) requireBlock(what string) {
	if g.block == nil {
		throw(report.NotConstant, "%s is not allowed in a constant expression", what)
	}
}

// convert applies a conversion to v.
func (g *Generator) convert(op castOp, v value.Value, to types.Type) value.Value {
	if c, ok := v.(constant.Constant); ok {
		return foldCast(op, c, to)
	}

	g.requireBlock("a conversion of a runtime value")

	switch op {
	case opTrunc:
		return g.block.NewTrunc(v, to)
	case opZExt:
		return g.block.NewZExt(v, to)
	case opSExt:
		return g.block.NewSExt(v, to)
	case opFPTrunc:
		return g.block.NewFPTrunc(v, to)
	case opFPExt:
		return g.block.NewFPExt(v, to)
	case opFPToSI:
		return g.block.NewFPToSI(v, to)
	case opSIToFP:
		return g.block.NewSIToFP(v, to)
	case opUIToFP:
		return g.block.NewUIToFP(v, to)
	case opPtrToInt:
		return g.block.NewPtrToInt(v, to)
	case opIntToPtr:
		return g.block.NewIntToPtr(v, to)
	default:
		return g.block.NewBitCast(v, to)
	}
}

// binary applies a binary arithmetic or bitwise operation to x and y which
// must be of the same type.
func (g *Generator) binary(op binOp, x, y value.Value) value.Value {
	if cx, ok := x.(constant.Constant); ok {
		if cy, ok := y.(constant.Constant); ok {
			return foldBinary(op, cx, cy)
		}
	}

	g.requireBlock("a runtime operation")

	switch op {
	case opAdd:
		return g.block.NewAdd(x, y)
	case opSub:
		return g.block.NewSub(x, y)
	case opMul:
		return g.block.NewMul(x, y)
	case opSDiv:
		return g.block.NewSDiv(x, y)
	case opSRem:
		return g.block.NewSRem(x, y)
	case opFAdd:
		return g.block.NewFAdd(x, y)
	case opFSub:
		return g.block.NewFSub(x, y)
	case opFMul:
		return g.block.NewFMul(x, y)
	case opFDiv:
		return g.block.NewFDiv(x, y)
	case opFRem:
		return g.block.NewFRem(x, y)
	case opAnd:
		return g.block.NewAnd(x, y)
	case opOr:
		return g.block.NewOr(x, y)
	case opXor:
		return g.block.NewXor(x, y)
	case opShl:
		return g.block.NewShl(x, y)
	default:
		return g.block.NewAShr(x, y)
	}
}

// icmp compares two integers or pointers.
func (g *Generator) icmp(pred enum.IPred, x, y value.Value) value.Value {
	if cx, ok := x.(*constant.Int); ok {
		if cy, ok := y.(*constant.Int); ok {
			return foldICmp(pred, cx, cy)
		}
	}

	if cx, ok := x.(constant.Constant); ok {
		if cy, ok := y.(constant.Constant); ok {
			return constant.NewICmp(pred, cx, cy)
		}
	}

	g.requireBlock("a runtime comparison")
	return g.block.NewICmp(pred, x, y)
}

// fcmp compares two floating point values.
func (g *Generator) fcmp(pred enum.FPred, x, y value.Value) value.Value {
	if cx, ok := x.(*constant.Float); ok {
		if cy, ok := y.(*constant.Float); ok {
			if fx, ok := floatOf(cx); ok {
				if fy, ok := floatOf(cy); ok {
					return constant.NewBool(compareFloats(pred, fx, fy))
				}
			}
		}
	}

	if cx, ok := x.(constant.Constant); ok {
		if cy, ok := y.(constant.Constant); ok {
			return constant.NewFCmp(pred, cx, cy)
		}
	}

	g.requireBlock("a runtime comparison")
	return g.block.NewFCmp(pred, x, y)
}

// fneg negates a floating point value.
func (g *Generator) fneg(x value.Value) value.Value {
	if cx, ok := x.(*constant.Float); ok {
		if f, ok := floatOf(cx); ok {
			return newFloat(cx.Typ, -f)
		}
	}

	if cx, ok := x.(constant.Constant); ok {
		return constant.NewFNeg(cx)
	}

	g.requireBlock("a runtime negation")
	return g.block.NewFNeg(x)
}

// gep computes the address of an element of the object of type elemType
// pointed to by src.
func (g *Generator) gep(elemType types.Type, src value.Value, indices ...value.Value) value.Value {
	if csrc, ok := src.(constant.Constant); ok {
		cindices := make([]constant.Constant, len(indices))
		allConst := true
		for i, index := range indices {
			if cindex, ok := index.(constant.Constant); ok {
				cindices[i] = cindex
			} else {
				allConst = false
				break
			}
		}

		if allConst {
			return constant.NewGetElementPtr(elemType, csrc, cindices...)
		}
	}

	g.requireBlock("an address computation")
	return g.block.NewGetElementPtr(elemType, src, indices...)
}

// load reads the value stored at addr.
func (g *Generator) load(addr value.Value) value.Value {
	g.requireBlock("reading from memory")
	return g.block.NewLoad(pointee(addr), addr)
}

// -----------------------------------------------------------------------------

// newInt creates an integer constant of type t from n wrapped to the width of
// t in two's complement.
func newInt(t *types.IntType, n int64) *constant.Int {
	if t.BitSize == 1 {
		return constant.NewBool(n&1 == 1)
	}

	if t.BitSize < 64 {
		shift := 64 - t.BitSize
		n = (n << shift) >> shift
	}

	return constant.NewInt(t, n)
}

// signedOf returns the value of the integer constant interpreted as signed.
func signedOf(c *constant.Int) int64 {
	n := c.X.Int64()
	if bits := c.Typ.BitSize; bits < 64 {
		shift := 64 - bits
		n = (n << shift) >> shift
	}

	return n
}

// unsignedOf returns the value of the integer constant interpreted as
// unsigned.
func unsignedOf(c *constant.Int) uint64 {
	n := uint64(c.X.Int64())
	if bits := c.Typ.BitSize; bits < 64 {
		n &= (1 << bits) - 1
	}

	return n
}

// newFloat creates a floating point constant of type t.  The value is
// rounded to single precision for `float`.
func newFloat(t *types.FloatType, f float64) *constant.Float {
	if t.Kind == types.FloatKindFloat {
		f = float64(float32(f))
	}

	return constant.NewFloat(t, f)
}

// floatOf returns the value of a floating point constant.  The second return
// value is false if the constant cannot be folded.
func floatOf(c *constant.Float) (float64, bool) {
	if c.NaN || c.X == nil {
		return 0, false
	}

	f, _ := c.X.Float64()
	if math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// foldCast converts a constant.  Conversions that cannot be computed here are
// left as constant expressions.
func foldCast(op castOp, c constant.Constant, to types.Type) constant.Constant {
	switch x := c.(type) {
	case *constant.Int:
		switch op {
		case opTrunc:
			return newInt(to.(*types.IntType), x.X.Int64())
		case opZExt:
			return newInt(to.(*types.IntType), int64(unsignedOf(x)))
		case opSExt:
			return newInt(to.(*types.IntType), signedOf(x))
		case opSIToFP:
			return newFloat(to.(*types.FloatType), float64(signedOf(x)))
		case opUIToFP:
			return newFloat(to.(*types.FloatType), float64(unsignedOf(x)))
		case opIntToPtr:
			if x.X.Sign() == 0 {
				return constant.NewNull(to.(*types.PointerType))
			}
		}
	case *constant.Float:
		if f, ok := floatOf(x); ok {
			switch op {
			case opFPTrunc, opFPExt:
				return newFloat(to.(*types.FloatType), f)
			case opFPToSI:
				it := to.(*types.IntType)
				if it.BitSize > 1 && math.Abs(f) < math.Ldexp(1, int(it.BitSize)-1) {
					return newInt(it, int64(f))
				}
			}
		}
	case *constant.Null:
		if op == opPtrToInt {
			return newInt(to.(*types.IntType), 0)
		}
	}

	switch op {
	case opTrunc:
		return constant.NewTrunc(c, to)
	case opZExt:
		return constant.NewZExt(c, to)
	case opSExt:
		return constant.NewSExt(c, to)
	case opFPTrunc:
		return constant.NewFPTrunc(c, to)
	case opFPExt:
		return constant.NewFPExt(c, to)
	case opFPToSI:
		return constant.NewFPToSI(c, to)
	case opSIToFP:
		return constant.NewSIToFP(c, to)
	case opUIToFP:
		return constant.NewUIToFP(c, to)
	case opPtrToInt:
		return constant.NewPtrToInt(c, to)
	case opIntToPtr:
		return constant.NewIntToPtr(c, to)
	default:
		return constant.NewBitCast(c, to)
	}
}

// foldBinary applies a binary operation to two constants.
func foldBinary(op binOp, x, y constant.Constant) constant.Constant {
	if ix, ok := x.(*constant.Int); ok {
		if iy, ok := y.(*constant.Int); ok {
			if c, ok := foldIntBinary(op, ix, iy); ok {
				return c
			}
		}
	}

	if fx, ok := x.(*constant.Float); ok {
		if fy, ok := y.(*constant.Float); ok {
			if c, ok := foldFloatBinary(op, fx, fy); ok {
				return c
			}
		}
	}

	switch op {
	case opAdd:
		return constant.NewAdd(x, y)
	case opSub:
		return constant.NewSub(x, y)
	case opMul:
		return constant.NewMul(x, y)
	case opSDiv:
		return constant.NewSDiv(x, y)
	case opSRem:
		return constant.NewSRem(x, y)
	case opFAdd:
		return constant.NewFAdd(x, y)
	case opFSub:
		return constant.NewFSub(x, y)
	case opFMul:
		return constant.NewFMul(x, y)
	case opFDiv:
		return constant.NewFDiv(x, y)
	case opFRem:
		return constant.NewFRem(x, y)
	case opAnd:
		return constant.NewAnd(x, y)
	case opOr:
		return constant.NewOr(x, y)
	case opXor:
		return constant.NewXor(x, y)
	case opShl:
		return constant.NewShl(x, y)
	default:
		return constant.NewAShr(x, y)
	}
}

// foldIntBinary computes an integer operation.  The second return value is
// false for operations whose result is undefined (division by zero,
// oversized shifts).
func foldIntBinary(op binOp, x, y *constant.Int) (constant.Constant, bool) {
	t := x.Typ
	a, b := signedOf(x), signedOf(y)

	switch op {
	case opAdd:
		return newInt(t, a+b), true
	case opSub:
		return newInt(t, a-b), true
	case opMul:
		return newInt(t, a*b), true
	case opSDiv:
		if b != 0 {
			return newInt(t, a/b), true
		}
	case opSRem:
		if b != 0 {
			return newInt(t, a%b), true
		}
	case opAnd:
		return newInt(t, a&b), true
	case opOr:
		return newInt(t, a|b), true
	case opXor:
		return newInt(t, a^b), true
	case opShl:
		if shift := unsignedOf(y); shift < t.BitSize {
			return newInt(t, a<<shift), true
		}
	case opAShr:
		if shift := unsignedOf(y); shift < t.BitSize {
			return newInt(t, a>>shift), true
		}
	}

	return nil, false
}

// foldFloatBinary computes a floating point operation.
func foldFloatBinary(op binOp, x, y *constant.Float) (constant.Constant, bool) {
	a, ok := floatOf(x)
	if !ok {
		return nil, false
	}

	b, ok := floatOf(y)
	if !ok {
		return nil, false
	}

	var r float64
	switch op {
	case opFAdd:
		r = a + b
	case opFSub:
		r = a - b
	case opFMul:
		r = a * b
	case opFDiv:
		if b == 0 {
			return nil, false
		}

		r = a / b
	case opFRem:
		if b == 0 {
			return nil, false
		}

		r = math.Mod(a, b)
	default:
		return nil, false
	}

	if math.IsInf(r, 0) || math.IsNaN(r) {
		return nil, false
	}

	return newFloat(x.Typ, r), true
}

// foldICmp compares two integer constants.
func foldICmp(pred enum.IPred, x, y *constant.Int) constant.Constant {
	sa, sb := signedOf(x), signedOf(y)
	ua, ub := unsignedOf(x), unsignedOf(y)

	var r bool
	switch pred {
	case enum.IPredEQ:
		r = ua == ub
	case enum.IPredNE:
		r = ua != ub
	case enum.IPredSLT:
		r = sa < sb
	case enum.IPredSLE:
		r = sa <= sb
	case enum.IPredSGT:
		r = sa > sb
	case enum.IPredSGE:
		r = sa >= sb
	case enum.IPredULT:
		r = ua < ub
	case enum.IPredULE:
		r = ua <= ub
	case enum.IPredUGT:
		r = ua > ub
	case enum.IPredUGE:
		r = ua >= ub
	}

	return constant.NewBool(r)
}

// compareFloats evaluates an ordered floating point comparison.
func compareFloats(pred enum.FPred, a, b float64) bool {
	switch pred {
	case enum.FPredOEQ:
		return a == b
	case enum.FPredONE:
		return a != b
	case enum.FPredOLT:
		return a < b
	case enum.FPredOLE:
		return a <= b
	case enum.FPredOGT:
		return a > b
	case enum.FPredOGE:
		return a >= b
	case enum.FPredORD:
		return true
	}

	return false
}
