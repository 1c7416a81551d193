package generate

import (
	"lowc/report"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Truthy converts a value to a boolean (`i1`) truth value.  Integers are true
// when non-zero, pointers when non-null and floating point values when they
// are not NaN.
func (g *Generator) Truthy(v Value) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	return rvalue(g.truthy(g.materialize(v))), nil
}

// Cast converts v to the type t.  Narrowing conversions are only performed if
// explicit is true.  If v has storage, the result refers to the same storage
// reinterpreted as t.
func (g *Generator) Cast(v Value, t types.Type, explicit bool) (result Value, err error) {
	defer report.Catch(&err)

	if g.finished() {
		return Value{}, nil
	}

	if v.Type().Equal(t) {
		return v, nil
	}

	result = rvalue(g.cast(g.materialize(v), t, explicit))
	if v.Addr != nil {
		result = lvalue(g.convert(opBitCast, v.Addr, types.NewPointer(t)), result.Val)
	}

	return result, nil
}

// -----------------------------------------------------------------------------

// truthy converts a raw value to an `i1`.
func (g *Generator) truthy(v value.Value) value.Value {
	switch t := v.Type().(type) {
	case *types.IntType:
		if t.BitSize == 1 {
			return v
		}

		return g.icmp(enum.IPredNE, v, constant.NewInt(t, 0))
	case *types.FloatType:
		return g.fcmp(enum.FPredORD, v, v)
	case *types.PointerType:
		asInt := g.convert(opPtrToInt, v, types.I64)
		return g.icmp(enum.IPredNE, asInt, constant.NewInt(types.I64, 0))
	}

	throw(report.NotBoolable, "cannot test the truthiness of a value of type %s", v.Type())
	return nil
}

// cast converts a raw value to the type t following the conversion rules of
// the language.
func (g *Generator) cast(v value.Value, t types.Type, explicit bool) value.Value {
	from := v.Type()
	if from.Equal(t) {
		return v
	}

	if !isAggregate(from) && !isAggregate(t) {
		switch dst := t.(type) {
		case *types.IntType:
			if dst.BitSize == 1 {
				return g.truthy(v)
			}

			switch src := from.(type) {
			case *types.IntType:
				if src.BitSize < dst.BitSize {
					if src.BitSize == 1 {
						return g.convert(opZExt, v, t)
					}

					return g.convert(opSExt, v, t)
				} else if explicit {
					return g.convert(opTrunc, v, t)
				}
			case *types.FloatType:
				if explicit || (src.Kind == types.FloatKindFloat && dst.BitSize > 32) {
					return g.convert(opFPToSI, v, t)
				}
			case *types.PointerType:
				if explicit {
					return g.convert(opPtrToInt, v, t)
				}
			}
		case *types.FloatType:
			switch src := from.(type) {
			case *types.IntType:
				// int64 to float must be explicit
				if explicit || dst.Kind == types.FloatKindDouble || src.BitSize <= 32 {
					if src.BitSize == 1 {
						return g.convert(opUIToFP, v, t)
					}

					return g.convert(opSIToFP, v, t)
				}
			case *types.FloatType:
				if dst.Kind == types.FloatKindDouble {
					return g.convert(opFPExt, v, t)
				}

				return g.convert(opFPTrunc, v, t)
			}
		case *types.PointerType:
			switch from.(type) {
			case *types.IntType:
				return g.convert(opIntToPtr, v, t)
			case *types.PointerType:
				if explicit {
					return g.convert(opBitCast, v, t)
				}
			}
		}
	}

	if explicit {
		throw(report.InvalidCast, "cannot cast %s to %s", from, t)
	}

	throw(report.InvalidCast, "cannot implicitly cast %s to %s", from, t)
	return nil
}

// rank returns the position of a numeric type on the promotion ladder.  Types
// that are not numeric have rank 0.
func rank(t types.Type) int {
	switch v := t.(type) {
	case *types.FloatType:
		switch v.Kind {
		case types.FloatKindDouble:
			return 7
		case types.FloatKindFloat:
			return 5
		}
	case *types.IntType:
		switch v.BitSize {
		case 64:
			return 6
		case 32:
			return 4
		case 16:
			return 3
		case 8:
			return 2
		case 1:
			return 1
		}
	}

	return 0
}

// promote converts the operands of a binary operator to a common type: the
// operand lower on the ladder double > int64 > float > int32 > int16 > int8 >
// bool is implicitly cast to the type of the other.
func (g *Generator) promote(lhs, rhs value.Value) (value.Value, value.Value) {
	lt, rt := lhs.Type(), rhs.Type()
	if lt.Equal(rt) {
		return lhs, rhs
	}

	lr, rr := rank(lt), rank(rt)
	if lr == 0 || rr == 0 {
		throw(report.InvalidCast, "cannot unify operand types %s and %s", lt, rt)
	}

	if lr > rr {
		rhs = g.cast(rhs, lt, false)
	} else {
		lhs = g.cast(lhs, rt, false)
	}

	return lhs, rhs
}

// isAggregate returns whether t is a struct or array type.
func isAggregate(t types.Type) bool {
	switch t.(type) {
	case *types.StructType, *types.ArrayType:
		return true
	}

	return false
}
