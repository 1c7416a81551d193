package generate

import (
	"testing"

	"lowc/report"
	"lowc/typing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

func TestBinaryFoldsConstants(t *testing.T) {
	g := NewGenerator("fold")

	sum, err := g.Binary(OpAdd, g.IntConst(2), g.IntConst(3))
	be.Err(t, err, nil)

	c, ok := sum.Val.(*constant.Int)
	be.True(t, ok)
	be.True(t, c.Typ.Equal(types.I8))
	be.Equal(t, c.X.Int64(), int64(5))

	// the narrower operand is promoted before folding
	mixed, err := g.Binary(OpMul, g.IntConst(300), g.FloatConst(0.5))
	be.Err(t, err, nil)

	f, ok := mixed.Val.(*constant.Float)
	be.True(t, ok)
	be.True(t, f.Typ.Equal(types.Double))

	cmp, err := g.Binary(OpLess, g.IntConst(-5), g.IntConst(3))
	be.Err(t, err, nil)
	be.Equal(t, cmp.Val.(*constant.Int).X.Int64(), int64(1))
}

func TestBinaryRuntime(t *testing.T) {
	g := funcGen(t, types.Void, Param{"a", types.I32}, Param{"b", types.I64}, Param{"d", types.Double})

	sum, err := g.Binary(OpAdd, param(t, g, "a"), param(t, g, "b"))
	be.Err(t, err, nil)

	add, ok := sum.Val.(*ir.InstAdd)
	be.True(t, ok)
	be.True(t, add.Type().Equal(types.I64))

	quot, err := g.Binary(OpDiv, param(t, g, "d"), param(t, g, "a"))
	be.Err(t, err, nil)
	_, ok = quot.Val.(*ir.InstFDiv)
	be.True(t, ok)

	_, err = g.Binary(OpShl, param(t, g, "d"), param(t, g, "a"))
	be.Equal(t, errKind(t, err), report.BitwiseOnInteger)

	both, err := g.Binary(OpBoolAnd, param(t, g, "a"), param(t, g, "d"))
	be.Err(t, err, nil)
	be.True(t, both.Type().Equal(types.I1))
}

func TestPointerComparisonIsUnsigned(t *testing.T) {
	ptr := types.NewPointer(types.I8)
	g := funcGen(t, types.Void, Param{"p", ptr}, Param{"q", ptr})

	lt, err := g.Binary(OpLess, param(t, g, "p"), param(t, g, "q"))
	be.Err(t, err, nil)

	icmp, ok := lt.Val.(*ir.InstICmp)
	be.True(t, ok)
	be.Equal(t, icmp.Pred, enum.IPredULT)

	_, err = g.Binary(OpAdd, param(t, g, "p"), param(t, g, "q"))
	be.Equal(t, errKind(t, err), report.InvalidOperands)
}

func TestUnary(t *testing.T) {
	g := NewGenerator("unary")

	neg, err := g.Unary(OpNeg, g.IntConst(100000))
	be.Err(t, err, nil)
	be.Equal(t, neg.Val.(*constant.Int).X.Int64(), int64(-100000))

	not, err := g.Unary(OpBoolNot, g.IntConst(7))
	be.Err(t, err, nil)
	be.Equal(t, not.Val.(*constant.Int).X.Sign(), 0)

	_, err = g.Unary(OpBitNot, g.FloatConst(1))
	be.Equal(t, errKind(t, err), report.BitwiseOnInteger)
}

func TestAssign(t *testing.T) {
	g := funcGen(t, types.Void, Param{"x", types.I64})

	res, err := g.Assign(param(t, g, "x"), g.IntConst(9))
	be.Err(t, err, nil)
	be.True(t, res.Type().Equal(types.I8))

	insts := g.block.Insts
	store, ok := insts[len(insts)-1].(*ir.InstStore)
	be.True(t, ok)
	be.True(t, store.Src.Type().Equal(types.I64))

	_, err = g.Assign(g.IntConst(2), g.IntConst(3))
	be.Equal(t, errKind(t, err), report.NotAssignable)
}

func TestRefDeref(t *testing.T) {
	g := funcGen(t, types.I32, Param{"x", types.I32})

	addr, err := g.Ref(param(t, g, "x"))
	be.Err(t, err, nil)
	be.True(t, addr.Type().Equal(types.NewPointer(types.I32)))

	back, err := g.Deref(addr)
	be.Err(t, err, nil)
	be.True(t, back.Addr == addr.Val)
	_, ok := back.Val.(*ir.InstLoad)
	be.True(t, ok)

	_, err = g.Ref(g.IntConst(4))
	be.Equal(t, errKind(t, err), report.NotAddressable)

	_, err = g.Deref(g.IntConst(4))
	be.Equal(t, errKind(t, err), report.NotDereferenceable)
}

func TestIndex(t *testing.T) {
	arr := types.NewArray(4, types.I32)
	g := funcGen(t, types.Void, Param{"p", types.NewPointer(types.I16)})
	be.Err(t, g.DeclareVars(arr, []VarInit{{Name: "a"}}, true), nil)

	a, err := g.Identifier("a")
	be.Err(t, err, nil)
	be.True(t, a.Deferred())

	elem, err := g.Index(a, g.IntConst(2))
	be.Err(t, err, nil)
	be.True(t, elem.Type().Equal(types.I32))
	_, ok := elem.Addr.(*ir.InstGetElementPtr)
	be.True(t, ok)

	pelem, err := g.Index(param(t, g, "p"), g.IntConst(3))
	be.Err(t, err, nil)
	be.True(t, pelem.Type().Equal(types.I16))
	_, ok = pelem.Addr.(*ir.InstIntToPtr)
	be.True(t, ok)

	_, err = g.Index(a, g.FloatConst(1))
	be.Equal(t, errKind(t, err), report.InvalidIndex)

	_, err = g.Index(g.IntConst(7), g.IntConst(1))
	be.Equal(t, errKind(t, err), report.InvalidIndex)
}

func TestDotFieldIndex(t *testing.T) {
	g := NewGenerator("dot")
	st, err := g.DeclareStruct("P", []typing.Field{
		{Name: "x", Type: types.I8},
		{Name: "y", Type: types.Double},
		{Name: "z", Type: types.I32},
	})
	be.Err(t, err, nil)

	be.Err(t, g.DeclareFunc("f", types.Void, []Param{{"p", types.NewPointer(st)}}, false, true), nil)

	p, err := g.Deref(param(t, g, "p"))
	be.Err(t, err, nil)
	be.True(t, p.Deferred())

	z, err := g.Dot(p, "z")
	be.Err(t, err, nil)
	be.True(t, z.Type().Equal(types.I32))

	gep := z.Addr.(*ir.InstGetElementPtr)
	be.Equal(t, len(gep.Indices), 2)
	be.Equal(t, gep.Indices[1].(*constant.Int).X.Int64(), int64(2))

	_, err = g.Dot(p, "w")
	be.Equal(t, errKind(t, err), report.NoSuchField)

	_, err = g.Dot(z, "x")
	be.Equal(t, errKind(t, err), report.NotAStruct)
}

func TestDotOpaqueStruct(t *testing.T) {
	g := NewGenerator("dot")
	st, err := g.DeclareStruct("O", nil)
	be.Err(t, err, nil)

	be.Err(t, g.DeclareFunc("f", types.Void, []Param{{"p", types.NewPointer(st)}}, false, true), nil)

	_, err = g.Deref(param(t, g, "p"))
	be.Equal(t, errKind(t, err), report.NotDereferenceable)
}

func TestSizeOf(t *testing.T) {
	g := NewGenerator("sizeof")

	size, err := g.SizeOf(types.I32)
	be.Err(t, err, nil)
	be.True(t, size.Type().Equal(types.I64))
	_, ok := size.Val.(*constant.ExprPtrToInt)
	be.True(t, ok)

	_, err = g.SizeOf(types.Void)
	be.Equal(t, errKind(t, err), report.InvalidOperands)
}

func TestStringConst(t *testing.T) {
	g := NewGenerator("strings")

	s := g.StringConst("hi")
	g.StringConst("there")

	be.True(t, s.Type().Equal(types.NewPointer(types.I8)))
	be.Equal(t, len(g.Module().Globals), 2)
	be.Equal(t, g.Module().Globals[0].Name(), ".str.0")
	be.Equal(t, g.Module().Globals[1].Name(), ".str.1")
	be.True(t, g.Module().Globals[0].Immutable)
	be.Equal(t, g.Module().Globals[0].Linkage, enum.LinkagePrivate)
}

func TestGlobalContextRequiresConstants(t *testing.T) {
	g := NewGenerator("globals")
	be.Err(t, g.DeclareVars(types.I32, []VarInit{{Name: "x"}}, false), nil)

	x, err := g.Identifier("x")
	be.Err(t, err, nil)
	be.True(t, x.Deferred())

	_, err = g.Binary(OpAdd, x, g.IntConst(2))
	be.Equal(t, errKind(t, err), report.NotConstant)

	// taking the address of a global is constant
	addr, err := g.Ref(x)
	be.Err(t, err, nil)
	_, ok := addr.Val.(*ir.Global)
	be.True(t, ok)
}
