package generate

import (
	"fmt"
	"strings"
	"testing"

	"lowc/report"
	"lowc/typing"

	"github.com/google/go-cmp/cmp"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

// opcodes lists the instruction types of a block followed by its terminator.
func opcodes(b *ir.Block) []string {
	var ops []string
	for _, inst := range b.Insts {
		ops = append(ops, strings.TrimPrefix(fmt.Sprintf("%T", inst), "*ir.Inst"))
	}

	if b.Term != nil {
		ops = append(ops, strings.TrimPrefix(fmt.Sprintf("%T", b.Term), "*ir.Term"))
	}

	return ops
}

func TestAddEndToEnd(t *testing.T) {
	g := NewGenerator("add")

	params := []Param{{"a", types.I32}, {"b", types.I32}}
	be.Err(t, g.DeclareFunc("add", types.I32, params, false, true), nil)

	a, err := g.Identifier("a")
	be.Err(t, err, nil)
	b, err := g.Identifier("b")
	be.Err(t, err, nil)

	sum, err := g.Binary(OpAdd, a, b)
	be.Err(t, err, nil)
	be.Err(t, g.Return(sum), nil)
	g.FinishFunc()

	mod, err := g.Finish()
	be.Err(t, err, nil)

	be.Equal(t, len(mod.Funcs), 1)
	fn := mod.Funcs[0]
	be.Equal(t, fn.Name(), "add")
	be.Equal(t, len(fn.Blocks), 1)

	want := []string{"Alloca", "Store", "Alloca", "Store", "Load", "Load", "Add", "Ret"}
	if diff := cmp.Diff(want, opcodes(fn.Blocks[0])); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionDeclarations(t *testing.T) {
	g := NewGenerator("decls")
	params := []Param{{"x", types.I64}}

	be.Err(t, g.DeclareFunc("f", types.I64, params, false, false), nil)
	be.Err(t, g.DeclareFunc("f", types.I64, params, false, false), nil)

	err := g.DeclareFunc("f", types.I32, params, false, false)
	be.Equal(t, errKind(t, err), report.SignatureMismatch)

	err = g.DeclareFunc("f", types.I64, params, true, false)
	be.Equal(t, errKind(t, err), report.SignatureMismatch)

	be.Err(t, g.DeclareFunc("f", types.I64, params, false, true), nil)
	x, err := g.Identifier("x")
	be.Err(t, err, nil)
	be.Err(t, g.Return(x), nil)
	g.FinishFunc()

	err = g.DeclareFunc("f", types.I64, params, false, true)
	be.Equal(t, errKind(t, err), report.RedefinedFunction)

	be.Equal(t, len(g.Module().Funcs), 1)
}

func TestCallArity(t *testing.T) {
	g := NewGenerator("calls")

	be.Err(t, g.DeclareFunc("two", types.I32, []Param{{"a", types.I32}, {"b", types.I64}}, false, false), nil)
	be.Err(t, g.DeclareFunc("printf", types.I32, []Param{{"fmt", types.NewPointer(types.I8)}}, true, false), nil)
	be.Err(t, g.DeclareFunc("main", types.I32, nil, false, true), nil)

	two, err := g.Identifier("two")
	be.Err(t, err, nil)

	_, err = g.Call(two, []Value{g.IntConst(1)})
	be.Equal(t, errKind(t, err), report.ArityMismatch)

	_, err = g.Call(two, []Value{g.IntConst(1), g.IntConst(2), g.IntConst(3)})
	be.Equal(t, errKind(t, err), report.ArityMismatch)

	res, err := g.Call(two, []Value{g.IntConst(1), g.IntConst(2)})
	be.Err(t, err, nil)

	call := res.Val.(*ir.InstCall)
	be.True(t, call.Args[0].Type().Equal(types.I32))
	be.True(t, call.Args[1].Type().Equal(types.I64))

	printf, err := g.Identifier("printf")
	be.Err(t, err, nil)

	_, err = g.Call(printf, nil)
	be.Equal(t, errKind(t, err), report.ArityMismatch)

	res, err = g.Call(printf, []Value{g.StringConst("%f"), g.FloatConst(1.5), g.IntConst(200)})
	be.Err(t, err, nil)

	// variadic extras are passed unchanged
	call = res.Val.(*ir.InstCall)
	be.True(t, call.Args[1].Type().Equal(types.Double))
	be.True(t, call.Args[2].Type().Equal(types.I8))

	_, err = g.Call(g.IntConst(3), nil)
	be.Equal(t, errKind(t, err), report.NotCallable)
}

func TestReturns(t *testing.T) {
	g := funcGen(t, types.Void)
	be.Equal(t, errKind(t, g.Return(g.IntConst(1))), report.InvalidReturn)

	g = funcGen(t, types.I32)
	be.Equal(t, errKind(t, g.ReturnVoid()), report.InvalidReturn)

	be.Err(t, g.Return(g.IntConst(7)), nil)

	// a second return is unreachable and ignored
	be.Err(t, g.Return(g.IntConst(8)), nil)

	ret := g.block.Term.(*ir.TermRet)
	be.Equal(t, ret.X.(*constant.Int).X.Int64(), int64(7))
}

func TestMissingReturnFailsVerification(t *testing.T) {
	g := funcGen(t, types.I32)
	g.FinishFunc()

	_, err := g.Finish()
	be.Equal(t, errKind(t, err), report.VerifyFailed)
	be.True(t, strings.Contains(err.Error(), "no terminator"))
}

func TestGlobalVars(t *testing.T) {
	g := NewGenerator("globals")

	err := g.DeclareVars(types.I32, []VarInit{
		{Name: "a", Init: g.IntConst(5)},
		{Name: "b"},
	}, false)
	be.Err(t, err, nil)

	globs := g.Module().Globals
	be.Equal(t, len(globs), 2)
	be.Equal(t, globs[0].Init.(*constant.Int).X.Int64(), int64(5))
	_, ok := globs[1].Init.(*constant.ZeroInitializer)
	be.True(t, ok)

	err = g.DeclareVars(types.I32, []VarInit{{Name: "a"}}, false)
	be.Equal(t, errKind(t, err), report.DuplicateBinding)

	err = g.DeclareVars(types.Void, []VarInit{{Name: "v"}}, false)
	be.Equal(t, errKind(t, err), report.InvalidOperands)

	a, err := g.Identifier("a")
	be.Err(t, err, nil)

	err = g.DeclareVars(types.I32, []VarInit{{Name: "c", Init: a}}, false)
	be.Equal(t, errKind(t, err), report.NotConstant)
}

func TestLocalVars(t *testing.T) {
	g := funcGen(t, types.Void)

	be.Err(t, g.DeclareVars(types.I64, []VarInit{
		{Name: "x", Init: g.IntConst(3)},
		{Name: "y"},
	}, true), nil)

	want := []string{"Alloca", "Store", "Alloca"}
	if diff := cmp.Diff(want, opcodes(g.block)); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}

	// locals declared in dead code are still bound
	be.Err(t, g.ReturnVoid(), nil)
	be.Err(t, g.DeclareVars(types.I8, []VarInit{{Name: "z", Init: g.IntConst(4)}}, true), nil)

	_, err := g.Identifier("z")
	be.Err(t, err, nil)
}

func TestStructFieldMustBeSized(t *testing.T) {
	g := NewGenerator("structs")

	_, err := g.DeclareStruct("S", []typing.Field{{Name: "v", Type: types.Void}})
	be.Equal(t, errKind(t, err), report.InvalidOperands)

	_, err = g.DeclareStruct("S", []typing.Field{{Name: "a", Type: types.I32}})
	be.Err(t, err, nil)

	_, err = g.DeclareStruct("S", []typing.Field{{Name: "a", Type: types.I32}})
	be.Equal(t, errKind(t, err), report.AggregateRedefined)
}

func TestLocalInLoopBodyAllocatesInEntry(t *testing.T) {
	g := funcGen(t, types.Void)
	fn := g.enclosingFunc

	g.BeginLoop("")
	be.Err(t, g.LoopCondition(g.IntConst(1)), nil)
	body := g.block

	be.Err(t, g.DeclareVars(types.I64, []VarInit{{Name: "x", Init: g.IntConst(7)}}, true), nil)
	g.EndLoop()
	g.FinishFunc()

	entry := fn.Blocks[0]
	if diff := cmp.Diff([]string{"Alloca", "Br"}, opcodes(entry)); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"Store", "Br"}, opcodes(body)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	alloca := entry.Insts[0].(*ir.InstAlloca)
	store := body.Insts[0].(*ir.InstStore)
	be.True(t, store.Dst == alloca)
	be.Equal(t, store.Src.(*constant.Int).X.Int64(), int64(7))
	be.True(t, store.Src.Type().Equal(types.I64))
}

func TestVariadicArity(t *testing.T) {
	g := NewGenerator("variadic")

	params := []Param{{"a", types.I32}, {"b", types.I32}}
	be.Err(t, g.DeclareFunc("v", types.Void, params, true, false), nil)
	be.Err(t, g.DeclareFunc("main", types.Void, nil, false, true), nil)

	v, err := g.Identifier("v")
	be.Err(t, err, nil)

	cases := []struct {
		nargs int
		ok    bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{10, true},
	}

	for _, c := range cases {
		args := make([]Value, c.nargs)
		for i := range args {
			args[i] = g.IntConst(5)
		}

		res, err := g.Call(v, args)
		if !c.ok {
			be.Equal(t, errKind(t, err), report.ArityMismatch)
			continue
		}

		be.Err(t, err, nil)

		call := res.Val.(*ir.InstCall)
		be.Equal(t, len(call.Args), c.nargs)
		be.True(t, call.Args[0].Type().Equal(types.I32))
		be.True(t, call.Args[1].Type().Equal(types.I32))
	}
}
