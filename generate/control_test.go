package generate

import (
	"testing"

	"lowc/report"

	"github.com/google/go-cmp/cmp"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

// blockNames returns the names of the blocks of fn in layout order.
func blockNames(fn *ir.Func) []string {
	names := make([]string, len(fn.Blocks))
	for i, b := range fn.Blocks {
		names[i] = b.Name()
	}

	return names
}

func assertBlocks(t *testing.T, fn *ir.Func, want ...string) {
	t.Helper()

	if diff := cmp.Diff(want, blockNames(fn)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestIfWithoutElse(t *testing.T) {
	g := funcGen(t, types.Void, Param{"x", types.I32})
	fn := g.enclosingFunc

	be.Err(t, g.BeginIf(param(t, g, "x")), nil)
	be.True(t, g.block == fn.Blocks[1])
	g.EndIf()

	// the else block doubles as the merge block
	be.True(t, g.block == fn.Blocks[2])
	assertBlocks(t, fn, "entry", "bb1", "bb2")

	br, ok := fn.Blocks[1].Term.(*ir.TermBr)
	be.True(t, ok)
	be.True(t, br.Target == fn.Blocks[2])
}

func TestIfElseMerge(t *testing.T) {
	g := funcGen(t, types.Void, Param{"x", types.I32})
	fn := g.enclosingFunc

	be.Err(t, g.BeginIf(param(t, g, "x")), nil)
	g.BeginElse()
	g.EndIf()

	assertBlocks(t, fn, "entry", "bb1", "bb2", "bb3")
	be.True(t, g.block == fn.Blocks[3])
	be.True(t, fn.Blocks[1].Term.(*ir.TermBr).Target == fn.Blocks[3])
	be.True(t, fn.Blocks[2].Term.(*ir.TermBr).Target == fn.Blocks[3])
}

func TestDeadMergeEliminated(t *testing.T) {
	g := funcGen(t, types.I32, Param{"x", types.I32})
	fn := g.enclosingFunc

	be.Err(t, g.BeginIf(param(t, g, "x")), nil)
	be.Err(t, g.Return(g.IntConst(1)), nil)
	g.BeginElse()
	be.Err(t, g.Return(g.IntConst(2)), nil)
	g.EndIf()

	assertBlocks(t, fn, "entry", "bb1", "bb2")
	be.True(t, g.finished())

	// code after the conditional is unreachable and emits nothing
	sum, err := g.Binary(OpAdd, param(t, g, "x"), g.IntConst(1))
	be.Err(t, err, nil)
	be.True(t, sum.IsEmpty())

	g.FinishFunc()
	_, err = g.Finish()
	be.Err(t, err, nil)
}

func TestOneArmReturnKeepsMerge(t *testing.T) {
	g := funcGen(t, types.Void, Param{"x", types.I32})
	fn := g.enclosingFunc

	be.Err(t, g.BeginIf(param(t, g, "x")), nil)
	be.Err(t, g.ReturnVoid(), nil)
	g.BeginElse()
	g.EndIf()

	assertBlocks(t, fn, "entry", "bb1", "bb2", "bb3")
	be.True(t, !g.finished())
}

func TestIfInDeadCode(t *testing.T) {
	g := funcGen(t, types.Void, Param{"x", types.I32})
	fn := g.enclosingFunc

	be.Err(t, g.ReturnVoid(), nil)
	be.Err(t, g.BeginIf(param(t, g, "x")), nil)
	g.BeginElse()
	g.EndIf()

	assertBlocks(t, fn, "entry")
}

func TestLoopClosure(t *testing.T) {
	g := funcGen(t, types.Void, Param{"n", types.I32})
	fn := g.enclosingFunc

	g.BeginLoop("")
	be.Err(t, g.LoopCondition(param(t, g, "n")), nil)
	be.Err(t, g.BreakContinue("", true), nil)
	g.EndLoop()

	assertBlocks(t, fn, "entry", "bb1", "bb2", "bb3")

	// the body already ends in the break: no second terminator is added
	body := fn.Blocks[2]
	be.True(t, body.Term.(*ir.TermBr).Target == fn.Blocks[3])
	be.True(t, g.block == fn.Blocks[3])

	g.FinishFunc()
	_, err := g.Finish()
	be.Err(t, err, nil)
}

func TestLoopBackEdge(t *testing.T) {
	g := funcGen(t, types.Void, Param{"n", types.I32})
	fn := g.enclosingFunc

	g.BeginLoop("")
	cond := g.block
	be.Err(t, g.LoopCondition(param(t, g, "n")), nil)
	g.EndLoop()

	be.True(t, fn.Blocks[0].Term.(*ir.TermBr).Target == cond)
	be.True(t, fn.Blocks[2].Term.(*ir.TermBr).Target == cond)

	condBr := cond.Term.(*ir.TermCondBr)
	be.True(t, condBr.TargetTrue == fn.Blocks[2])
	be.True(t, condBr.TargetFalse == fn.Blocks[3])
}

func TestLabeledBreak(t *testing.T) {
	g := funcGen(t, types.Void)
	fn := g.enclosingFunc

	g.BeginLoop("outer")
	be.Err(t, g.LoopCondition(g.IntConst(1)), nil)
	g.BeginLoop("")
	be.Err(t, g.LoopCondition(g.IntConst(1)), nil)

	inner := g.block
	be.Err(t, g.BreakContinue("outer", true), nil)
	g.EndLoop()
	g.EndLoop()

	outerEnd := fn.Blocks[3]
	be.True(t, inner.Term.(*ir.TermBr).Target == outerEnd)
	be.True(t, g.block == outerEnd)
}

func TestContinueTargetsCondition(t *testing.T) {
	g := funcGen(t, types.Void)
	fn := g.enclosingFunc

	g.BeginLoop("l")
	be.Err(t, g.LoopCondition(g.IntConst(1)), nil)
	be.Err(t, g.BreakContinue("l", false), nil)
	g.EndLoop()

	be.True(t, fn.Blocks[2].Term.(*ir.TermBr).Target == fn.Blocks[1])
}

func TestBreakErrors(t *testing.T) {
	g := funcGen(t, types.Void)

	be.Equal(t, errKind(t, g.BreakContinue("", true)), report.BreakOutsideLoop)

	g.BeginLoop("a")
	be.Err(t, g.LoopCondition(g.IntConst(1)), nil)
	be.Equal(t, errKind(t, g.BreakContinue("b", false)), report.UndefinedLabel)
}

func TestConditionMustBeBoolable(t *testing.T) {
	st := &types.StructType{Fields: []types.Type{types.I32}}
	g := funcGen(t, types.Void, Param{"s", st})

	s, err := g.Identifier("s")
	be.Err(t, err, nil)

	be.Equal(t, errKind(t, g.BeginIf(s)), report.NotBoolable)
}
