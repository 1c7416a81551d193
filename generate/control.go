package generate

import (
	"lowc/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// frame is an entry of the control stack: either a conditional or a loop.
type frame interface {
	frameKind() string
}

// condFrame stores the state of an `if` statement being generated.  A frame
// with no blocks is dead: it was entered from unreachable code.
type condFrame struct {
	thenBlock, elseBlock *ir.Block

	// mergeBlock is the block both arms jump to.  It is only created when
	// the else arm begins: without an else arm, the else block is the merge
	// block.
	mergeBlock *ir.Block

	// elideMerge is set when the then arm did not fall through to the merge
	// block.
	elideMerge bool
}

func (*condFrame) frameKind() string { return "conditional" }

// loopFrame stores the state of a `while` loop being generated.
type loopFrame struct {
	label string

	condBlock, bodyBlock, endBlock *ir.Block
}

func (*loopFrame) frameKind() string { return "loop" }

// pushFrame pushes a new frame onto the control stack.
func (g *Generator) pushFrame(f frame) {
	g.control = append(g.control, f)
}

// topCond returns the innermost frame which must be a conditional.
func (g *Generator) topCond() *condFrame {
	if len(g.control) > 0 {
		if cf, ok := g.control[len(g.control)-1].(*condFrame); ok {
			return cf
		}
	}

	report.ReportICE("expected a conditional on top of the control stack")
	return nil
}

// topLoop returns the innermost frame which must be a loop.
func (g *Generator) topLoop() *loopFrame {
	if len(g.control) > 0 {
		if lf, ok := g.control[len(g.control)-1].(*loopFrame); ok {
			return lf
		}
	}

	report.ReportICE("expected a loop on top of the control stack")
	return nil
}

// popFrame removes the innermost frame.
func (g *Generator) popFrame() {
	g.control = g.control[:len(g.control)-1]
}

// condition converts a branch condition to an `i1`.
func (g *Generator) condition(cond Value) value.Value {
	c := g.materialize(cond)
	if !c.Type().Equal(types.I1) {
		c = g.truthy(c)
	}

	return c
}

// requireFunc reports a statement outside of a function body.  The front end
// never produces one.
func (g *Generator) requireFunc(stmt string) {
	if g.block == nil {
		report.ReportICE("`%s` statement generated outside of a function", stmt)
	}
}

// -----------------------------------------------------------------------------

// BeginIf begins an `if` statement and positions the generator in its then
// arm.
func (g *Generator) BeginIf(cond Value) (err error) {
	defer report.Catch(&err)

	g.requireFunc("if")
	if g.finished() {
		g.pushFrame(&condFrame{})
		return nil
	}

	c := g.condition(cond)

	cf := &condFrame{thenBlock: g.appendBlock(), elseBlock: g.appendBlock()}
	g.block.NewCondBr(c, cf.thenBlock, cf.elseBlock)
	g.block = cf.thenBlock

	g.pushFrame(cf)
	return nil
}

// BeginElse ends the then arm of the innermost `if` and positions the
// generator in its else arm.
func (g *Generator) BeginElse() {
	cf := g.topCond()
	if cf.elseBlock == nil {
		return
	}

	cf.mergeBlock = g.appendBlock()
	if g.finished() {
		cf.elideMerge = true
	} else {
		g.block.NewBr(cf.mergeBlock)
	}

	g.block = cf.elseBlock
}

// EndIf ends the innermost `if` statement.  If neither arm falls through, the
// merge block is removed and the generator stays in unreachable code.
func (g *Generator) EndIf() {
	cf := g.topCond()
	g.popFrame()

	if cf.elseBlock == nil {
		return
	}

	merge := cf.mergeBlock
	if merge == nil {
		merge = cf.elseBlock
	}

	if g.finished() && cf.elideMerge {
		g.removeBlock(merge)
		return
	}

	if !g.finished() {
		g.block.NewBr(merge)
	}

	g.block = merge
}

// -----------------------------------------------------------------------------

// BeginLoop begins a `while` loop with an optional label and positions the
// generator in its condition block.
func (g *Generator) BeginLoop(label string) {
	g.requireFunc("while")

	lf := &loopFrame{label: label}
	g.pushFrame(lf)

	if g.finished() {
		return
	}

	lf.condBlock = g.appendBlock()
	lf.bodyBlock = g.appendBlock()
	lf.endBlock = g.appendBlock()

	g.block.NewBr(lf.condBlock)
	g.block = lf.condBlock
}

// LoopCondition branches on the condition of the innermost loop and
// positions the generator in its body.
func (g *Generator) LoopCondition(cond Value) (err error) {
	defer report.Catch(&err)

	lf := g.topLoop()
	if g.finished() {
		return nil
	}

	g.block.NewCondBr(g.condition(cond), lf.bodyBlock, lf.endBlock)
	g.block = lf.bodyBlock
	return nil
}

// EndLoop closes the body of the innermost loop and positions the generator
// after it.
func (g *Generator) EndLoop() {
	lf := g.topLoop()
	g.popFrame()

	if !g.finished() {
		g.block.NewBr(lf.condBlock)
	}

	if lf.endBlock != nil {
		g.block = lf.endBlock
	}
}

// BreakContinue jumps out of (isBreak) or back to the condition of the
// innermost loop or, if label is non-empty, the innermost loop with that
// label.
func (g *Generator) BreakContinue(label string, isBreak bool) (err error) {
	defer report.Catch(&err)

	if g.finished() {
		return nil
	}

	for i := len(g.control) - 1; i >= 0; i-- {
		if lf, ok := g.control[i].(*loopFrame); ok && (label == "" || lf.label == label) {
			if isBreak {
				g.block.NewBr(lf.endBlock)
			} else {
				g.block.NewBr(lf.condBlock)
			}

			return nil
		}
	}

	keyword := "continue"
	if isBreak {
		keyword = "break"
	}

	if label == "" {
		throw(report.BreakOutsideLoop, "`%s` used outside of a loop", keyword)
	}

	throw(report.UndefinedLabel, "`%s` refers to undefined loop label `%s`", keyword, label)
	return nil
}
