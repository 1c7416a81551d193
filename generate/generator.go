package generate

import (
	"fmt"

	"lowc/report"
	"lowc/typing"
	"lowc/verify"

	"github.com/llir/llvm/ir"
)

// Generator converts the stream of constructs produced by the front end into
// an LLVM module.  Each exported method corresponds to one source construct
// and emits its instructions immediately: there is no intermediate tree.
// Methods must be called in source order.
//
// Methods that can fail return an error of type *report.CompileError.  Once a
// method has failed, the generator should be discarded.
type Generator struct {
	// mod is the LLVM module being generated.
	mod *ir.Module

	// types is the registry of named types for the module.
	types *typing.Registry

	// scopes is the chain of lexical scopes.  The outermost scope holds the
	// globals and functions.
	scopes ScopeChain

	// control is the stack of conditionals and loops being generated.
	control []frame

	// enclosingFunc is the function whose body is being generated.
	enclosingFunc *ir.Func

	// block is the block instructions are currently appended to.  It is nil
	// outside of function bodies: all values generated there must be
	// constant.
	block *ir.Block

	// blockCounter is used to name the blocks of the current function.
	blockCounter int

	// stringCounter is used to name anonymous string globals.
	stringCounter int
}

// NewGenerator creates a new generator for a module called name.  The global
// scope is pushed and all the primitive types are defined.
func NewGenerator(name string) *Generator {
	mod := ir.NewModule()
	mod.SourceFilename = name

	g := &Generator{
		mod:   mod,
		types: typing.NewRegistry(mod),
	}

	g.scopes.PushScope()
	return g
}

// Module returns the module being generated.
func (g *Generator) Module() *ir.Module {
	return g.mod
}

// SetTargetTriple sets the target triple of the module.
func (g *Generator) SetTargetTriple(triple string) {
	g.mod.TargetTriple = triple
}

// Finish closes the global scope and verifies the completed module.
func (g *Generator) Finish() (*ir.Module, error) {
	if g.enclosingFunc != nil {
		report.ReportICE("module finished inside of function `%s`", g.enclosingFunc.Name())
	}

	if len(g.control) > 0 {
		report.ReportICE("module finished with %d open control frames", len(g.control))
	}

	g.scopes.PopScope()

	if err := verify.Module(g.mod); err != nil {
		return nil, err
	}

	return g.mod, nil
}

// -----------------------------------------------------------------------------

// PushScope pushes a new lexical scope.
func (g *Generator) PushScope() {
	g.scopes.PushScope()
}

// PopScope pops the innermost lexical scope.
func (g *Generator) PopScope() {
	g.scopes.PopScope()
}

// Unreachable returns whether code generated at the current position can
// never execute.  Such code is suppressed.
func (g *Generator) Unreachable() bool {
	return g.finished()
}

// finished returns whether the current block has already been terminated.
// Every operation is a no-op in a finished block since the code is
// unreachable.
func (g *Generator) finished() bool {
	return g.block != nil && g.block.Term != nil
}

// appendBlock adds a new basic block to the current function.  It does *not*
// set the current block to this new block.
func (g *Generator) appendBlock() *ir.Block {
	g.blockCounter++
	return g.enclosingFunc.NewBlock(fmt.Sprintf("bb%d", g.blockCounter))
}

// removeBlock deletes a block from the current function.
func (g *Generator) removeBlock(block *ir.Block) {
	blocks := g.enclosingFunc.Blocks
	for i, b := range blocks {
		if b == block {
			g.enclosingFunc.Blocks = append(blocks[:i], blocks[i+1:]...)
			return
		}
	}
}

// check throws err if it is non-nil.  It is used inside lowering operations
// whose errors are caught at the exported boundary.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// throw raises a new compile error.
func throw(kind report.ErrorKind, msg string, args ...interface{}) {
	panic(report.Raise(kind, msg, args...))
}
