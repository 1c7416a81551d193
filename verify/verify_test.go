package verify

import (
	"strings"
	"testing"

	"lowc/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

func assertFails(t *testing.T, mod *ir.Module, want string) {
	t.Helper()

	err := Module(mod)
	kind, ok := report.KindOf(err)
	be.True(t, ok)
	be.Equal(t, kind, report.VerifyFailed)

	if !strings.Contains(err.Error(), want) {
		t.Errorf("diagnostics %q do not mention %q", err, want)
	}
}

func TestWellFormedModule(t *testing.T) {
	mod := ir.NewModule()
	mod.NewGlobalDef("g", constant.NewInt(types.I32, 3))

	fn := mod.NewFunc("f", types.I32, ir.NewParam("x", types.I32))
	entry := fn.NewBlock("entry")
	exit := fn.NewBlock("exit")

	addr := entry.NewAlloca(types.I32)
	entry.NewStore(fn.Params[0], addr)
	entry.NewBr(exit)
	exit.NewRet(exit.NewLoad(types.I32, addr))

	mod.NewFunc("decl", types.Void)

	be.Err(t, Module(mod), nil)
}

func TestMissingTerminator(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("f", types.Void)
	fn.NewBlock("entry")

	assertFails(t, mod, "has no terminator")
}

func TestBranchToEntry(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("f", types.Void)
	entry := fn.NewBlock("entry")
	entry.NewBr(entry)

	assertFails(t, mod, "branches to the entry block")
}

func TestReturnTypes(t *testing.T) {
	mod := ir.NewModule()

	f := mod.NewFunc("f", types.I32)
	f.NewBlock("entry").NewRet(nil)

	g := mod.NewFunc("g", types.Void)
	g.NewBlock("entry").NewRet(constant.NewInt(types.I8, 1))

	h := mod.NewFunc("h", types.I64)
	h.NewBlock("entry").NewRet(constant.NewInt(types.I32, 1))

	err := Module(mod)
	be.True(t, err != nil)

	msg := err.Error()
	be.True(t, strings.Contains(msg, "in function @f: void return"))
	be.True(t, strings.Contains(msg, "in function @g: return of i8"))
	be.True(t, strings.Contains(msg, "in function @h: return of i32"))
}

func TestCallTypes(t *testing.T) {
	mod := ir.NewModule()
	callee := mod.NewFunc("callee", types.Void, ir.NewParam("a", types.I64))

	fn := mod.NewFunc("f", types.Void)
	entry := fn.NewBlock("entry")

	entry.NewCall(callee, constant.NewInt(types.I32, 0))
	entry.NewCall(callee)
	entry.NewRet(nil)

	err := Module(mod)
	be.True(t, err != nil)

	msg := err.Error()
	be.True(t, strings.Contains(msg, "argument 0 of call to @callee"))
	be.True(t, strings.Contains(msg, "with 0 arguments, expected 1"))
}

func TestConditionalBranchOnInteger(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("f", types.Void)
	entry := fn.NewBlock("entry")
	a, b := fn.NewBlock("a"), fn.NewBlock("b")

	entry.NewCondBr(constant.NewInt(types.I32, 1), a, b)
	a.NewRet(nil)
	b.NewRet(nil)

	assertFails(t, mod, "conditional branch on i32")
}

func TestGlobalInitializerType(t *testing.T) {
	mod := ir.NewModule()
	glob := mod.NewGlobalDef("g", constant.NewInt(types.I32, 3))
	glob.ContentType = types.I64

	assertFails(t, mod, "global @g of type i64")
}
