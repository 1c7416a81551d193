// Package verify checks the structural well-formedness of generated LLVM
// modules before they are handed to the backend.
package verify

import (
	"fmt"
	"strings"

	"lowc/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Module verifies mod.  Every problem found is listed in the message of the
// returned error which has the kind report.VerifyFailed.
func Module(mod *ir.Module) error {
	v := &verifier{}

	for _, glob := range mod.Globals {
		v.checkGlobal(glob)
	}

	for _, fn := range mod.Funcs {
		v.checkFunc(fn)
	}

	if len(v.diagnostics) > 0 {
		return report.Raise(report.VerifyFailed, "module failed verification:\n  %s", strings.Join(v.diagnostics, "\n  "))
	}

	return nil
}

// verifier accumulates the diagnostics of a single module.
type verifier struct {
	diagnostics []string

	// fn is the function being checked.
	fn *ir.Func
}

func (v *verifier) errorf(msg string, args ...interface{}) {
	prefix := ""
	if v.fn != nil {
		prefix = fmt.Sprintf("in function %s: ", v.fn.Ident())
	}

	v.diagnostics = append(v.diagnostics, prefix+fmt.Sprintf(msg, args...))
}

func (v *verifier) checkGlobal(glob *ir.Global) {
	if glob.Init != nil && !glob.Init.Type().Equal(glob.ContentType) {
		v.errorf("global %s of type %s initialized with %s", glob.Ident(), glob.ContentType, glob.Init.Type())
	}
}

func (v *verifier) checkFunc(fn *ir.Func) {
	// declarations have nothing to check
	if len(fn.Blocks) == 0 {
		return
	}

	v.fn = fn
	defer func() { v.fn = nil }()

	owned := make(map[*ir.Block]bool, len(fn.Blocks))
	for _, block := range fn.Blocks {
		owned[block] = true
	}

	entry := fn.Blocks[0]
	for _, block := range fn.Blocks {
		for _, inst := range block.Insts {
			v.checkInst(inst)
		}

		if block.Term == nil {
			v.errorf("block %s has no terminator", block.Ident())
			continue
		}

		for _, succ := range block.Term.Succs() {
			if !owned[succ] {
				v.errorf("block %s branches to %s which is not part of the function", block.Ident(), succ.Ident())
			} else if succ == entry {
				v.errorf("block %s branches to the entry block", block.Ident())
			}
		}

		v.checkTerm(block.Term)
	}
}

func (v *verifier) checkInst(inst ir.Instruction) {
	switch x := inst.(type) {
	case *ir.InstLoad:
		if elem, ok := pointeeOf(x.Src); !ok || !elem.Equal(x.ElemType) {
			v.errorf("load of %s from %s", x.ElemType, x.Src.Type())
		}
	case *ir.InstStore:
		if elem, ok := pointeeOf(x.Dst); !ok || !elem.Equal(x.Src.Type()) {
			v.errorf("store of %s to %s", x.Src.Type(), x.Dst.Type())
		}
	case *ir.InstCall:
		v.checkCall(x)
	}
}

func (v *verifier) checkCall(call *ir.InstCall) {
	elem, ok := pointeeOf(call.Callee)
	sig, isFunc := elem.(*types.FuncType)
	if !ok || !isFunc {
		v.errorf("call of non-function %s", call.Callee.Ident())
		return
	}

	if len(call.Args) < len(sig.Params) || (!sig.Variadic && len(call.Args) != len(sig.Params)) {
		v.errorf("call of %s with %d arguments, expected %d", call.Callee.Ident(), len(call.Args), len(sig.Params))
		return
	}

	for i, param := range sig.Params {
		if !call.Args[i].Type().Equal(param) {
			v.errorf("argument %d of call to %s has type %s, expected %s", i, call.Callee.Ident(), call.Args[i].Type(), param)
		}
	}
}

func (v *verifier) checkTerm(term ir.Terminator) {
	switch x := term.(type) {
	case *ir.TermRet:
		ret := v.fn.Sig.RetType
		if x.X == nil {
			if !ret.Equal(types.Void) {
				v.errorf("void return from function returning %s", ret)
			}
		} else if !x.X.Type().Equal(ret) {
			v.errorf("return of %s from function returning %s", x.X.Type(), ret)
		}
	case *ir.TermCondBr:
		if !x.Cond.Type().Equal(types.I1) {
			v.errorf("conditional branch on %s", x.Cond.Type())
		}
	}
}

// pointeeOf returns the element type of a pointer-typed value.
func pointeeOf(val value.Value) (types.Type, bool) {
	if pt, ok := val.Type().(*types.PointerType); ok {
		return pt.ElemType, true
	}

	return nil, false
}
