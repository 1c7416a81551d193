package generate

import (
	"lowc/report"
	"lowc/typing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// DefineType binds name to the type t.
func (g *Generator) DefineType(name string, t types.Type) error {
	return g.types.Define(name, t)
}

// DeclareStruct declares the struct name.  If fields is nil, the struct is
// opaque until a later declaration supplies its fields.
func (g *Generator) DeclareStruct(name string, fields []typing.Field) (*types.StructType, error) {
	for _, field := range fields {
		if !sized(field.Type) {
			return nil, report.Raise(report.InvalidOperands, "field `%s` of struct %s cannot have type %s", field.Name, name, field.Type)
		}
	}

	return g.types.DeclareStruct(name, fields)
}

// ResolveType looks up the named type name.
func (g *Generator) ResolveType(name string) (types.Type, error) {
	return g.types.Resolve(name)
}

// -----------------------------------------------------------------------------

// VarInit is a single variable of a declaration list and its optional
// initializer.  An empty Init means the variable is not initialized.
type VarInit struct {
	Name string
	Init Value
}

// DeclareVars declares every variable of vars with the type t.  Globals are
// initialized statically and require constant initializers.  Locals are
// allocated in the entry block of the enclosing function and initialized at
// the current position.
func (g *Generator) DeclareVars(t types.Type, vars []VarInit, local bool) (err error) {
	defer report.Catch(&err)

	if !sized(t) {
		throw(report.InvalidOperands, "cannot declare a variable of type %s", t)
	}

	if local {
		g.declareLocals(t, vars)
	} else {
		g.declareGlobals(t, vars)
	}

	return nil
}

// declareGlobals declares a list of global variables.
func (g *Generator) declareGlobals(t types.Type, vars []VarInit) {
	for _, v := range vars {
		var init constant.Constant
		if v.Init.IsEmpty() {
			init = constant.NewZeroInitializer(t)
		} else {
			c, ok := g.cast(g.materialize(v.Init), t, false).(constant.Constant)
			if !ok {
				throw(report.NotConstant, "initializer of global `%s` is not constant", v.Name)
			}

			init = c
		}

		glob := g.mod.NewGlobalDef(v.Name, init)
		check(g.scopes.Bind(v.Name, lvalue(glob, nil)))
	}
}

// declareLocals declares a list of local variables.  Storage is allocated
// even in unreachable code so the names stay bound.
func (g *Generator) declareLocals(t types.Type, vars []VarInit) {
	g.requireFunc("let")

	// appended allocations always precede the terminator of the entry block
	entry := g.enclosingFunc.Blocks[0]

	for _, v := range vars {
		addr := entry.NewAlloca(t)
		check(g.scopes.Bind(v.Name, lvalue(addr, nil)))

		if !v.Init.IsEmpty() && !g.finished() {
			g.block.NewStore(g.cast(g.materialize(v.Init), t, false), addr)
		}
	}
}

// -----------------------------------------------------------------------------

// Param is a named function parameter.
type Param struct {
	Name string
	Type types.Type
}

// DeclareFunc declares the function name.  A function may be declared any
// number of times with the same signature but only defined once.  If define
// is true, the generator is positioned in the entry block of the function's
// body with the parameters bound to mutable storage.
func (g *Generator) DeclareFunc(name string, ret types.Type, params []Param, variadic, define bool) (err error) {
	defer report.Catch(&err)

	if g.enclosingFunc != nil {
		report.ReportICE("function `%s` declared inside of function `%s`", name, g.enclosingFunc.Name())
	}

	if !sized(ret) && !ret.Equal(types.Void) {
		throw(report.InvalidReturn, "function `%s` cannot return %s", name, ret)
	}

	llParams := make([]*ir.Param, len(params))
	paramTypes := make([]types.Type, len(params))
	for i, p := range params {
		if !sized(p.Type) {
			throw(report.InvalidOperands, "parameter `%s` of function `%s` cannot have type %s", p.Name, name, p.Type)
		}

		llParams[i] = ir.NewParam(p.Name, p.Type)
		paramTypes[i] = p.Type
	}

	sig := types.NewFunc(ret, paramTypes...)
	sig.Variadic = variadic

	fn := g.lookupFunc(name)
	if fn != nil {
		if !fn.Sig.Equal(sig) {
			throw(report.SignatureMismatch, "function `%s` redeclared with signature %s, previously %s", name, sig, fn.Sig)
		}

		if define && len(fn.Blocks) > 0 {
			throw(report.RedefinedFunction, "function `%s` already has a body", name)
		}
	} else {
		fn = g.mod.NewFunc(name, ret, llParams...)
		fn.Sig.Variadic = variadic
		fn.CallingConv = enum.CallingConvC

		check(g.scopes.Bind(name, rvalue(fn)))
	}

	if define {
		g.beginBody(fn, params)
	}

	return nil
}

// lookupFunc finds a function already added to the module.
func (g *Generator) lookupFunc(name string) *ir.Func {
	for _, fn := range g.mod.Funcs {
		if fn.Name() == name {
			return fn
		}
	}

	return nil
}

// beginBody creates the entry block of fn and binds its parameters in a new
// scope.
func (g *Generator) beginBody(fn *ir.Func, params []Param) {
	g.scopes.PushScope()

	g.enclosingFunc = fn
	g.blockCounter = 0
	g.block = fn.NewBlock("entry")

	for i, p := range params {
		addr := g.block.NewAlloca(p.Type)
		g.block.NewStore(fn.Params[i], addr)
		check(g.scopes.Bind(p.Name, lvalue(addr, nil)))
	}
}

// FinishFunc ends the body of the current function.  Void functions whose
// last block is still open return implicitly.
func (g *Generator) FinishFunc() {
	if g.enclosingFunc == nil {
		report.ReportICE("function finished outside of a function body")
	}

	if len(g.control) > 0 {
		report.ReportICE("function `%s` finished inside of a %s", g.enclosingFunc.Name(), g.control[len(g.control)-1].frameKind())
	}

	g.scopes.PopScope()

	if g.enclosingFunc.Sig.RetType.Equal(types.Void) && !g.finished() {
		g.block.NewRet(nil)
	}

	g.enclosingFunc = nil
	g.block = nil
}

// Return returns v from the current function.  v is implicitly cast to the
// function's return type.
func (g *Generator) Return(v Value) (err error) {
	defer report.Catch(&err)

	g.requireFunc("return")
	if g.finished() {
		return nil
	}

	ret := g.enclosingFunc.Sig.RetType
	if ret.Equal(types.Void) {
		throw(report.InvalidReturn, "function `%s` cannot return a value", g.enclosingFunc.Name())
	}

	g.block.NewRet(g.cast(g.materialize(v), ret, false))
	return nil
}

// ReturnVoid returns from the current function without a value.
func (g *Generator) ReturnVoid() (err error) {
	defer report.Catch(&err)

	g.requireFunc("return")
	if g.finished() {
		return nil
	}

	if ret := g.enclosingFunc.Sig.RetType; !ret.Equal(types.Void) {
		throw(report.InvalidReturn, "function `%s` must return a value of type %s", g.enclosingFunc.Name(), ret)
	}

	g.block.NewRet(nil)
	return nil
}
