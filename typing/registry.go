package typing

import (
	"lowc/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// Entry associates a user-visible type name with its LLVM type.
type Entry struct {
	Name string
	Type types.Type
}

// Field is a single named field of an aggregate type.
type Field struct {
	Name string
	Type types.Type
}

// Aggregate is the definition of a struct type: the LLVM struct type and its
// ordered field list.  The position of a field in the list is both its layout
// position and the index used to access it.
type Aggregate struct {
	Type   *types.StructType
	Fields []Field
}

// FieldIndex returns the position of the field with the given name.  The
// second return value is false if no such field exists.
func (a *Aggregate) FieldIndex(name string) (int, bool) {
	for i, field := range a.Fields {
		if field.Name == name {
			return i, true
		}
	}

	return -1, false
}

// -----------------------------------------------------------------------------

// Registry maps type names to LLVM types for a single compilation unit and
// tracks the layouts of all user defined aggregates.  Struct types are added
// to the module as named type definitions.
type Registry struct {
	// mod is the module that struct definitions are emitted into.
	mod *ir.Module

	// entries holds every named type by name.
	entries map[string]*Entry

	// order stores the entries in definition order.
	order []*Entry

	// aggregates stores all completed struct definitions.
	aggregates []*Aggregate
}

// NewRegistry creates a new type registry emitting into mod with all of the
// primitive types already defined.
func NewRegistry(mod *ir.Module) *Registry {
	r := &Registry{
		mod:     mod,
		entries: make(map[string]*Entry),
	}

	for _, prim := range primitives {
		r.Define(prim.Name, prim.Type)
	}

	return r
}

// primitives lists the types that every compilation unit starts with.
var primitives = []Entry{
	{"void", types.Void},
	{"bool", types.I1},
	{"char", types.I8},
	{"int8", types.I8},
	{"int16", types.I16},
	{"int32", types.I32},
	{"int64", types.I64},
	{"float", types.Float},
	{"double", types.Double},
}

// Define adds a new named type to the registry.
func (r *Registry) Define(name string, typ types.Type) error {
	if _, ok := r.entries[name]; ok {
		return report.Raise(report.DuplicateType, "redefined type: %s", name)
	}

	entry := &Entry{Name: name, Type: typ}
	r.entries[name] = entry
	r.order = append(r.order, entry)
	return nil
}

// Lookup looks up a named type.  The second return value is false if the
// type does not exist.
func (r *Registry) Lookup(name string) (types.Type, bool) {
	if entry, ok := r.entries[name]; ok {
		return entry.Type, true
	}

	return nil, false
}

// Resolve looks up a named type and fails if it does not exist.
func (r *Registry) Resolve(name string) (types.Type, error) {
	if typ, ok := r.Lookup(name); ok {
		return typ, nil
	}

	return nil, report.Raise(report.UnknownType, "couldn't find type %s", name)
}

// Entries returns all named types in definition order.
func (r *Registry) Entries() []*Entry {
	return r.order
}

// DeclareStruct declares or completes a struct type.  If no type by the name
// exists, an opaque struct is created and registered.  If fields is non-nil,
// the struct body is set (as a packed layout) and the definition is recorded
// for field access.
func (r *Registry) DeclareStruct(name string, fields []Field) (*types.StructType, error) {
	var st *types.StructType
	if typ, ok := r.Lookup(name); ok {
		ost, isStruct := typ.(*types.StructType)
		if !isStruct || ost.Name() != name {
			// the name belongs to a primitive or an alias
			return nil, report.Raise(report.DuplicateType, "redefined type: %s", name)
		}

		if fields == nil {
			return ost, nil
		} else if !ost.Opaque {
			return nil, report.Raise(report.AggregateRedefined, "structure %s already defined", name)
		}

		st = ost
	} else {
		st = &types.StructType{Opaque: true}
		r.mod.NewTypeDef(name, st)

		if err := r.Define(name, st); err != nil {
			return nil, err
		}
	}

	if fields != nil {
		st.Opaque = false
		st.Packed = true
		st.Fields = make([]types.Type, len(fields))
		for i, field := range fields {
			st.Fields[i] = field.Type
		}

		r.aggregates = append(r.aggregates, &Aggregate{Type: st, Fields: fields})
	}

	return st, nil
}

// AggregateOf finds the definition of a struct type by identity.  The second
// return value is false if the struct has no recorded definition (ie. it is
// still opaque).
func (r *Registry) AggregateOf(st *types.StructType) (*Aggregate, bool) {
	for _, agg := range r.aggregates {
		if agg.Type == st {
			return agg, true
		}
	}

	return nil, false
}
