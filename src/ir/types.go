// Package ir holds the typed tree shared between the parser and the code generator: types,
// variables, expressions, operators, functions and nodes. The parser builds values of these types
// while resolving names, overloads and type compatibility; the generator only ever reads them.
package ir

import (
	"fmt"
	"strings"

	"ltc/src/config"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// MemoryKind differentiates the three flavours of raw memory slot.
type MemoryKind int

// Kinds of Memory type.
const (
	Unsigned MemoryKind = iota
	Integer
	Float
)

// String returns a short print form of k, matching the original compiler's "ui"/"i"/"f" suffixes.
func (k MemoryKind) String() string {
	switch k {
	case Unsigned:
		return "ui"
	case Integer:
		return "i"
	case Float:
		return "f"
	default:
		return "?"
	}
}

// Type is a tagged variant over the language's type forms. Exactly one of the Alias/Memory/
// Pointer/Array/Struct/Union/FunctionPointer constructors below produces a valid Type; the Kind
// field says which.
type Kind int

const (
	KindAlias Kind = iota
	KindMemory
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindFunctionPointer
)

// Type is the closed tagged-union of type forms described in the data model.
type Type struct {
	Kind Kind

	// KindAlias
	AliasName string
	Inner     *Type // also used by KindPointer and KindArray's element type

	// KindMemory
	MemSize uint64
	MemKind MemoryKind

	// KindArray
	SizeExpr *Expression

	// KindStruct / KindUnion
	Fields []Variable

	// KindFunctionPointer
	ReturnType *Type
	Arguments  []Type
}

// ---------------------
// ----- functions -----
// ---------------------

// Alias constructs a transparent named type.
func Alias(name string, inner *Type) Type { return Type{Kind: KindAlias, AliasName: name, Inner: inner} }

// Memory constructs a raw memory slot type.
func Memory(size uint64, kind MemoryKind) Type { return Type{Kind: KindMemory, MemSize: size, MemKind: kind} }

// Pointer constructs a pointer-to-inner type.
func Pointer(inner *Type) Type { return Type{Kind: KindPointer, Inner: inner} }

// Array constructs a fixed-length array type whose length is a (possibly compile-time-evaluable)
// expression.
func Array(size *Expression, inner *Type) Type { return Type{Kind: KindArray, SizeExpr: size, Inner: inner} }

// Struct constructs a sequentially laid out aggregate type.
func Struct(fields []Variable) Type { return Type{Kind: KindStruct, Fields: fields} }

// Union constructs an overlapped aggregate type.
func Union(fields []Variable) Type { return Type{Kind: KindUnion, Fields: fields} }

// FunctionPointer constructs a function pointer type.
func FunctionPointer(ret *Type, args []Type) Type {
	return Type{Kind: KindFunctionPointer, ReturnType: ret, Arguments: args}
}

// Root follows Alias chains and returns the first non-alias form.
func (t *Type) Root() *Type {
	for t.Kind == KindAlias {
		t = t.Inner
	}
	return t
}

// Size returns the size in bytes of t, as defined only on root forms.
func (t *Type) Size(cfg *config.Configs) uint64 {
	r := t.Root()
	switch r.Kind {
	case KindMemory:
		return r.MemSize
	case KindPointer, KindFunctionPointer:
		return cfg.Sizes.Pointer
	case KindArray:
		return cfg.Sizes.Pointer
	case KindStruct:
		var total uint64
		for _, f := range r.Fields {
			total += f.Type.Size(cfg)
		}
		return total
	case KindUnion:
		var max uint64
		for _, f := range r.Fields {
			if s := f.Type.Size(cfg); s > max {
				max = s
			}
		}
		return max
	default:
		panic("ir: Size called on malformed type")
	}
}

// Align returns the alignment in bytes of t, as defined only on root forms.
func (t *Type) Align(cfg *config.Configs) uint64 {
	r := t.Root()
	switch r.Kind {
	case KindMemory:
		return r.MemSize
	case KindArray:
		return r.Inner.Align(cfg)
	case KindPointer, KindFunctionPointer:
		return cfg.Sizes.Pointer
	case KindStruct, KindUnion:
		var max uint64
		for _, f := range r.Fields {
			if a := f.Type.Align(cfg); a > max {
				max = a
			}
		}
		return max
	default:
		panic("ir: Align called on malformed type")
	}
}

// CompatibleWith reports whether a value of type t may be used where a value of type other is
// expected: assignment, argument passing and return compatibility all route through this
// relation. See the GLOSSARY entry "Compatibility".
func (t *Type) CompatibleWith(other *Type) bool {
	if t.Kind == KindArray && other.Kind == KindPointer {
		return t.Inner.CompatibleWith(other.Inner)
	}
	if t.Kind == KindStruct && other.Kind == KindStruct {
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i1 := range t.Fields {
			if !t.Fields[i1].Type.CompatibleWith(&other.Fields[i1].Type) {
				return false
			}
		}
		return true
	}
	if t.Kind == KindUnion && other.Kind == KindUnion {
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i1 := range t.Fields {
			if !t.Fields[i1].Type.CompatibleWith(&other.Fields[i1].Type) {
				return false
			}
		}
		return true
	}
	// Open question #1 (see DESIGN.md): any two pointers are mutually compatible.
	if t.Kind == KindPointer && other.Kind == KindPointer {
		return true
	}

	r1, r2 := t.Root(), other.Root()
	if r1.Kind != KindMemory || r2.Kind != KindMemory {
		return false
	}
	kindsCompatible := r1.MemKind == r2.MemKind ||
		(r1.MemKind == Integer && r2.MemKind == Unsigned) ||
		(r1.MemKind == Unsigned && r2.MemKind == Integer)
	if r1.MemKind == Float || r2.MemKind == Float {
		kindsCompatible = r1.MemKind == Float && r2.MemKind == Float
	}
	return kindsCompatible && r1.MemSize <= r2.MemSize
}

// String renders t in the same print form the original compiler used for diagnostics.
func (t *Type) String() string {
	switch t.Kind {
	case KindAlias:
		return fmt.Sprintf("%s(actually %s)", t.AliasName, t.Inner)
	case KindMemory:
		return fmt.Sprintf("[%d:%s]", t.MemSize, t.MemKind)
	case KindPointer:
		return "&" + t.Inner.String()
	case KindArray:
		return fmt.Sprintf("[%s](%s)", t.SizeExpr, t.Inner)
	case KindStruct:
		return fmt.Sprintf("struct { %s }", joinVars(t.Fields))
	case KindUnion:
		return fmt.Sprintf("union { %s }", joinVars(t.Fields))
	case KindFunctionPointer:
		args := make([]string, len(t.Arguments))
		for i1, a := range t.Arguments {
			args[i1] = a.String()
		}
		return fmt.Sprintf("fnc(%s) %s", strings.Join(args, ", "), t.ReturnType)
	default:
		return "<invalid type>"
	}
}

func joinVars(vs []Variable) string {
	parts := make([]string, len(vs))
	for i1, v := range vs {
		parts[i1] = v.String()
	}
	return strings.Join(parts, "; ")
}

// Variable is a named, uniquely identified storage location: a global, a local, or a function
// argument.
type Variable struct {
	Type     Type
	Name     string
	Id       uint64
	Mutable  bool
	Global   bool
}

// String renders v in the same print form the original compiler used for diagnostics.
func (v Variable) String() string {
	mut := ""
	if v.Mutable {
		mut = "mut"
	}
	scope := "local"
	if v.Global {
		scope = "global"
	}
	return fmt.Sprintf("%s %s %s<%d(%s)>", v.Type.String(), mut, v.Name, v.Id, scope)
}
