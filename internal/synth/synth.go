// Package synth implements C9: the implicit class members javac itself
// synthesizes that never appear as source-level declarations — a default
// no-arg constructor, <clinit>, bridge methods for covariant overrides,
// enum values()/valueOf(), and the pre-1.5 class$ literal accessor
// (spec.md §4.7, §9, and the "SUPPLEMENTED FEATURES" addendum grounded on
// original_source/bytecode_init.cpp).
//
// internal/ast models only expression and statement trees reachable from
// an already-known method body (spec.md §6.2's "external collaborator
// surface"); it has no class or method *declaration* node, since
// producing one is the resolver's job and out of scope here. Synthesis
// therefore takes its input as plain plan structs rather than walking an
// AST, the same way internal/symbols gives codegen a resolved-symbol
// shape to consume without depending on a real front end.
package synth

import (
	"github.com/7mind/jbcgen/internal/ast"
	"github.com/7mind/jbcgen/internal/symbols"
)

// FieldInit pairs a static field with its declaration-order initializer
// expression, nil when the field has no explicit initializer (and so
// contributes nothing to <clinit> beyond the JVM's own default zeroing).
type FieldInit struct {
	Field *symbols.Variable // Owner == OwnerField, IsStatic() true
	Init  ast.Expr
}

// ClassPlan is everything internal/synth needs to know about one class
// to synthesize its implicit members. Callers (the eventual
// internal/maincmd emit driver) build one of these per class from
// whatever upstream declaration representation they have; this package
// never reaches back into a parse tree.
type ClassPlan struct {
	Class  *symbols.Type
	Access int

	// HasExplicitCtor, when false, asks DefaultConstructor to synthesize
	// JLS §8.8.9's implicit no-arg constructor.
	HasExplicitCtor bool

	// StaticFieldInits lists every static field with its initializer, in
	// textual declaration order (the order <clinit> must run them in,
	// JLS §12.4.2).
	StaticFieldInits []FieldInit

	// NeedsAssertionsDisabledField is true when the class lowers at least
	// one `assert` statement (spec.md §4.7), requiring the synthetic
	// `private static final boolean $assertionsDisabled` field and its
	// `!ClassName.class.desiredAssertionStatus()` initializer.
	NeedsAssertionsDisabledField bool
	AssertionsDisabledField      *symbols.Variable // non-nil iff NeedsAssertionsDisabledField

	// Enum-only fields, meaningful iff Class.Kind's declaration is an enum.
	IsEnum           bool
	EnumConstants    []*symbols.Variable // the $VALUES array elements, ordinal order
	EnumValuesField  *symbols.Variable   // the synthetic `static final T[] $VALUES` field

	// UseJSR/NoSuppressed mirror codegen.Context's UseJSR and
	// NoSuppressedExceptions fields. No synthesized member reads them:
	// none of the current synthesized members contains a try statement.
	UseJSR       bool
	NoSuppressed bool

	// TargetBelow1_5, when true, routes class-literal loads through the
	// synthesized class$ accessor instead of a direct LDC of a
	// CONSTANT_Class (spec.md §9's C9 table).
	TargetBelow1_5 bool
}

func internalName(t *symbols.Type) string {
	if t.IsArray() {
		return t.Descriptor()
	}
	return t.FullyQualifiedName
}

func descriptorOf(t *symbols.Type) byte {
	if t.IsPrimitive() {
		return t.PrimitiveDescriptor
	}
	return 'L'
}
