// Package symbols defines the resolved-symbol surface the code generator
// consumes, per spec.md §6.2. Producing these values — name and type
// resolution, generic-type inference — is the job of the upstream
// semantic analyzer and is explicitly out of scope (spec.md §1); this
// package exists only to give that external collaborator's output a
// concrete Go shape so the rest of jbcgen can be built and tested without
// depending on a full front end.
package symbols

// Kind discriminates the three symbol-table entries used by the emitter.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindClass
	KindArray
)

// Type is a resolved type symbol: primitive, class/interface, or array.
// Mirrors the fields spec.md §6.2 requires the emitter to be able to ask
// of any type it encounters.
type Type struct {
	Kind Kind

	// PrimitiveDescriptor is one of B C D F I J S Z V, set iff Kind ==
	// KindPrimitive.
	PrimitiveDescriptor byte

	// FullyQualifiedName is the internal (slash-separated) binary name,
	// set iff Kind == KindClass, e.g. "java/lang/String".
	FullyQualifiedName string
	IsInterface        bool
	IsFinal            bool
	Super              *Type   // nil for java/lang/Object and for interfaces
	Interfaces         []*Type

	// NumDimensions and ArraySubtype are set iff Kind == KindArray.
	NumDimensions int
	ArraySubtype  *Type // element type one dimension down

	// Enclosing is the lexically enclosing instance's type, for inner
	// (non-static) classes; nil otherwise.
	Enclosing *Type
}

// Void, the primitive types, and java/lang/Object as commonly needed
// sentinels. Class types beyond Object are constructed by callers/tests
// as needed; this package does not model a full class library.
var (
	Void    = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'V'}
	Boolean = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'Z'}
	Byte    = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'B'}
	Char    = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'C'}
	Short   = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'S'}
	Int     = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'I'}
	Long    = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'J'}
	Float   = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'F'}
	Double  = &Type{Kind: KindPrimitive, PrimitiveDescriptor: 'D'}

	Object = &Type{Kind: KindClass, FullyQualifiedName: "java/lang/Object"}
)

// ClassType returns a (non-interface, non-final, Object-superclassed)
// class type symbol for fqn, a convenience for tests and synthesis code
// that only needs a name to reference.
func ClassType(fqn string) *Type {
	return &Type{Kind: KindClass, FullyQualifiedName: fqn, Super: Object}
}

// ArrayType returns the type symbol for an n-dimensional array of elem.
func ArrayType(elem *Type, dims int) *Type {
	if dims <= 0 {
		return elem
	}
	return &Type{Kind: KindArray, NumDimensions: dims, ArraySubtype: ArrayType(elem, dims-1)}
}

// IsPrimitive, IsArray, IsClass report t's discriminant.
func (t *Type) IsPrimitive() bool { return t.Kind == KindPrimitive }
func (t *Type) IsArray() bool     { return t.Kind == KindArray }
func (t *Type) IsClass() bool     { return t.Kind == KindClass }

// IsSubtype reports whether t <: other, walking superclass and interface
// edges for class types, and array covariance for array types. This is a
// simplification of full JLS subtyping sufficient for the code generator's
// needs (cast elision, bridge-method targets, instanceof folding); it does
// not model generics.
func (t *Type) IsSubtype(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	if t == other {
		return true
	}
	switch {
	case t.IsClass() && other.IsClass():
		if other.FullyQualifiedName == "java/lang/Object" {
			return true
		}
		if t.FullyQualifiedName == other.FullyQualifiedName {
			return true
		}
		if t.Super != nil && t.Super.IsSubtype(other) {
			return true
		}
		for _, i := range t.Interfaces {
			if i.IsSubtype(other) {
				return true
			}
		}
		return false
	case t.IsArray() && other.IsArray():
		if t.NumDimensions != other.NumDimensions {
			return false
		}
		return t.ArraySubtype.IsSubtype(other.ArraySubtype)
	case t.IsArray() && other.IsClass():
		return other.FullyQualifiedName == "java/lang/Object" ||
			other.FullyQualifiedName == "java/lang/Cloneable" ||
			other.FullyQualifiedName == "java/io/Serializable"
	default:
		return false
	}
}

// Descriptor computes the JVMS §4.3.2 field descriptor for t.
func (t *Type) Descriptor() string {
	switch {
	case t.IsPrimitive():
		return string(t.PrimitiveDescriptor)
	case t.IsClass():
		return "L" + t.FullyQualifiedName + ";"
	case t.IsArray():
		return repeat('[', t.NumDimensions) + t.elementDescriptor()
	default:
		return ""
	}
}

func (t *Type) elementDescriptor() string {
	d := t.ArraySubtype
	for d.IsArray() {
		d = d.ArraySubtype
	}
	return d.Descriptor()
}

func repeat(b byte, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return string(out)
}

// Access flags, shared across Type/Method/Variable symbols, matching the
// subset the emitter needs per spec.md §3.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccProtected = 0x0004
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccSuper     = 0x0020
	AccSynchronized = 0x0020
	AccVolatile  = 0x0040
	AccBridge    = 0x0040
	AccTransient = 0x0080
	AccVarargs   = 0x0080
	AccNative    = 0x0100
	AccInterface = 0x0200
	AccAbstract  = 0x0400
	AccStrict    = 0x0800
	AccSynthetic = 0x1000
	AccAnnotation = 0x2000
	AccEnum      = 0x4000
)

// Method is a resolved method (or constructor) symbol.
type Method struct {
	Owner       *Type
	Name        string // "<init>" for constructors
	Access      int
	Params      []*Type
	Return      *Type
	Throws      []*Type
	IsVarargs   bool
	IsBridge    bool
	BridgeTarget *Method // the type-specific method a bridge delegates to
	Generic     bool      // erased return type differs from a type parameter
}

// Descriptor computes the JVMS §4.3.3 method descriptor.
func (m *Method) Descriptor() string {
	s := "("
	for _, p := range m.Params {
		s += p.Descriptor()
	}
	s += ")"
	if m.Return == nil {
		s += "V"
	} else {
		s += m.Return.Descriptor()
	}
	return s
}

// IsStatic, IsConstructor report on m's nature.
func (m *Method) IsStatic() bool      { return m.Access&AccStatic != 0 }
func (m *Method) IsConstructor() bool { return m.Name == "<init>" }

// VariableOwner discriminates where a Variable symbol lives.
type VariableOwner uint8

const (
	OwnerLocal VariableOwner = iota
	OwnerField
)

// Variable is a resolved local-variable or field symbol.
type Variable struct {
	Name          string
	Type          *Type
	Access        int
	Owner         VariableOwner
	LocalIndex    int         // meaningful iff Owner == OwnerLocal
	DeclaringType *Type       // meaningful iff Owner == OwnerField
	ConstantValue interface{} // non-nil iff this is a compile-time constant (final + constant initializer)
}

func (v *Variable) IsStatic() bool { return v.Access&AccStatic != 0 }
func (v *Variable) IsFinal() bool  { return v.Access&AccFinal != 0 }
