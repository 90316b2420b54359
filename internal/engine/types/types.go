// # internal/engine/types/types.go
package types

import "strings"

const (
	Object       = "java.lang.Object"
	String       = "java.lang.String"
	CharSequence = "java.lang.CharSequence"
	Number       = "java.lang.Number"
	Class        = "java.lang.Class"

	Boolean = "boolean"
	Byte    = "byte"
	Short   = "short"
	Char    = "char"
	Int     = "int"
	Long    = "long"
	Float   = "float"
	Double  = "double"
	Void    = "void"
)

// Instance is an inferred static type: a fully qualified or external name
// plus array dimensions. The zero value is the unknown type.
type Instance struct {
	Name string
	Dims int
	// Null marks the null literal, which converts to any reference type.
	Null bool
	// Placeholder marks lambdas and method references, whose target type
	// comes from the call site.
	Placeholder bool
}

func Of(name string, dims int) Instance { return Instance{Name: name, Dims: dims} }

func Unknown() Instance { return Instance{} }

func NullType() Instance { return Instance{Name: Object, Null: true} }

func PlaceholderType() Instance { return Instance{Name: Object, Placeholder: true} }

func (t Instance) Known() bool { return t.Name != "" }

func (t Instance) IsArray() bool { return t.Dims > 0 }

// Element drops one array dimension. Non-arrays yield unknown.
func (t Instance) Element() Instance {
	if t.Dims == 0 {
		return Unknown()
	}
	return Instance{Name: t.Name, Dims: t.Dims - 1}
}

func (t Instance) String() string {
	if !t.Known() {
		return "?"
	}
	if t.Null {
		return "null"
	}
	return t.Name + strings.Repeat("[]", t.Dims)
}

var primitives = map[string]bool{
	Boolean: true, Byte: true, Short: true, Char: true,
	Int: true, Long: true, Float: true, Double: true,
}

var boxes = map[string]string{
	Boolean: "java.lang.Boolean",
	Byte:    "java.lang.Byte",
	Short:   "java.lang.Short",
	Char:    "java.lang.Character",
	Int:     "java.lang.Integer",
	Long:    "java.lang.Long",
	Float:   "java.lang.Float",
	Double:  "java.lang.Double",
}

var unboxes = func() map[string]string {
	m := make(map[string]string, len(boxes))
	for p, b := range boxes {
		m[b] = p
	}
	return m
}()

// numeric ranks primitives for binary numeric promotion.
var numeric = map[string]int{Byte: 1, Short: 2, Char: 2, Int: 3, Long: 4, Float: 5, Double: 6}

func IsPrimitive(name string) bool { return primitives[name] }

// Primitives returns the primitive names in a fixed order.
func Primitives() []string {
	return []string{Boolean, Byte, Short, Char, Int, Long, Float, Double}
}

// Box returns the wrapper class for a primitive.
func Box(primitive string) (string, bool) {
	b, ok := boxes[primitive]
	return b, ok
}

// Unbox returns the primitive for a wrapper class.
func Unbox(boxed string) (string, bool) {
	p, ok := unboxes[boxed]
	return p, ok
}

// IsNumeric reports whether name is a numeric primitive or its wrapper.
func IsNumeric(name string) bool {
	if p, ok := unboxes[name]; ok {
		name = p
	}
	_, ok := numeric[name]
	return ok
}

func IsBoolean(name string) bool {
	return name == Boolean || name == boxes[Boolean]
}

// Promote applies binary numeric promotion. Both operands must be numeric.
func Promote(a, b string) string {
	if p, ok := unboxes[a]; ok {
		a = p
	}
	if p, ok := unboxes[b]; ok {
		b = p
	}
	switch {
	case a == Double || b == Double:
		return Double
	case a == Float || b == Float:
		return Float
	case a == Long || b == Long:
		return Long
	default:
		return Int
	}
}

// PromoteUnary widens byte, short and char operands to int.
func PromoteUnary(name string) string {
	if p, ok := unboxes[name]; ok {
		name = p
	}
	if numeric[name] > 0 && numeric[name] < numeric[Int] {
		return Int
	}
	return name
}

// implicit lists java.lang types visible without an import.
var implicit = []string{
	"Object", "String", "CharSequence", "Number", "Class", "Enum", "Record",
	"Boolean", "Byte", "Short", "Character", "Integer", "Long", "Float", "Double",
	"Void", "Math", "StrictMath", "System", "Thread", "Runnable", "Iterable",
	"Comparable", "Cloneable", "AutoCloseable", "Throwable", "Exception", "Error",
	"RuntimeException", "IllegalArgumentException", "IllegalStateException",
	"NullPointerException", "IndexOutOfBoundsException", "ArrayIndexOutOfBoundsException",
	"ClassCastException", "ArithmeticException", "UnsupportedOperationException",
	"CloneNotSupportedException", "InterruptedException", "StringBuilder", "StringBuffer",
	"Override", "Deprecated", "SuppressWarnings", "FunctionalInterface", "SafeVarargs",
}

var implicitSet = func() map[string]bool {
	m := make(map[string]bool, len(implicit))
	for _, n := range implicit {
		m[n] = true
	}
	return m
}()

// Implicit returns the java.lang qualified name for a simple name visible in
// every compilation unit.
func Implicit(simple string) (string, bool) {
	if implicitSet[simple] {
		return "java.lang." + simple, true
	}
	return "", false
}
