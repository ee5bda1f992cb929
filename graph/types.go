package graph

import "strings"

// TypeRef is the internal representation of a type referenced by a pin or node.
// Turning it into source text is the job of a type formatter; the graph never
// renders types itself.
type TypeRef struct {
	Name      string    // fully qualified name, e.g. "System.Int32"
	Args      []TypeRef // generic instantiation arguments
	Generic   bool      // Name is a generic placeholder such as "T"
	ArrayRank int       // number of [] suffixes
	Enum      bool      // literals of this type are written as Type.Member
}

// T is shorthand for a plain named type.
func T(name string) TypeRef {
	return TypeRef{Name: name}
}

// GenericParam returns a generic placeholder type.
func GenericParam(name string) TypeRef {
	return TypeRef{Name: name, Generic: true}
}

// Of returns a generic instantiation of name with the given arguments.
func Of(name string, args ...TypeRef) TypeRef {
	return TypeRef{Name: name, Args: args}
}

// ArrayOf returns a one-dimensional array of elem.
func ArrayOf(elem TypeRef) TypeRef {
	elem.ArrayRank++
	return elem
}

// Elem strips one array rank.
func (t TypeRef) Elem() TypeRef {
	if t.ArrayRank > 0 {
		t.ArrayRank--
	}
	return t
}

// IsZero reports whether t is unset.
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Name != o.Name || t.Generic != o.Generic || t.ArrayRank != o.ArrayRank || t.Enum != o.Enum {
		return false
	}
	if len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// String is a debug rendering; it is not source syntax.
func (t TypeRef) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteString("<")
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteString(">")
	}
	for i := 0; i < t.ArrayRank; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// Well-known types used by the node builders.
var (
	TypeObject    = T("System.Object")
	TypeBool      = T("System.Boolean")
	TypeInt       = T("System.Int32")
	TypeString    = T("System.String")
	TypeType      = T("System.Type")
	TypeException = T("System.Exception")
	TypeTask      = T("System.Threading.Tasks.Task")
)

// Visibility of the generated member.
type Visibility int

const (
	Private Visibility = iota
	Protected
	Public
	Internal
)

var visibilityNames = map[Visibility]string{
	Private:   "private",
	Protected: "protected",
	Public:    "public",
	Internal:  "internal",
}

func (v Visibility) String() string {
	if s, ok := visibilityNames[v]; ok {
		return s
	}
	return "private"
}

// ParseVisibility maps a keyword to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	for v, name := range visibilityNames {
		if name == s {
			return v, true
		}
	}
	return Private, false
}

// Modifiers is a set of method modifier flags.
type Modifiers uint

const (
	ModStatic Modifiers = 1 << iota
	ModAbstract
	ModSealed
	ModVirtual
	ModOverride
	ModAsync
)

var modifierNames = map[string]Modifiers{
	"static":   ModStatic,
	"abstract": ModAbstract,
	"sealed":   ModSealed,
	"virtual":  ModVirtual,
	"override": ModOverride,
	"async":    ModAsync,
}

// Has reports whether all bits of m are set.
func (m Modifiers) Has(f Modifiers) bool {
	return m&f == f
}

// ParseModifier maps a keyword to a modifier flag.
func ParseModifier(s string) (Modifiers, bool) {
	m, ok := modifierNames[s]
	return m, ok
}

// GraphKind distinguishes method bodies from constructor bodies.
type GraphKind int

const (
	MethodGraph GraphKind = iota
	ConstructorGraph
)

// PassType is how an argument is passed to a parameter.
type PassType int

const (
	PassDefault PassType = iota
	PassOut
	PassRef
	PassIn
)

// ParsePassType maps "out", "ref", "in" or "" to a PassType.
func ParsePassType(s string) (PassType, bool) {
	switch s {
	case "", "default":
		return PassDefault, true
	case "out":
		return PassOut, true
	case "ref":
		return PassRef, true
	case "in":
		return PassIn, true
	}
	return PassDefault, false
}

// Param describes one parameter of a method or constructor.
type Param struct {
	Name string
	Type TypeRef
	Pass PassType
}

// MethodSpec identifies a method called or referenced by a node.
type MethodSpec struct {
	Name          string
	DeclaringType TypeRef
	Static        bool
	Params        []Param
	Returns       []TypeRef
	GenericArgs   []TypeRef
}

// VariableSpec identifies a field or property read or written by a node.
type VariableSpec struct {
	Name          string
	Type          TypeRef
	Static        bool
	DeclaringType TypeRef // empty for static members of the graph's own class
	Indexer       bool
	IndexType     TypeRef
}
