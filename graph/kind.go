package graph

import "github.com/zclconf/go-cty/cty"

// Kind enumerates the closed set of node kinds.
type Kind int

const (
	KindEntry Kind = iota
	KindReturn
	KindCall
	KindConstructor
	KindVariableSetter
	KindVariableGetter
	KindBranch
	KindForLoop
	KindCast
	KindThrow
	KindAwait
	KindTernary
	KindReroute
	KindLiteral
	KindMakeDelegate
	KindTypeOf
	KindMakeArray
	KindDefault
	KindTypeNode
	KindCustom

	kindCount
)

var kindNames = [kindCount]string{
	KindEntry:          "entry",
	KindReturn:         "return",
	KindCall:           "call",
	KindConstructor:    "constructor",
	KindVariableSetter: "variable_setter",
	KindVariableGetter: "variable_getter",
	KindBranch:         "branch",
	KindForLoop:        "for_loop",
	KindCast:           "cast",
	KindThrow:          "throw",
	KindAwait:          "await",
	KindTernary:        "ternary",
	KindReroute:        "reroute",
	KindLiteral:        "literal",
	KindMakeDelegate:   "make_delegate",
	KindTypeOf:         "typeof",
	KindMakeArray:      "make_array",
	KindDefault:        "default",
	KindTypeNode:       "type",
	KindCustom:         "custom",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds returns every built-in kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind maps a kind name as used in graph documents to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Payload is the kind-specific part of a node. The set of implementations is
// closed; each one records which pins play which role.
type Payload interface {
	payload()
}

type EntryPayload struct{}

type ReturnPayload struct {
	Values []PinID
}

type CallPayload struct {
	Method            MethodSpec
	HandlesExceptions bool
	Target            PinID // NoPin for static methods
	Args              []PinID
	Results           []PinID
	Exception         PinID // output data, NoPin unless HandlesExceptions
	Catch             PinID // output exec, NoPin unless HandlesExceptions
}

type ConstructorPayload struct {
	Type   TypeRef
	Params []Param
	Args   []PinID
	Result PinID
}

type VariablePayload struct {
	Variable VariableSpec
	Target   PinID // NoPin for static members
	Index    PinID // NoPin unless indexer
	Value    PinID // setter only
	Result   PinID
}

type BranchPayload struct {
	Condition PinID
	True      PinID
	False     PinID
}

type ForLoopPayload struct {
	Initial   PinID
	Max       PinID
	Index     PinID
	Loop      PinID
	Completed PinID
	Continue  PinID
}

type CastPayload struct {
	Type    TypeRef
	Object  PinID
	Result  PinID
	Success PinID // NoPin when pure
	Failed  PinID // NoPin when pure
}

type ThrowPayload struct {
	Exception PinID
}

type AwaitPayload struct {
	Task   PinID
	Result PinID // NoPin for tasks without a result
}

type TernaryPayload struct {
	Condition PinID
	True      PinID
	False     PinID
	Result    PinID
}

type ReroutePayload struct {
	Channel Channel
	In      PinID
	Out     PinID
}

type LiteralPayload struct {
	Value  PinID
	Result PinID
}

type MakeDelegatePayload struct {
	Method MethodSpec
	Target PinID
	Result PinID
}

type TypeOfPayload struct {
	Type   PinID
	Result PinID
}

type MakeArrayPayload struct {
	ElementType    TypeRef
	PredefinedSize bool
	Size           PinID
	Elements       []PinID
	Result         PinID
}

type DefaultPayload struct {
	Type   TypeRef
	Result PinID
}

type TypeNodePayload struct {
	Type TypeRef
	Out  PinID
}

// CustomPayload backs nodes whose code generation lives in a registry
// outside the built-in dispatch table.
type CustomPayload struct {
	TypeName string
	Attrs    map[string]cty.Value
}

func (EntryPayload) payload()        {}
func (ReturnPayload) payload()       {}
func (CallPayload) payload()         {}
func (ConstructorPayload) payload()  {}
func (VariablePayload) payload()     {}
func (BranchPayload) payload()       {}
func (ForLoopPayload) payload()      {}
func (CastPayload) payload()         {}
func (ThrowPayload) payload()        {}
func (AwaitPayload) payload()        {}
func (TernaryPayload) payload()      {}
func (ReroutePayload) payload()      {}
func (LiteralPayload) payload()      {}
func (MakeDelegatePayload) payload() {}
func (TypeOfPayload) payload()       {}
func (MakeArrayPayload) payload()    {}
func (DefaultPayload) payload()      {}
func (TypeNodePayload) payload()     {}
func (CustomPayload) payload()       {}
