package translator

import (
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

// TypeFormatter turns the graph's type representation into source syntax.
type TypeFormatter interface {
	TypeName(t graph.TypeRef) string
}

// CSharpTypes formats types as fully qualified C# names.
type CSharpTypes struct{}

// TypeName implements TypeFormatter.
func (CSharpTypes) TypeName(t graph.TypeRef) string {
	if t.IsZero() {
		return "System.Object"
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteString("<")
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(CSharpTypes{}.TypeName(a))
		}
		sb.WriteString(">")
	}
	for i := 0; i < t.ArrayRank; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// Operator describes how a well-known method name is written as an operator.
type Operator struct {
	DisplayName string
	Symbol      string
	Unary       bool
	Postfix     bool // unary operator written after its operand
}

// OperatorTable recognizes operator method names.
type OperatorTable interface {
	Lookup(method string) (Operator, bool)
}

// OperatorMap is an OperatorTable backed by a map keyed by method name.
type OperatorMap map[string]Operator

// Lookup implements OperatorTable.
func (m OperatorMap) Lookup(method string) (Operator, bool) {
	op, ok := m[method]
	return op, ok
}

const operatorPrefix = "op_"

// DefaultOperators covers the CLR operator method names.
var DefaultOperators = OperatorMap{
	operatorPrefix + "Increment":     {DisplayName: "Increment", Symbol: "++", Unary: true, Postfix: true},
	operatorPrefix + "Decrement":     {DisplayName: "Decrement", Symbol: "--", Unary: true, Postfix: true},
	operatorPrefix + "UnaryPlus":     {DisplayName: "Unary Plus", Symbol: "+", Unary: true},
	operatorPrefix + "UnaryNegation": {DisplayName: "Unary Negation", Symbol: "-", Unary: true},
	operatorPrefix + "LogicalNot":    {DisplayName: "Not", Symbol: "!", Unary: true},
	operatorPrefix + "BitwiseNot":    {DisplayName: "Bitwise NOT", Symbol: "~", Unary: true},

	operatorPrefix + "Addition":           {DisplayName: "Add", Symbol: "+"},
	operatorPrefix + "Subtraction":        {DisplayName: "Subtract", Symbol: "-"},
	operatorPrefix + "Multiply":           {DisplayName: "Multiply", Symbol: "*"},
	operatorPrefix + "Division":           {DisplayName: "Divide", Symbol: "/"},
	operatorPrefix + "Modulus":            {DisplayName: "Modulus", Symbol: "%"},
	operatorPrefix + "GreaterThan":        {DisplayName: "Greater than", Symbol: ">"},
	operatorPrefix + "GreaterThanOrEqual": {DisplayName: "Greater than or equal", Symbol: ">="},
	operatorPrefix + "Equality":           {DisplayName: "Equal", Symbol: "=="},
	operatorPrefix + "Inequality":         {DisplayName: "Not Equal", Symbol: "!="},
	operatorPrefix + "LessThan":           {DisplayName: "Less than", Symbol: "<"},
	operatorPrefix + "LessThanOrEqual":    {DisplayName: "Less than or equal", Symbol: "<="},
	operatorPrefix + "BitwiseAnd":         {DisplayName: "Bitwise AND", Symbol: "&"},
	operatorPrefix + "BitwiseOr":          {DisplayName: "Bitwise OR", Symbol: "|"},
	operatorPrefix + "ExclusiveOr":        {DisplayName: "Bitwise XOR", Symbol: "^"},
	operatorPrefix + "LeftShift":          {DisplayName: "Shift Left", Symbol: "<<"},
	operatorPrefix + "RightShift":         {DisplayName: "Shift Right", Symbol: ">>"},
	operatorPrefix + "LogicalAnd":         {DisplayName: "And", Symbol: "&&"},
	operatorPrefix + "LogicalOr":          {DisplayName: "Or", Symbol: "||"},
}
