package translator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zclconf/go-cty/cty"

	"github.com/mxkacsa/execgraph/graph"
)

type literalClass int

const (
	litOther literalClass = iota
	litString
	litFloat
	litDouble
	litUint
	litChar
	litLong
	litUlong
	litDecimal
	litBool
)

var literalClasses = map[string]literalClass{
	"System.String":  litString,
	"string":         litString,
	"System.Single":  litFloat,
	"float":          litFloat,
	"System.Double":  litDouble,
	"double":         litDouble,
	"System.UInt32":  litUint,
	"uint":           litUint,
	"System.Char":    litChar,
	"char":           litChar,
	"System.Int64":   litLong,
	"long":           litLong,
	"System.UInt64":  litUlong,
	"ulong":          litUlong,
	"System.Decimal": litDecimal,
	"decimal":        litDecimal,
	"System.Boolean": litBool,
	"bool":           litBool,
}

var literalSuffix = map[literalClass]string{
	litFloat:   "F",
	litDouble:  "D",
	litUint:    "U",
	litLong:    "L",
	litUlong:   "UL",
	litDecimal: "M",
}

// Literal renders a constant of type t as source text.
func Literal(v cty.Value, t graph.TypeRef, types TypeFormatter) string {
	if t.Enum {
		// Enums are never null; a missing member name is the zero value.
		if member := rawValue(v); member != "" {
			return fmt.Sprintf("%s.%s", types.TypeName(t), member)
		}
		return fmt.Sprintf("default(%s)", types.TypeName(t))
	}
	if v == cty.NilVal || v.IsNull() {
		return "null"
	}
	if !v.IsKnown() || !v.Type().IsPrimitiveType() {
		return fmt.Sprintf("default(%s)", types.TypeName(t))
	}

	raw := rawValue(v)
	class := litOther
	if t.ArrayRank == 0 {
		class = literalClasses[t.Name]
	}
	switch class {
	case litString:
		return quoteString(raw)
	case litChar:
		return quoteChar(raw)
	case litBool:
		return strings.ToLower(raw)
	}
	return raw + literalSuffix[class]
}

func rawValue(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return ""
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	}
	return ""
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		writeEscaped(&sb, r, '"')
	}
	sb.WriteByte('"')
	return sb.String()
}

func quoteChar(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	if s != "" {
		r, _ := utf8.DecodeRuneInString(s)
		writeEscaped(&sb, r, '\'')
	}
	sb.WriteByte('\'')
	return sb.String()
}

func writeEscaped(sb *strings.Builder, r rune, quote rune) {
	switch r {
	case '\\':
		sb.WriteString(`\\`)
	case quote:
		sb.WriteRune('\\')
		sb.WriteRune(r)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	case '\t':
		sb.WriteString(`\t`)
	case 0:
		sb.WriteString(`\0`)
	default:
		if r < 0x20 {
			fmt.Fprintf(sb, `\u%04x`, r)
			return
		}
		sb.WriteRune(r)
	}
}
