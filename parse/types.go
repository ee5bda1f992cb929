package parse

import (
	"fmt"
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

// ParseType reads a type reference as written in graph documents:
//
//	System.Int32
//	System.String[]
//	System.Collections.Generic.List<System.Int32>
//	enum Color
//
// Names listed in generics become generic placeholders.
func ParseType(s string, generics map[string]bool) (graph.TypeRef, error) {
	s = strings.TrimSpace(s)
	var t graph.TypeRef
	if rest, ok := strings.CutPrefix(s, "enum "); ok {
		t.Enum = true
		s = strings.TrimSpace(rest)
	}
	for strings.HasSuffix(s, "[]") {
		t.ArrayRank++
		s = strings.TrimSpace(strings.TrimSuffix(s, "[]"))
	}
	if s == "" {
		return graph.TypeRef{}, fmt.Errorf("%w: empty type name", ErrInvalidType)
	}

	if open := strings.IndexByte(s, '<'); open >= 0 {
		if !strings.HasSuffix(s, ">") {
			return graph.TypeRef{}, fmt.Errorf("%w: unbalanced '<' in %q", ErrInvalidType, s)
		}
		args, err := splitTypeArgs(s[open+1 : len(s)-1])
		if err != nil {
			return graph.TypeRef{}, err
		}
		for _, a := range args {
			at, err := ParseType(a, generics)
			if err != nil {
				return graph.TypeRef{}, err
			}
			t.Args = append(t.Args, at)
		}
		s = strings.TrimSpace(s[:open])
	}
	t.Name = s
	t.Generic = generics[s]
	return t, nil
}

// splitTypeArgs splits on commas outside nested angle brackets.
func splitTypeArgs(s string) ([]string, error) {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced '>' in %q", ErrInvalidType, s)
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced '<' in %q", ErrInvalidType, s)
	}
	return append(out, s[start:]), nil
}

func parseTypes(list []string, generics map[string]bool) ([]graph.TypeRef, error) {
	out := make([]graph.TypeRef, 0, len(list))
	for _, s := range list {
		t, err := ParseType(s, generics)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
