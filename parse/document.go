package parse

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// HCL shapes of a graph document, decoded with gohcl.

type fileDoc struct {
	Graphs []*graphDoc `hcl:"graph,block"`
}

type graphDoc struct {
	Name       string          `hcl:"name,label"`
	Class      string          `hcl:"class"`
	Kind       string          `hcl:"kind,optional"`
	Visibility string          `hcl:"visibility,optional"`
	Modifiers  []string        `hcl:"modifiers,optional"`
	Returns    []string        `hcl:"returns,optional"`
	Generics   []string        `hcl:"generics,optional"`
	Parameters []*parameterDoc `hcl:"parameter,block"`
	Nodes      []*nodeDoc      `hcl:"node,block"`
	Connects   []*connectDoc   `hcl:"connect,block"`
}

type parameterDoc struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

// nodeDoc is decoded in two steps: the labels first, then the body against
// the shape of its kind.
type nodeDoc struct {
	Name string   `hcl:"name,label"`
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}

type connectDoc struct {
	From hcl.Expression `hcl:"from"`
	To   hcl.Expression `hcl:"to"`
}

// nodeBody holds every attribute a built-in node kind may set. Which ones
// are required depends on the kind.
type nodeBody struct {
	Type              string      `hcl:"type,optional"`
	Value             cty.Value   `hcl:"value,optional"`
	Method            string      `hcl:"method,optional"`
	DeclaringType     string      `hcl:"declaring_type,optional"`
	Static            bool        `hcl:"static,optional"`
	Pure              bool        `hcl:"pure,optional"`
	HandlesExceptions bool        `hcl:"handles_exceptions,optional"`
	Results           []string    `hcl:"results,optional"`
	GenericArgs       []string    `hcl:"generic_args,optional"`
	Name              string      `hcl:"name,optional"`
	IndexType         string      `hcl:"index_type,optional"`
	Result            string      `hcl:"result,optional"`
	Channel           string      `hcl:"channel,optional"`
	DelegateType      string      `hcl:"delegate_type,optional"`
	Size              bool        `hcl:"size,optional"`
	Count             int         `hcl:"count,optional"`
	Params            []*paramDoc `hcl:"param,block"`
	Inputs            []*inputDoc `hcl:"input,block"`
}

type paramDoc struct {
	Name            string `hcl:"name,label"`
	Type            string `hcl:"type"`
	Pass            string `hcl:"pass,optional"`
	ExplicitDefault bool   `hcl:"explicit_default,optional"`
}

type inputDoc struct {
	Name            string    `hcl:"name,label"`
	Value           cty.Value `hcl:"value,optional"`
	ExplicitDefault bool      `hcl:"explicit_default,optional"`
}

// customBody is the body of a registered node. Attributes other than type
// become the node's attributes.
type customBody struct {
	Type   string      `hcl:"type,optional"`
	Inputs []*inputDoc `hcl:"input,block"`
	Remain hcl.Body    `hcl:",remain"`
}
