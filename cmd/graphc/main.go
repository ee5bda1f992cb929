// graphc translates execution graph documents into C# method bodies.
//
// Usage:
//
//	graphc translate [-o dir] [--signature] [--seed N] [--parallel N] [--fail-fast] [--trace] files...
//	graphc validate files...
//	graphc kinds
//
// Graph documents are HCL files; directories are searched for *.graph.hcl.
// Settings are read from graphc.yaml when present, and flags override them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "graphc: %v\n", err)
		os.Exit(1)
	}
}
