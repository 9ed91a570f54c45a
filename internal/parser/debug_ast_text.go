package parser

import (
	"fmt"
	"mosa/internal/ast"
	"strings"

	"github.com/kr/pretty"
)

// RenderASTAsText produces one block per top level statement: the source-like
// form followed by the Go structure of the node.
func RenderASTAsText(program *ast.Program) string {
	var sb strings.Builder
	for i, s := range program.Statements {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "// %s\n", s.String())
		fmt.Fprintf(&sb, "%# v\n", pretty.Formatter(s))
	}
	return sb.String()
}
