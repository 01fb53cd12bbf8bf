package typechecker

import (
	"fmt"
	"strings"

	"github.com/Airsequel/AirScript/pkg/ast"
	"github.com/Airsequel/AirScript/pkg/types"
)

// TypeError reports a static type violation. Expected and Found are set for
// mismatches; Secondary points at the related node (a callee, an earlier
// binding, a declaration) when there is one.
type TypeError struct {
	Message   string
	Expected  types.Type
	Found     types.Type
	Primary   ast.Span
	Secondary ast.Span
}

func (e *TypeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "type error at %s: %s", e.Primary, e.Message)
	if e.Secondary != (ast.Span{}) {
		fmt.Fprintf(&b, " (see %s)", e.Secondary)
	}
	return b.String()
}

// RecursionError reports a binding reachable from its own definition. Cycle
// names the bindings in reference order, starting and ending with the same
// name.
type RecursionError struct {
	Cycle []string
	Span  ast.Span
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("recursion at %s: %s", e.Span, strings.Join(e.Cycle, " -> "))
}

// abort carries the first error out of the inference walk.
type abort struct{ err error }

func (c *checker) fail(err error) {
	panic(abort{err: err})
}

func (c *checker) failf(node ast.Node, format string, args ...any) {
	c.fail(&TypeError{Message: fmt.Sprintf(format, args...), Primary: spanOf(node)})
}

func spanOf(node ast.Node) ast.Span {
	if node == nil {
		return ast.Span{}
	}
	return node.Span()
}
