package graph

import (
	"github.com/graphql-go/graphql/language/ast"
)

// DefaultMaxSelections is the default limit on top-level selections.
const DefaultMaxSelections = 10

const queryTooComplexMessage = "query too complex: too many fields requested"

// countSelections sums the top-level selections of every operation and
// fragment in doc.
func countSelections(doc *ast.Document) int {
	total := 0
	for _, def := range doc.Definitions {
		var set *ast.SelectionSet
		switch d := def.(type) {
		case *ast.OperationDefinition:
			set = d.SelectionSet
		case *ast.FragmentDefinition:
			set = d.SelectionSet
		}
		if set != nil {
			total += len(set.Selections)
		}
	}
	return total
}

const mutationOverGetMessage = "mutations are only accepted over POST"

// selectsMutation reports whether the operation chosen by operationName is
// a mutation. An empty name selects the only operation of the document.
func selectsMutation(doc *ast.Document, operationName string) bool {
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}
