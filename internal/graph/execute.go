package graph

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"github.com/hostplan/hostplan/internal/loader"
)

// Request is a GraphQL request body.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`

	// ReadOnly rejects mutations. Set for GET requests.
	ReadOnly bool `json:"-"`
}

// Status classifies the outcome of a request.
type Status string

const (
	StatusOK       Status = "ok"
	StatusError    Status = "error"
	StatusRejected Status = "rejected"
)

// Execute parses, checks and runs a request. Rejected requests are never
// executed. A fresh loader set is attached to ctx unless one is present.
func (s *Schema) Execute(ctx context.Context, req Request) (*graphql.Result, Status) {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(req.Query),
			Name: "GraphQL request",
		}),
	})
	if err != nil {
		return &graphql.Result{Errors: gqlerrors.FormatErrors(err)}, StatusRejected
	}

	if countSelections(doc) > s.cfg.MaxSelections {
		return rejected(CodeQueryTooComplex, queryTooComplexMessage), StatusRejected
	}
	if req.ReadOnly && selectsMutation(doc, req.OperationName) {
		return rejected(CodeMethodNotAllowed, mutationOverGetMessage), StatusRejected
	}

	if v := graphql.ValidateDocument(&s.schema, doc, nil); !v.IsValid {
		return &graphql.Result{Errors: v.Errors}, StatusRejected
	}

	if _, ok := loader.FromContext(ctx); !ok {
		ctx = loader.WithLoaders(ctx, loader.New(s.store, s.cfg.Loader, s.metrics))
	}

	result := graphql.Execute(graphql.ExecuteParams{
		Schema:        s.schema,
		AST:           doc,
		OperationName: req.OperationName,
		Args:          req.Variables,
		Context:       ctx,
	})
	if result.HasErrors() {
		withCodes(result.Errors)
		return result, StatusError
	}
	return result, StatusOK
}

func rejected(code, message string) *graphql.Result {
	return &graphql.Result{Errors: []gqlerrors.FormattedError{{
		Message:    message,
		Extensions: map[string]interface{}{"code": code},
	}}}
}
