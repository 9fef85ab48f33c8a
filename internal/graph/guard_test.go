package graph

import (
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

func mustParse(t *testing.T, query string) *ast.Document {
	t.Helper()
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		t.Fatalf("parse %q: %v", query, err)
	}
	return doc
}

func TestCountSelections(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{`{ a b c }`, 3},
		{`{ a { b c d } }`, 1},
		{`query Q { a } mutation M { b c }`, 3},
		{`{ a } fragment F on T { x y }`, 3},
	}

	for _, tt := range tests {
		doc := mustParse(t, tt.query)
		if got := countSelections(doc); got != tt.want {
			t.Errorf("countSelections(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSelectsMutation(t *testing.T) {
	tests := []struct {
		query string
		name  string
		want  bool
	}{
		{`{ listAccounts { id } }`, "", false},
		{`mutation { upgradeAccount(accountId: "x") { ok } }`, "", true},
		{`query Q { a } mutation M { b }`, "Q", false},
		{`query Q { a } mutation M { b }`, "M", true},
	}

	for _, tt := range tests {
		if got := selectsMutation(mustParse(t, tt.query), tt.name); got != tt.want {
			t.Errorf("selectsMutation(%q, %q) = %v, want %v", tt.query, tt.name, got, tt.want)
		}
	}
}
