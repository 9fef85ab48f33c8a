package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hostplan/hostplan/internal/globalid"
	"github.com/hostplan/hostplan/internal/graph"
	"github.com/hostplan/hostplan/internal/loader"
	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/node"
	"github.com/hostplan/hostplan/internal/service"
	"github.com/hostplan/hostplan/internal/testutil"
)

type graphqlFixture struct {
	handler  *GraphQLHandler
	mem      *testutil.MemoryStore
	recorder *metrics.InMemoryRecorder
	account  *model.Account
}

func newGraphQLFixture(t *testing.T) *graphqlFixture {
	t.Helper()
	mem := testutil.NewMemoryStore()
	recorder := metrics.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	account := testutil.NewTestAccount(t, "alice", model.PlanHobby)
	if err := mem.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := mem.CreateApplication(context.Background(), testutil.NewTestApplication(t, account.ID)); err != nil {
			t.Fatalf("seed application: %v", err)
		}
	}
	mem.ResetCalls()

	schema, err := graph.NewSchema(mem, service.NewAccountService(mem, nil, recorder), graph.Config{}, recorder, logger)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	return &graphqlFixture{
		handler:  NewGraphQLHandler(schema, mem, loader.Config{}, recorder, logger),
		mem:      mem,
		recorder: recorder,
		account:  account,
	}
}

type graphqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (f *graphqlFixture) post(t *testing.T, body string) (*httptest.ResponseRecorder, graphqlResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.serve(t, req)
}

func (f *graphqlFixture) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, graphqlResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var resp graphqlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestGraphQL_PostQuery(t *testing.T) {
	f := newGraphQLFixture(t)

	rec, resp := f.post(t, `{"query":"{ listAccounts { username applications { id } } }"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", resp.Errors)
	}

	var accounts []struct {
		Username     string
		Applications []struct{ ID string }
	}
	if err := json.Unmarshal(resp.Data["listAccounts"], &accounts); err != nil {
		t.Fatalf("decode listAccounts: %v", err)
	}
	if len(accounts) != 1 || len(accounts[0].Applications) != 2 {
		t.Errorf("unexpected accounts: %+v", accounts)
	}

	snap := f.recorder.Snapshot()
	if snap.GraphQLRequests["ok"] != 1 {
		t.Errorf("ok requests = %d, want 1", snap.GraphQLRequests["ok"])
	}
	if snap.LoaderBatches["applications_by_owner"] != 1 {
		t.Errorf("applications_by_owner batches = %d, want 1", snap.LoaderBatches["applications_by_owner"])
	}
}

func TestGraphQL_PostMutationWithVariables(t *testing.T) {
	f := newGraphQLFixture(t)

	body, _ := json.Marshal(graph.Request{
		Query:     `mutation Up($id: ID!) { upgradeAccount(accountId: $id) { ok account { plan } } }`,
		Variables: map[string]interface{}{"id": globalid.Encode(node.AccountTypeName, f.account.ID)},
	})

	rec, resp := f.post(t, string(body))
	if rec.Code != http.StatusOK || len(resp.Errors) != 0 {
		t.Fatalf("status = %d, errors = %+v", rec.Code, resp.Errors)
	}
	if f.mem.Account(f.account.ID).Plan != model.PlanPro {
		t.Error("plan not upgraded")
	}
}

func TestGraphQL_Get(t *testing.T) {
	f := newGraphQLFixture(t)

	q := url.Values{}
	q.Set("query", `query($id: ID!) { node(id: $id) { ... on AccountNode { username } } }`)
	q.Set("variables", `{"id":"`+globalid.Encode(node.AccountTypeName, f.account.ID)+`"}`)

	rec, resp := f.serve(t, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	if rec.Code != http.StatusOK || len(resp.Errors) != 0 {
		t.Fatalf("status = %d, errors = %+v", rec.Code, resp.Errors)
	}
	if !bytes.Contains(resp.Data["node"], []byte(`"alice"`)) {
		t.Errorf("unexpected node: %s", resp.Data["node"])
	}
}

func TestGraphQL_GetRejectsMutation(t *testing.T) {
	f := newGraphQLFixture(t)

	q := url.Values{}
	q.Set("query", `mutation { upgradeAccount(accountId: "`+globalid.Encode(node.AccountTypeName, f.account.ID)+`") { ok } }`)

	rec, resp := f.serve(t, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Extensions["code"] != graph.CodeMethodNotAllowed {
		t.Errorf("unexpected errors: %+v", resp.Errors)
	}
	if f.mem.Account(f.account.ID).Plan != model.PlanHobby {
		t.Error("mutation executed over GET")
	}
}

func TestGraphQL_ExecutionErrorsAreOK(t *testing.T) {
	f := newGraphQLFixture(t)

	rec, resp := f.post(t, `{"query":"{ node(id: \"garbage!!\") { id } }"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Extensions["code"] != graph.CodeInvalidIdentifierFormat {
		t.Errorf("unexpected errors: %+v", resp.Errors)
	}
	if f.recorder.Snapshot().GraphQLRequests["error"] != 1 {
		t.Error("error request not counted")
	}
}

func TestGraphQL_TooComplex(t *testing.T) {
	f := newGraphQLFixture(t)

	var fields []string
	for i := 0; i < 11; i++ {
		fields = append(fields, "f"+string(rune('a'+i))+": listAccounts { id }")
	}
	body, _ := json.Marshal(graph.Request{Query: "{ " + strings.Join(fields, " ") + " }"})

	rec, resp := f.post(t, string(body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "query too complex: too many fields requested" {
		t.Errorf("unexpected errors: %+v", resp.Errors)
	}
	if f.mem.CallCount("ListAccounts") != 0 {
		t.Error("rejected query reached the store")
	}
	if f.recorder.Snapshot().GraphQLRequests["rejected"] != 1 {
		t.Error("rejected request not counted")
	}
}

func TestGraphQL_BadRequests(t *testing.T) {
	f := newGraphQLFixture(t)

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
	}{
		{"empty body", http.MethodPost, "/graphql", "application/json", ``},
		{"not json", http.MethodPost, "/graphql", "application/json", `query=1`},
		{"missing query", http.MethodPost, "/graphql", "application/json", `{"variables":{}}`},
		{"wrong content type", http.MethodPost, "/graphql", "text/plain", `{"query":"{ listAccounts { id } }"}`},
		{"get without query", http.MethodGet, "/graphql", "", ``},
		{"get bad variables", http.MethodGet, "/graphql?query=%7B+listAccounts+%7B+id+%7D+%7D&variables=nope", "", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec, resp := f.serve(t, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(resp.Errors) != 1 || resp.Errors[0].Extensions["code"] != "BAD_REQUEST" {
				t.Errorf("unexpected errors: %+v", resp.Errors)
			}
		})
	}
}

func TestGraphQL_LoadersArePerRequest(t *testing.T) {
	f := newGraphQLFixture(t)

	query := `{"query":"{ listApplications { owner { username } } }"}`
	for i := 0; i < 2; i++ {
		if rec, resp := f.post(t, query); rec.Code != http.StatusOK || len(resp.Errors) != 0 {
			t.Fatalf("request %d: status = %d, errors = %+v", i, rec.Code, resp.Errors)
		}
	}

	// One owner fetch per request, never served from a previous request.
	if n := f.mem.CallCount("GetAccountsByIDs"); n != 2 {
		t.Errorf("GetAccountsByIDs calls = %d, want 2", n)
	}
}
