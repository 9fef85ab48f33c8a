// Package graph exposes accounts and applications over GraphQL.
package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/hostplan/hostplan/internal/loader"
	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/node"
	"github.com/hostplan/hostplan/internal/service"
	"github.com/hostplan/hostplan/internal/store"
)

// Config holds execution limits and the batch window of request loaders.
type Config struct {
	MaxSelections int
	Loader        loader.Config
}

// Schema is the executable GraphQL schema together with its dependencies.
type Schema struct {
	schema   graphql.Schema
	store    store.Store
	accounts *service.AccountService
	nodes    *node.Registry
	cfg      Config
	metrics  metrics.Recorder
	logger   *slog.Logger

	nodeInterface   *graphql.Interface
	planEnum        *graphql.Enum
	accountType     *graphql.Object
	applicationType *graphql.Object
}

// NewSchema builds the schema from the operation tables.
func NewSchema(st store.Store, accounts *service.AccountService, cfg Config, recorder metrics.Recorder, logger *slog.Logger) (*Schema, error) {
	if cfg.MaxSelections <= 0 {
		cfg.MaxSelections = DefaultMaxSelections
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Schema{
		store:    st,
		accounts: accounts,
		nodes:    node.NewRegistry(),
		cfg:      cfg,
		metrics:  recorder,
		logger:   logger,
	}
	s.buildTypes()

	query := graphql.Fields{}
	for name, build := range queryTable {
		query[name] = build(s)
	}
	mutation := graphql.Fields{}
	for name, build := range mutationTable {
		mutation[name] = build(s)
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: query}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutation}),
		Types:    []graphql.Type{s.accountType, s.applicationType},
	})
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	s.schema = schema

	return s, nil
}

func (s *Schema) buildTypes() {
	s.nodeInterface = graphql.NewInterface(graphql.InterfaceConfig{
		Name:        "Node",
		Description: "An object with a global identifier.",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			switch p.Value.(type) {
			case *model.Account:
				return s.accountType
			case *model.Application:
				return s.applicationType
			}
			return nil
		},
	})

	s.planEnum = graphql.NewEnum(graphql.EnumConfig{
		Name: "Plan",
		Values: graphql.EnumValueConfigMap{
			string(model.PlanHobby): &graphql.EnumValueConfig{Value: model.PlanHobby},
			string(model.PlanPro):   &graphql.EnumValueConfig{Value: model.PlanPro},
		},
	})

	s.accountType = graphql.NewObject(graphql.ObjectConfig{
		Name:       node.AccountTypeName,
		Interfaces: []*graphql.Interface{s.nodeInterface},
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        s.idField(),
				"username":  accountField(graphql.NewNonNull(graphql.String), func(a *model.Account) interface{} { return a.Username }),
				"plan":      accountField(graphql.NewNonNull(s.planEnum), func(a *model.Account) interface{} { return a.Plan }),
				"createdAt": accountField(graphql.NewNonNull(graphql.DateTime), func(a *model.Account) interface{} { return a.CreatedAt }),
				"updatedAt": accountField(graphql.NewNonNull(graphql.DateTime), func(a *model.Account) interface{} { return a.UpdatedAt }),
				"applications": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(s.applicationType))),
					Resolve: s.resolveApplications,
				},
			}
		}),
	})

	s.applicationType = graphql.NewObject(graphql.ObjectConfig{
		Name:       node.ApplicationTypeName,
		Interfaces: []*graphql.Interface{s.nodeInterface},
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        s.idField(),
				"active":    applicationField(graphql.NewNonNull(graphql.Boolean), func(a *model.Application) interface{} { return a.Active }),
				"createdAt": applicationField(graphql.NewNonNull(graphql.DateTime), func(a *model.Application) interface{} { return a.CreatedAt }),
				"updatedAt": applicationField(graphql.NewNonNull(graphql.DateTime), func(a *model.Application) interface{} { return a.UpdatedAt }),
				"owner": &graphql.Field{
					Type:    graphql.NewNonNull(s.accountType),
					Resolve: s.resolveOwner,
				},
			}
		}),
	})
}

func (s *Schema) idField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.ID),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			n, ok := p.Source.(model.Node)
			if !ok {
				return nil, fmt.Errorf("unexpected node source %T", p.Source)
			}
			return s.nodes.GlobalID(n), nil
		},
	}
}

func accountField(typ graphql.Output, get func(*model.Account) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			a, ok := p.Source.(*model.Account)
			if !ok {
				return nil, fmt.Errorf("unexpected account source %T", p.Source)
			}
			return get(a), nil
		},
	}
}

func applicationField(typ graphql.Output, get func(*model.Application) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			a, ok := p.Source.(*model.Application)
			if !ok {
				return nil, fmt.Errorf("unexpected application source %T", p.Source)
			}
			return get(a), nil
		},
	}
}

// requestLoaders returns the loader set of the current request.
func (s *Schema) requestLoaders(ctx context.Context) (*loader.Loaders, error) {
	l, ok := loader.FromContext(ctx)
	if !ok {
		return nil, s.fail(ctx, node.ErrNoLoaders)
	}
	return l, nil
}

func (s *Schema) fail(ctx context.Context, err error) error {
	return toGraphQLError(ctx, s.logger, err)
}
