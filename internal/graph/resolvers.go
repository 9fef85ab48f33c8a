package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/hostplan/hostplan/internal/model"
)

type fieldFactory func(s *Schema) *graphql.Field

// Root operation tables. Legacy names from the first API version map to
// the same resolvers.
var (
	queryTable = map[string]fieldFactory{
		"listAccounts":     (*Schema).listAccountsField,
		"listApplications": (*Schema).listApplicationsField,
		"node":             (*Schema).nodeField,
		"allUsers":         deprecated((*Schema).listAccountsField, "Use listAccounts."),
		"allApps":          deprecated((*Schema).listApplicationsField, "Use listApplications."),
	}

	mutationTable = map[string]fieldFactory{
		"upgradeAccount": func(s *Schema) *graphql.Field {
			return s.transitionField("UpgradeAccountPayload", model.TransitionUpgrade)
		},
		"downgradeAccount": func(s *Schema) *graphql.Field {
			return s.transitionField("DowngradeAccountPayload", model.TransitionDowngrade)
		},
	}
)

func deprecated(build fieldFactory, reason string) fieldFactory {
	return func(s *Schema) *graphql.Field {
		f := build(s)
		f.DeprecationReason = reason
		return f
	}
}

func (s *Schema) listAccountsField() *graphql.Field {
	return &graphql.Field{
		Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(s.accountType))),
		Description: "All accounts.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			accounts, err := s.store.ListAccounts(p.Context)
			if err != nil {
				return nil, s.fail(p.Context, err)
			}
			return accounts, nil
		},
	}
}

func (s *Schema) listApplicationsField() *graphql.Field {
	return &graphql.Field{
		Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(s.applicationType))),
		Description: "All applications.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			apps, err := s.store.ListApplications(p.Context)
			if err != nil {
				return nil, s.fail(p.Context, err)
			}
			return apps, nil
		},
	}
}

func (s *Schema) nodeField() *graphql.Field {
	return &graphql.Field{
		Type:        s.nodeInterface,
		Description: "Fetches an object by its global identifier.",
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, _ := p.Args["id"].(string)
			thunk, err := s.nodes.Load(p.Context, id)
			if err != nil {
				return nil, s.fail(p.Context, err)
			}
			return func() (interface{}, error) {
				n, err := thunk()
				if err != nil {
					return nil, s.fail(p.Context, err)
				}
				if n == nil {
					return nil, nil
				}
				return n, nil
			}, nil
		},
	}
}

func (s *Schema) resolveApplications(p graphql.ResolveParams) (interface{}, error) {
	account, ok := p.Source.(*model.Account)
	if !ok {
		return nil, fmt.Errorf("unexpected account source %T", p.Source)
	}
	l, err := s.requestLoaders(p.Context)
	if err != nil {
		return nil, err
	}

	thunk := l.ApplicationsByOwner.Load(p.Context, account.ID)
	return func() (interface{}, error) {
		apps, err := thunk()
		if err != nil {
			return nil, s.fail(p.Context, err)
		}
		return apps, nil
	}, nil
}

func (s *Schema) resolveOwner(p graphql.ResolveParams) (interface{}, error) {
	app, ok := p.Source.(*model.Application)
	if !ok {
		return nil, fmt.Errorf("unexpected application source %T", p.Source)
	}
	l, err := s.requestLoaders(p.Context)
	if err != nil {
		return nil, err
	}

	thunk := l.AccountByID.Load(p.Context, app.OwnerID)
	return func() (interface{}, error) {
		owner, err := thunk()
		if err != nil {
			return nil, s.fail(p.Context, err)
		}
		if owner == nil {
			return nil, nil
		}
		return owner, nil
	}, nil
}

type transitionPayload struct {
	Account *model.Account
	OK      bool
}

func (s *Schema) transitionField(payloadName string, t model.Transition) *graphql.Field {
	payload := graphql.NewObject(graphql.ObjectConfig{
		Name: payloadName,
		Fields: graphql.Fields{
			"account": &graphql.Field{
				Type: s.accountType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*transitionPayload).Account, nil
				},
			},
			"ok": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*transitionPayload).OK, nil
				},
			},
		},
	})

	apply := s.accounts.Upgrade
	if t == model.TransitionDowngrade {
		apply = s.accounts.Downgrade
	}

	return &graphql.Field{
		Type:        payload,
		Description: fmt.Sprintf("Applies the %s plan transition to an account.", t),
		Args: graphql.FieldConfigArgument{
			"accountId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, _ := p.Args["accountId"].(string)
			account, err := apply(p.Context, id)
			if err != nil {
				return nil, s.fail(p.Context, err)
			}
			return &transitionPayload{Account: account, OK: true}, nil
		},
	}
}
