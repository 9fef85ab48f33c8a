// Package node resolves opaque global identifiers to records.
package node

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hostplan/hostplan/internal/globalid"
	"github.com/hostplan/hostplan/internal/loader"
	"github.com/hostplan/hostplan/internal/model"
)

// Canonical GraphQL type names of node types.
const (
	AccountTypeName     = "AccountNode"
	ApplicationTypeName = "ApplicationNode"
)

// Type names issued by earlier versions of the API. Identifiers carrying
// them still resolve.
const (
	legacyAccountTypeName     = "UserNode"
	legacyApplicationTypeName = "DeployedAppNode"
)

var (
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrTypeKeyMismatch = errors.New("identifier key does not match node type")
	ErrNoLoaders       = errors.New("no loaders in context")
)

// Thunk yields a resolved node. A nil node with a nil error means the
// record does not exist.
type Thunk func() (model.Node, error)

// Type describes one resolvable node type.
type Type struct {
	Name   string
	Prefix string
	Kind   model.NodeKind

	load func(ctx context.Context, l *loader.Loaders, key string) Thunk
}

// Registry maps type names to node types. It is read-only after construction.
type Registry struct {
	byName map[string]*Type
	byKind map[model.NodeKind]*Type
}

// NewRegistry returns the registry of account and application nodes.
func NewRegistry() *Registry {
	account := &Type{
		Name:   AccountTypeName,
		Prefix: model.AccountKeyPrefix,
		Kind:   model.KindAccount,
		load: func(ctx context.Context, l *loader.Loaders, key string) Thunk {
			thunk := l.AccountByID.Load(ctx, key)
			return func() (model.Node, error) {
				a, err := thunk()
				if err != nil || a == nil {
					return nil, err
				}
				return a, nil
			}
		},
	}
	application := &Type{
		Name:   ApplicationTypeName,
		Prefix: model.ApplicationKeyPrefix,
		Kind:   model.KindApplication,
		load: func(ctx context.Context, l *loader.Loaders, key string) Thunk {
			thunk := l.ApplicationByID.Load(ctx, key)
			return func() (model.Node, error) {
				a, err := thunk()
				if err != nil || a == nil {
					return nil, err
				}
				return a, nil
			}
		},
	}

	return &Registry{
		byName: map[string]*Type{
			AccountTypeName:           account,
			ApplicationTypeName:       application,
			legacyAccountTypeName:     account,
			legacyApplicationTypeName: application,
		},
		byKind: map[model.NodeKind]*Type{
			model.KindAccount:     account,
			model.KindApplication: application,
		},
	}
}

// Lookup returns the node type registered under typeName.
func (r *Registry) Lookup(typeName string) (*Type, bool) {
	t, ok := r.byName[typeName]
	return t, ok
}

// Parse decodes id and checks it against the registry.
func (r *Registry) Parse(id string) (*Type, string, error) {
	typeName, key, err := globalid.Decode(id)
	if err != nil {
		return nil, "", err
	}

	t, ok := r.Lookup(typeName)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownNodeType, typeName)
	}
	if !strings.HasPrefix(key, t.Prefix) {
		return nil, "", fmt.Errorf("%w: %s key %q", ErrTypeKeyMismatch, t.Name, key)
	}

	return t, key, nil
}

// Load validates id and enqueues its record on the request loaders.
// Identifier errors are returned immediately; store errors surface from the
// returned Thunk.
func (r *Registry) Load(ctx context.Context, id string) (Thunk, error) {
	t, key, err := r.Parse(id)
	if err != nil {
		return nil, err
	}

	l, ok := loader.FromContext(ctx)
	if !ok {
		return nil, ErrNoLoaders
	}
	return t.load(ctx, l, key), nil
}

// Resolve returns the record behind id, or nil when it does not exist.
func (r *Registry) Resolve(ctx context.Context, id string) (model.Node, error) {
	thunk, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return thunk()
}

// GlobalID returns the opaque identifier of n under its canonical type name.
func (r *Registry) GlobalID(n model.Node) string {
	t, ok := r.byKind[n.NodeKind()]
	if !ok {
		return ""
	}
	return globalid.Encode(t.Name, n.NodeKey())
}
