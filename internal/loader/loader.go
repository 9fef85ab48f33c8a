// Package loader builds the per-request set of batch loaders.
//
// A Loaders value is created when a request starts, travels with the
// request context and is dropped when the request ends. Every resolver in
// the request shares it, so lookups from different fields coalesce into the
// same bulk fetches.
package loader

import (
	"context"
	"time"

	"github.com/hostplan/hostplan/internal/dataloader"
	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/store"
)

// Loader names used in metrics.
const (
	AccountByIDName         = "account_by_id"
	ApplicationByIDName     = "application_by_id"
	ApplicationsByOwnerName = "applications_by_owner"
)

// Config controls the batch window of every loader in the set.
type Config struct {
	Wait     time.Duration
	MaxBatch int
}

// Loaders holds one loader per lookup kind.
type Loaders struct {
	AccountByID         *dataloader.Loader[string, *model.Account]
	ApplicationByID     *dataloader.Loader[string, *model.Application]
	ApplicationsByOwner *dataloader.Loader[string, []*model.Application]
}

// New creates a fresh loader set over st.
func New(st store.Store, cfg Config, recorder metrics.Recorder) *Loaders {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return &Loaders{
		AccountByID: dataloader.New(
			dataloader.ByKey(st.GetAccountsByIDs, accountID),
			loaderConfig(cfg, AccountByIDName, recorder),
		),
		ApplicationByID: dataloader.New(
			dataloader.ByKey(st.GetApplicationsByIDs, applicationID),
			loaderConfig(cfg, ApplicationByIDName, recorder),
		),
		ApplicationsByOwner: dataloader.New(
			dataloader.Grouped(st.GetApplicationsByOwnerIDs, applicationOwner),
			loaderConfig(cfg, ApplicationsByOwnerName, recorder),
		),
	}
}

func loaderConfig(cfg Config, name string, recorder metrics.Recorder) dataloader.Config {
	return dataloader.Config{
		Wait:     cfg.Wait,
		MaxBatch: cfg.MaxBatch,
		OnDispatch: func(size int, elapsed time.Duration, err error) {
			recorder.ObserveLoaderBatch(name, size, elapsed, err != nil)
		},
	}
}

func accountID(a *model.Account) string           { return a.ID }
func applicationID(a *model.Application) string   { return a.ID }
func applicationOwner(a *model.Application) string { return a.OwnerID }

type contextKey struct{}

// WithLoaders returns a copy of ctx carrying l.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the loader set attached to ctx, if any.
func FromContext(ctx context.Context) (*Loaders, bool) {
	l, ok := ctx.Value(contextKey{}).(*Loaders)
	return l, ok
}
