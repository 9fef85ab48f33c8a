package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/hostplan/hostplan/internal/graph"
	"github.com/hostplan/hostplan/internal/loader"
	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/middleware"
	"github.com/hostplan/hostplan/internal/store"
)

// Executor runs GraphQL requests.
type Executor interface {
	Execute(ctx context.Context, req graph.Request) (*graphql.Result, graph.Status)
}

// GraphQLHandler serves the GraphQL endpoint.
type GraphQLHandler struct {
	executor  Executor
	store     store.Store
	loaderCfg loader.Config
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewGraphQLHandler creates a new GraphQLHandler. Every request gets its
// own loader set over st.
func NewGraphQLHandler(executor Executor, st store.Store, loaderCfg loader.Config, recorder metrics.Recorder, logger *slog.Logger) *GraphQLHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphQLHandler{
		executor:  executor,
		store:     st,
		loaderCfg: loaderCfg,
		metrics:   recorder,
		logger:    logger,
	}
}

var errMissingQuery = errors.New("must provide query string")

// ServeHTTP handles GET and POST requests.
//
// GET /graphql?query=...&operationName=...&variables=...
// POST /graphql
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := h.parseRequest(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
		} else {
			middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		}
		h.metrics.IncGraphQLRequest(string(graph.StatusRejected))
		return
	}

	ctx := loader.WithLoaders(r.Context(), loader.New(h.store, h.loaderCfg, h.metrics))
	result, status := h.executor.Execute(ctx, req)

	elapsed := time.Since(start)
	h.metrics.IncGraphQLRequest(string(status))
	h.metrics.ObserveGraphQLDuration(elapsed)

	h.logger.LogAttrs(r.Context(), slog.LevelDebug, "graphql request",
		middleware.RequestIDAttr(r.Context()),
		slog.String("operation", req.OperationName),
		slog.String("status", string(status)),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", elapsed),
	)

	code := http.StatusOK
	if status == graph.StatusRejected {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, result)
}

func (h *GraphQLHandler) parseRequest(r *http.Request) (graph.Request, error) {
	var req graph.Request

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		req.ReadOnly = true
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, errors.New("variables must be a JSON object")
			}
		}

	case http.MethodPost:
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				return req, errors.New("content type must be application/json")
			}
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return req, err
			}
			return req, errors.New("request body must be a JSON object")
		}

	default:
		return req, errors.New("method not allowed")
	}

	if req.Query == "" {
		return req, errMissingQuery
	}
	return req, nil
}
