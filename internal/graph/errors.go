package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/hostplan/hostplan/internal/globalid"
	"github.com/hostplan/hostplan/internal/middleware"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/node"
	"github.com/hostplan/hostplan/internal/service"
)

// Error codes reported in the "extensions.code" entry of GraphQL errors.
const (
	CodeInvalidIdentifierFormat = "INVALID_IDENTIFIER_FORMAT"
	CodeUnknownNodeType         = "UNKNOWN_NODE_TYPE"
	CodeTypeKeyMismatch         = "TYPE_KEY_MISMATCH"
	CodeWrongNodeType           = "WRONG_NODE_TYPE"
	CodeAccountNotFound         = "ACCOUNT_NOT_FOUND"
	CodeAlreadyAtTargetPlan     = "ALREADY_AT_TARGET_PLAN"
	CodeValidation              = "VALIDATION_ERROR"
	CodeQueryTooComplex         = "QUERY_TOO_COMPLEX"
	CodeMethodNotAllowed        = "METHOD_NOT_ALLOWED"
	CodeInternal                = "INTERNAL"
)

const internalErrorMessage = "internal server error"

// Error is a client-facing GraphQL error carrying a code.
// graphql-go copies Extensions into the formatted error.
type Error struct {
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

// Extensions implements gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

var errorCodes = []struct {
	target error
	code   string
}{
	{globalid.ErrInvalidFormat, CodeInvalidIdentifierFormat},
	{node.ErrUnknownNodeType, CodeUnknownNodeType},
	{node.ErrTypeKeyMismatch, CodeTypeKeyMismatch},
	{service.ErrWrongNodeType, CodeWrongNodeType},
	{service.ErrAccountNotFound, CodeAccountNotFound},
	{model.ErrAlreadyAtTargetPlan, CodeAlreadyAtTargetPlan},
	{model.ErrValidation, CodeValidation},
}

// toGraphQLError maps domain errors to coded errors. Unrecognized errors
// are logged and replaced by a generic internal error.
func toGraphQLError(ctx context.Context, logger *slog.Logger, err error) error {
	if err == nil {
		return nil
	}

	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			return &Error{Code: ec.code, Message: err.Error(), err: err}
		}
	}

	logger.ErrorContext(ctx, "graphql resolver failed",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("error", err.Error()),
	)
	return &Error{Code: CodeInternal, Message: internalErrorMessage, err: err}
}

type originalErrorer interface {
	OriginalError() error
}

// findError digs the coded error out of the wrappers graphql-go adds
// around resolver errors.
func findError(err error) *Error {
	for depth := 0; err != nil && depth < 8; depth++ {
		switch e := err.(type) {
		case *Error:
			return e
		case *gqlerrors.Error:
			err = e.OriginalError
		case originalErrorer:
			err = e.OriginalError()
		default:
			err = errors.Unwrap(err)
		}
	}
	return nil
}

// withCodes fills in missing error codes. Errors raised from deferred
// resolvers can reach the result without their extensions.
func withCodes(errs []gqlerrors.FormattedError) {
	for i := range errs {
		if errs[i].Extensions != nil {
			continue
		}
		var formatted interface{} = errs[i]
		o, ok := formatted.(originalErrorer)
		if !ok {
			continue
		}
		if e := findError(o.OriginalError()); e != nil {
			errs[i].Extensions = e.Extensions()
		}
	}
}
