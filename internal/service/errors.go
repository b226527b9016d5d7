package service

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/filter/text"
	"github.com/atlekbai/casewatch/internal/query"
	"github.com/atlekbai/casewatch/internal/schema"
)

// errBadRequest marks a request body that does not decode.
var errBadRequest = errors.New("bad request")

// connectError maps domain errors onto connect codes: caller mistakes are
// InvalidArgument, unknown objects NotFound, everything else Internal.
func connectError(err error) *connect.Error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, schema.ErrUnknownObject):
		return connect.NewError(connect.CodeNotFound, err)
	case filter.IsClientError(err),
		errors.Is(err, schema.ErrUnknownField),
		errors.Is(err, schema.ErrTypeMismatch),
		errors.Is(err, query.ErrInvalidParam),
		errors.Is(err, text.ErrSyntax),
		errors.Is(err, errBadRequest):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func internalError(op string, err error) *connect.Error {
	return connectError(fmt.Errorf("%s: %w", op, err))
}
