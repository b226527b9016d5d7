package server

import (
	"context"
	"time"

	"buf.build/go/protovalidate"
	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"
)

// ValidationInterceptor rejects requests that fail protovalidate constraints.
func ValidationInterceptor(validator protovalidate.Validator) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if msg, ok := req.Any().(proto.Message); ok {
				if err := validator.Validate(msg); err != nil {
					return nil, connect.NewError(connect.CodeInvalidArgument, err)
				}
			}
			return next(ctx, req)
		}
	}
}

// LoggingInterceptor logs every RPC with its outcome. Client errors log at
// warn level, server errors at error level.
func LoggingInterceptor(logger zerolog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			evt := logger.Info()
			if err != nil {
				c := connect.CodeOf(err)
				code = c.String()
				if isServerCode(c) {
					evt = logger.Error().Err(err)
				} else {
					evt = logger.Warn().Err(err)
				}
			}
			evt.
				Str("procedure", req.Spec().Procedure).
				Str("protocol", req.Peer().Protocol).
				Str("code", code).
				Dur("latency", time.Since(start)).
				Msg("rpc")
			return resp, err
		}
	}
}

func isServerCode(c connect.Code) bool {
	switch c {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return true
	}
	return false
}
