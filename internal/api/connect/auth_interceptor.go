package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"

	"github.com/osa030/cornerpocket/internal/api/player/v1/playerv1connect"
)

const (
	// ControlTokenHeader is the header name for the control token.
	ControlTokenHeader = "X-Control-Token"
)

// NewControlAuthInterceptor creates an interceptor that requires the control
// token on mutating PlayerService calls. An empty token disables the check.
func NewControlAuthInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token == "" || !playerv1connect.IsMutating(req.Spec().Procedure) {
				return next(ctx, req)
			}

			got := req.Header().Get(ControlTokenHeader)
			if got == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return nil, connect.NewError(connect.CodePermissionDenied, nil)
			}

			return next(ctx, req)
		}
	}
}

// NewControlTokenClientInterceptor attaches the control token to outgoing calls.
func NewControlTokenClientInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" && req.Spec().IsClient {
				req.Header().Set(ControlTokenHeader, token)
			}
			return next(ctx, req)
		}
	}
}
