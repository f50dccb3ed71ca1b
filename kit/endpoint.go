// Package kit holds the transport-agnostic plumbing shared by domfill
// surfaces: the Endpoint abstraction, middleware chaining, and request
// context accessors.
package kit

import "context"

// Endpoint is a single transport-agnostic operation. HTTP handlers and MCP
// tools both decode into a typed request and call an Endpoint.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first one listed is the outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
