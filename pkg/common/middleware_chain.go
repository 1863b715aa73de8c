// Package common provides shared types and utilities used across the SConvert packages.
package common

import (
	"net/http"
)

// MiddlewareChain is an ordered list of middleware. The first element is the
// outermost wrapper, so it sees the request first and the response last.
type MiddlewareChain []Middleware

// NewMiddlewareChain creates a new middleware chain
func NewMiddlewareChain(middlewares ...Middleware) MiddlewareChain {
	return middlewares
}

// Append returns a copy of the chain with middlewares added at the end.
// Nil entries are skipped so optional middleware can be passed unconditionally.
func (c MiddlewareChain) Append(middlewares ...Middleware) MiddlewareChain {
	result := make(MiddlewareChain, 0, len(c)+len(middlewares))
	result = append(result, c...)
	for _, m := range middlewares {
		if m != nil {
			result = append(result, m)
		}
	}
	return result
}

// Prepend returns a copy of the chain with middlewares added at the front.
func (c MiddlewareChain) Prepend(middlewares ...Middleware) MiddlewareChain {
	return NewMiddlewareChain().Append(middlewares...).Append(c...)
}

// Then applies the middleware chain to a handler
func (c MiddlewareChain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}

// ThenFunc is Then for a plain handler function.
func (c MiddlewareChain) ThenFunc(fn http.HandlerFunc) http.Handler {
	return c.Then(fn)
}
