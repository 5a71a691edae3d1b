package middleware

import "net/http"

// Stage processes a request and calls next.
type Stage func(next http.Handler) http.Handler

// Chain lists stages outermost first.
type Chain []Stage

func NewChain(stages ...Stage) Chain {
	return Chain(stages)
}

// Then wraps h so that a request passes the stages in list order before reaching h.
func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}
