package middleware

import "github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// SubmissionMiddleware allows wrapping a SubmissionStore to add behavior.
type SubmissionMiddleware func(ports.SubmissionStore) ports.SubmissionStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
