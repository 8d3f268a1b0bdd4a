package middleware

import "github.com/aretw0/nodegraph/pkg/ports"

// Middleware allows wrapping a ThumbnailStore to add behavior.
type Middleware func(ports.ThumbnailStore) ports.ThumbnailStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.ThumbnailStore, mws ...Middleware) ports.ThumbnailStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
