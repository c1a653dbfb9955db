package assets

import (
	"log/slog"
	"net/http"
)

// ResolverBuilderOption is a function that configures a Resolver during construction.
type ResolverBuilderOption func(*resolverImpl)

// WithWorkers sets the number of pool workers that fetch and decode assets.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - ResolverBuilderOption: a function that applies the worker option to a resolver
func WithWorkers(n int) ResolverBuilderOption {
	return func(r *resolverImpl) {
		r.workers = max(n, 1)
	}
}

// WithHTTPClient sets the client used for http(s) asset locations.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - ResolverBuilderOption: a function that applies the client option to a resolver
func WithHTTPClient(client *http.Client) ResolverBuilderOption {
	return func(r *resolverImpl) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLogger sets the structured logger used for load failures.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - ResolverBuilderOption: a function that applies the logger option to a resolver
func WithLogger(logger *slog.Logger) ResolverBuilderOption {
	return func(r *resolverImpl) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPoster sets how load results are handed back. The engine passes its Post method so
// completion callbacks run on the render loop. The default runs them on the worker.
//
// Parameters:
//   - post: schedules a function
//
// Returns:
//   - ResolverBuilderOption: a function that applies the poster option to a resolver
func WithPoster(post func(func())) ResolverBuilderOption {
	return func(r *resolverImpl) {
		if post != nil {
			r.post = post
		}
	}
}

// WithMaxBytes caps the encoded size of a single asset.
//
// Parameters:
//   - n: the byte limit
//
// Returns:
//   - ResolverBuilderOption: a function that applies the size limit to a resolver
func WithMaxBytes(n int64) ResolverBuilderOption {
	return func(r *resolverImpl) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithMaxDimension caps texture width and height; larger images are downscaled.
//
// Parameters:
//   - n: the maximum side length in pixels; 0 disables scaling
//
// Returns:
//   - ResolverBuilderOption: a function that applies the dimension cap to a resolver
func WithMaxDimension(n int) ResolverBuilderOption {
	return func(r *resolverImpl) {
		r.maxDim = max(n, 0)
	}
}
