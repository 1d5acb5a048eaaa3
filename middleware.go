package corsica

import (
	"net/http"
	"sync/atomic"

	"github.com/corsica/corsica/internal/headers"
)

// A Middleware applies an origin policy to the [http.Handler]s it wraps.
// Call its [*Middleware.Wrap] method to apply it to a handler.
//
// The zero value is ready to use but is a mere "passthrough" middleware,
// i.e. a middleware that simply delegates to the handler(s) it wraps.
// To obtain a functioning middleware, call [NewMiddleware] and pass it a
// valid [Config].
//
// A Middleware must not be copied after first use.
//
// Middleware are safe for concurrent use by multiple goroutines; in
// particular, you can safely reconfigure a Middleware even as it is
// processing requests.
type Middleware struct {
	policy atomic.Pointer[Policy]
}

// NewMiddleware creates a middleware that behaves in accordance with cfg.
// If cfg is invalid, it returns a nil [*Middleware] and some non-nil
// error.
//
// Mutating the fields of cfg after NewMiddleware has returned does not
// alter the resulting middleware's behavior. However, you can
// reconfigure a [Middleware] via its [*Middleware.Reconfigure] method.
//
// If you need to programmatically handle the configuration errors
// constitutive of the resulting error, rely on package
// [github.com/corsica/corsica/cfgerrors].
func NewMiddleware(cfg Config) (*Middleware, error) {
	p, err := newPolicy(&cfg)
	if err != nil {
		return nil, err
	}
	var m Middleware
	m.policy.Store(p)
	return &m, nil
}

// Reconfigure reconfigures m in accordance with cfg.
// If cfg is nil, it turns m into a passthrough middleware.
// If *cfg is invalid, it leaves m unchanged and returns some non-nil
// error. Otherwise, it successfully reconfigures m and returns a nil
// error.
//
// Mutating the fields of cfg after Reconfigure has returned does not
// alter m's behavior.
func (m *Middleware) Reconfigure(cfg *Config) error {
	p, err := newPolicy(cfg)
	if err != nil {
		return err
	}
	m.policy.Store(p)
	return nil
}

// Wrap applies the middleware to the specified handler.
//
// For each incoming request, the resulting handler evaluates m's current
// policy against the request's Origin header (if any) and merges the
// evaluation's outcome, a [Delta], into the response headers before
// delegating to h. When evaluation yields no delta, the response's
// header map is left untouched: in particular, no empty
// Access-Control-Allow-Origin header is ever emitted.
//
// Because responses produced under a [SingleOrigin] or [OriginSet]
// policy depend on the request's Origin header, the resulting handler
// also adds a Vary: Origin header in those cases.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := m.policy.Load()
		if p == nil { // passthrough middleware
			h.ServeHTTP(w, r)
			return
		}
		if p.variesByOrigin() {
			// Add rather than set, because outer middleware may have
			// already added/set a Vary header, which we wouldn't want to
			// clobber.
			w.Header().Add(headers.Vary, headers.Origin)
		}
		// Fetch-compliant browsers send at most one Origin header; see
		// https://fetch.spec.whatwg.org/#http-network-or-cache-fetch
		// (step 12).
		origin, found := headers.First(r.Header, headers.Origin)
		if found {
			if delta, ok := p.Evaluate(origin); ok {
				delta.Apply(w.Header())
			}
		}
		h.ServeHTTP(w, r)
	})
}

// Config returns a pointer to a deep copy of m's current configuration;
// if m is a passthrough middleware, it simply returns nil.
// The result may differ superficially from the [Config] with which m was
// created or last reconfigured (e.g. an origin set comes back sorted and
// deduplicated), but the following statement is guaranteed to be a no-op:
//
//	m.Reconfigure(m.Config())
//
// Mutating the fields of the result does not alter m's behavior.
func (m *Middleware) Config() *Config {
	p := m.policy.Load()
	if p == nil {
		return nil
	}
	return &Config{AllowOrigin: p.allowOrigin()}
}
