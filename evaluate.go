package corsica

import (
	"net/http"

	"github.com/corsica/corsica/internal/headers"
	"github.com/corsica/corsica/internal/util"
)

type kind uint8

const (
	kindNoPolicy kind = iota
	kindWildcard
	kindSingleOrigin
	kindOriginSet
)

// A Policy is the compiled, immutable form of a [Config].
// Obtain one by calling [NewPolicy].
//
// A Policy is never mutated after construction; accordingly, its
// [Policy.Evaluate] method is safe for concurrent use by any number of
// goroutines without coordination. A nil Policy allows nothing.
type Policy struct {
	kind   kind
	single string
	set    util.Set
}

// A Delta is a set of response-header additions produced by policy
// evaluation for a single request. This package only ever populates a
// Delta with the Access-Control-Allow-Origin header.
type Delta map[string]string

// Apply merges d's entries into hdrs, overwriting any existing values
// under the same keys.
func (d Delta) Apply(hdrs http.Header) {
	for name, value := range d {
		hdrs.Set(name, value)
	}
}

// Evaluate checks requestOrigin, the value of an inbound request's
// Origin header (the empty string denoting the absence of that header),
// against p and returns the response-header additions the request calls
// for. Its ok result is false when no headers are to be added.
//
// The rules, in order:
//
//  1. If the request carries no Origin header, no headers are added,
//     regardless of p: the request is same-origin or originates from a
//     non-browser client, and CORS does not apply to it.
//  2. If p is nil or was compiled from a nil [AllowOrigin], no headers
//     are added.
//  3. Under a [Wildcard] policy, Access-Control-Allow-Origin is "*".
//  4. Under a [SingleOrigin] policy, Access-Control-Allow-Origin is the
//     configured origin if requestOrigin equals it exactly; otherwise,
//     no headers are added.
//  5. Under an [OriginSet] policy, Access-Control-Allow-Origin echoes
//     requestOrigin if the latter is a member of the set; otherwise, no
//     headers are added.
//
// Evaluate is pure: it is total (every input maps to a defined output),
// it never fails, and it neither logs nor mutates p. Its cost is
// constant in the number of configured origins.
func (p *Policy) Evaluate(requestOrigin string) (delta Delta, ok bool) {
	if requestOrigin == "" {
		return nil, false
	}
	if p == nil {
		return nil, false
	}
	switch p.kind {
	case kindNoPolicy:
		return nil, false
	case kindWildcard:
		return Delta{headers.ACAO: headers.ValueWildcard}, true
	case kindSingleOrigin:
		if requestOrigin != p.single {
			return nil, false
		}
		return Delta{headers.ACAO: p.single}, true
	case kindOriginSet:
		if !p.set.Contains(requestOrigin) {
			return nil, false
		}
		return Delta{headers.ACAO: requestOrigin}, true
	default:
		panic("corsica: unknown policy kind")
	}
}

// variesByOrigin reports whether responses produced under p depend on
// the request's Origin header, in which case a Vary: Origin header is in
// order; see https://fetch.spec.whatwg.org/#cors-protocol-and-http-caches.
func (p *Policy) variesByOrigin() bool {
	return p != nil && (p.kind == kindSingleOrigin || p.kind == kindOriginSet)
}
