package corsica

import "slices"

// An AllowOrigin is the origin policy of a resource: one of [Wildcard],
// [SingleOrigin], or [OriginSet]. A nil AllowOrigin disables CORS
// processing for the resource altogether: no access-control headers are
// then ever emitted, regardless of the request's Origin header.
//
// AllowOrigin is a sealed interface; the three constructors above are
// its only implementations.
type AllowOrigin interface {
	allowOrigin()
}

// Wildcard returns the origin policy that allows access from all origins.
// Under it, responses to requests that carry an Origin header bear
//
//	Access-Control-Allow-Origin: *
func Wildcard() AllowOrigin {
	return wildcardPolicy{}
}

type wildcardPolicy struct{}

func (wildcardPolicy) allowOrigin() {}

// SingleOrigin returns the origin policy that allows access from origin
// and no other. Under it, responses to requests whose Origin header is
// exactly origin bear
//
//	Access-Control-Allow-Origin: <origin>
//
// and responses to all other requests bear no access-control headers.
//
// origin must be a valid ASCII serialized origin
// (e.g. "https://example.com"); see the package documentation for the
// accepted forms.
func SingleOrigin(origin string) AllowOrigin {
	return singleOriginPolicy(origin)
}

type singleOriginPolicy string

func (singleOriginPolicy) allowOrigin() {}

// OriginSet returns the origin policy that allows access from any of
// origins and no other. Under it, responses to requests whose Origin
// header is a member of the set echo that member in their
// Access-Control-Allow-Origin header; responses to all other requests
// bear no access-control headers.
//
// Membership is tested by exact string comparison. Each element of
// origins must be a valid ASCII serialized origin; at least one element
// is required. Duplicate elements are tolerated.
func OriginSet(origins ...string) AllowOrigin {
	return originSetPolicy(slices.Clone(origins))
}

type originSetPolicy []string

func (originSetPolicy) allowOrigin() {}

// A Config configures a [Policy] or a [Middleware].
//
// Its sole field is the resource's origin policy; see [AllowOrigin].
// The zero value is a valid Config under which CORS is disabled.
type Config struct {
	// Precludes comparability, unkeyed struct literals, and conversion to
	// and from third-party types.
	_ [0]func()

	AllowOrigin AllowOrigin
}
