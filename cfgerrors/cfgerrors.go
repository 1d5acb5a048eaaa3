/*
Package cfgerrors provides functionalities for programmatically handling
configuration errors produced by package [github.com/corsica/corsica].

Most users of package [github.com/corsica/corsica] have no use for this
package. However, systems that let their operators or tenants configure
origin policies (e.g. via some Web portal, a policy file, or a
command-line interface) may find it useful: it allows such systems to
surface policy-configuration mistakes via custom, human-friendly error
messages rather than a single opaque string.
*/
package cfgerrors

import (
	"fmt"
	"iter"
)

// An UnacceptableOriginError indicates an unacceptable origin in a
// [github.com/corsica/corsica.SingleOrigin] or
// [github.com/corsica/corsica.OriginSet] policy.
// The Reason field may take one of two values:
//   - "invalid": the origin is not a valid ASCII serialized origin;
//   - "prohibited": the origin is well-formed but prohibited by this
//     library (the null origin, an origin that spells out a default
//     port, or the wildcard character in place of an origin).
type UnacceptableOriginError struct {
	Value  string // the unacceptable value that was specified
	Reason string // invalid | prohibited
}

func (err *UnacceptableOriginError) Error() string {
	const tmpl = "corsica: %s origin %q"
	return fmt.Sprintf(tmpl, err.Reason, err.Value)
}

// An EmptyOriginSetError indicates an
// [github.com/corsica/corsica.OriginSet] policy that contains no origin
// at all. To disable CORS for a resource, leave its
// [github.com/corsica/corsica.Config.AllowOrigin] field nil instead.
type EmptyOriginSetError struct{}

func (*EmptyOriginSetError) Error() string {
	return "corsica: an origin set must contain at least one origin"
}

// All returns an iterator over the policy-configuration errors contained
// in err's error tree. The order is unspecified and may change from one
// release to the next. All only supports error values returned by
// [github.com/corsica/corsica.NewPolicy],
// [github.com/corsica/corsica.NewMiddleware], and
// [github.com/corsica/corsica.Middleware.Reconfigure]; it should not be
// called on any other error value.
func All(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		every(err, yield)
	}
}

func every(err error, f func(error) bool) bool {
	switch err := err.(type) {
	// Note that there's no need for any "interface { Unwrap() error }"
	// case because nowhere do we "wrap" errors; we only ever "join" them.
	case interface{ Unwrap() []error }:
		for _, err := range err.Unwrap() {
			if !every(err, f) {
				return false
			}
		}
		return true
	default:
		return f(err)
	}
}
