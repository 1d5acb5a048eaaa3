package corsica

import (
	"errors"

	"github.com/corsica/corsica/cfgerrors"
	"github.com/corsica/corsica/internal/headers"
	"github.com/corsica/corsica/internal/origins"
)

// NewPolicy validates cfg and compiles it into an immutable [Policy].
// If cfg is invalid, it returns a nil [*Policy] and some non-nil error.
// A nil cfg yields a nil Policy, under which nothing is allowed.
//
// Mutating cfg after NewPolicy has returned does not alter the resulting
// Policy's behavior.
//
// If you need to programmatically handle the configuration errors
// constitutive of the resulting error, rely on package
// [github.com/corsica/corsica/cfgerrors].
func NewPolicy(cfg *Config) (*Policy, error) {
	return newPolicy(cfg)
}

func newPolicy(cfg *Config) (*Policy, error) {
	if cfg == nil {
		return nil, nil
	}
	var p Policy
	// Accumulate errors in a slice so as to call errors.Join at most once.
	var errs []error
	switch ao := cfg.AllowOrigin.(type) {
	case nil:
		p.kind = kindNoPolicy
	case wildcardPolicy:
		p.kind = kindWildcard
	case singleOriginPolicy:
		errs = validateOrigin(errs, string(ao))
		p.kind = kindSingleOrigin
		p.single = string(ao)
	case originSetPolicy:
		if len(ao) == 0 {
			errs = append(errs, new(cfgerrors.EmptyOriginSetError))
			break
		}
		for _, raw := range ao {
			errs = validateOrigin(errs, raw)
			p.set.Add(raw)
		}
		p.kind = kindOriginSet
	default:
		// AllowOrigin is sealed; this case only exists to make the
		// compiler happy.
		panic("corsica: unknown AllowOrigin implementation")
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &p, nil
}

func validateOrigin(errs []error, raw string) []error {
	if raw == headers.ValueWildcard {
		// The wildcard is not an origin; it only makes sense as a policy
		// of its own (see Wildcard).
		err := &cfgerrors.UnacceptableOriginError{
			Value:  raw,
			Reason: "prohibited",
		}
		return append(errs, err)
	}
	if err := origins.Validate(raw); err != nil {
		return append(errs, err)
	}
	return errs
}

// allowOrigin reconstructs the [AllowOrigin] value that p was compiled
// from. The origins of an origin set come back in lexicographical order.
func (p *Policy) allowOrigin() AllowOrigin {
	switch p.kind {
	case kindNoPolicy:
		return nil
	case kindWildcard:
		return Wildcard()
	case kindSingleOrigin:
		return SingleOrigin(p.single)
	case kindOriginSet:
		return OriginSet(p.set.ToSlice()...)
	default:
		panic("corsica: unknown policy kind")
	}
}
