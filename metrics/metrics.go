// Package metrics provides Prometheus instrumentation for CORS
// origin-policy decisions.
//
// The policy evaluator itself is a pure function and records nothing;
// instead, this package observes requests and responses from the
// outside, classifying each decision from the request's Origin header
// and the Access-Control-Allow-Origin header (if any) of the response.
package metrics

import (
	"net/http"

	"github.com/corsica/corsica/internal/headers"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of the decisions counter.
const (
	// OutcomeNonCORS: the request carried no Origin header, so CORS
	// processing did not apply.
	OutcomeNonCORS = "non_cors"
	// OutcomeWildcard: the response allowed all origins.
	OutcomeWildcard = "wildcard"
	// OutcomeAllowed: the response echoed the request's origin.
	OutcomeAllowed = "allowed"
	// OutcomeSuppressed: the request carried an Origin header but the
	// response bore no Access-Control-Allow-Origin header.
	OutcomeSuppressed = "suppressed"
)

// Decisions counts CORS origin-policy decisions by outcome.
type Decisions struct {
	total *prometheus.CounterVec
}

// NewDecisions creates a [Decisions] collector and registers it with reg.
// It panics if registration fails (e.g. on duplicate registration), in
// keeping with [prometheus.MustRegister].
func NewDecisions(reg prometheus.Registerer) *Decisions {
	d := &Decisions{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cors_decisions_total",
				Help: "Number of CORS origin-policy decisions, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	// Pre-populate the label values so that all outcomes are visible
	// from the first scrape.
	for _, outcome := range []string{
		OutcomeNonCORS, OutcomeWildcard, OutcomeAllowed, OutcomeSuppressed,
	} {
		d.total.WithLabelValues(outcome)
	}
	reg.MustRegister(d.total)
	return d
}

// Observe wraps h, typically an already CORS-wrapped handler, and
// records one decision per request served.
func (d *Decisions) Observe(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
		d.total.WithLabelValues(classify(r.Header, w.Header())).Inc()
	})
}

func classify(reqHdrs, resHdrs http.Header) string {
	if _, found := headers.First(reqHdrs, headers.Origin); !found {
		return OutcomeNonCORS
	}
	switch acao, _ := headers.First(resHdrs, headers.ACAO); acao {
	case "":
		return OutcomeSuppressed
	case headers.ValueWildcard:
		return OutcomeWildcard
	default:
		return OutcomeAllowed
	}
}
