// Package headers centralizes the HTTP-header names and values that
// package corsica deals in.
package headers

import "net/http"

// header names in canonical format
const (
	Origin = "Origin"

	ACAO = "Access-Control-Allow-Origin"

	Vary = "Vary"
)

const ValueWildcard = "*"

// First, if k is present in hdrs, returns the first value associated to
// k in hdrs and true; otherwise, First returns "" and false.
// Precondition: k is in canonical format (see [http.CanonicalHeaderKey]).
//
// Contrary to [http.Header.Get], First allows its callers to distinguish
// an absent header from a present-but-empty one.
func First(hdrs http.Header, k string) (string, bool) {
	v, found := hdrs[k]
	if !found || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
