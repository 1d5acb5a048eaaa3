package corsica_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const (
	headerOrigin = "Origin"
	headerACAO   = "Access-Control-Allow-Origin"
	headerVary   = "Vary"

	wildcard = "*"
)

// Headers represent a set of HTTP-header name-value pairs
// in which there are no duplicate names.
type Headers = map[string]string

func newRequest(method string, headers Headers) *http.Request {
	const dummyEndpoint = "https://example.com/whatever"
	req := httptest.NewRequest(method, dummyEndpoint, nil)
	for name, value := range headers {
		req.Header.Add(name, value)
	}
	return req
}

type spyHandler struct {
	called atomic.Bool
	body   string
}

func (s *spyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	s.called.Store(true)
	w.WriteHeader(http.StatusOK)
	if len(s.body) > 0 {
		io.WriteString(w, s.body)
	}
}

// assertHeader checks that hdrs associates name to exactly value.
func assertHeader(t *testing.T, hdrs http.Header, name, value string) {
	t.Helper()
	vs := hdrs.Values(name)
	if len(vs) != 1 || vs[0] != value {
		t.Errorf("got %s header values %q; want exactly %q", name, vs, value)
	}
}

// assertNoHeader checks that the name key is absent from hdrs,
// as opposed to merely present with an empty value.
func assertNoHeader(t *testing.T, hdrs http.Header, name string) {
	t.Helper()
	if vs, found := hdrs[http.CanonicalHeaderKey(name)]; found {
		t.Errorf("got %s header values %q; want none", name, vs)
	}
}
