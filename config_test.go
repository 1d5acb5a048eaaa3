package corsica_test

import (
	"errors"
	"testing"

	"github.com/corsica/corsica"
	"github.com/corsica/corsica/cfgerrors"
)

func TestNewPolicyWithNilConfig(t *testing.T) {
	p, err := corsica.NewPolicy(nil)
	if err != nil {
		t.Fatalf("got error %v; want nil", err)
	}
	if p != nil {
		t.Fatalf("got policy %v; want nil", p)
	}
}

func TestNewPolicyValidation(t *testing.T) {
	cases := []struct {
		desc        string
		allowOrigin corsica.AllowOrigin
		wantErrs    []error // nil means the config is valid
	}{
		{
			desc:        "no policy",
			allowOrigin: nil,
		}, {
			desc:        "wildcard",
			allowOrigin: corsica.Wildcard(),
		}, {
			desc:        "valid single origin",
			allowOrigin: corsica.SingleOrigin("http://localhost"),
		}, {
			desc:        "valid single origin with port",
			allowOrigin: corsica.SingleOrigin("http://localhost:9090"),
		}, {
			desc:        "valid IPv4 origin",
			allowOrigin: corsica.SingleOrigin("http://255.0.0.0"),
		}, {
			desc:        "valid IPv6 origin",
			allowOrigin: corsica.SingleOrigin("http://[::1]:9090"),
		}, {
			desc:        "valid Punycode origin",
			allowOrigin: corsica.SingleOrigin("https://www.xn--xample-9ua.com"),
		}, {
			desc:        "valid custom-scheme origin",
			allowOrigin: corsica.SingleOrigin("connector://localhost"),
		}, {
			desc:        "valid origin set",
			allowOrigin: corsica.OriginSet("http://localhost", "https://example.com"),
		}, {
			desc:        "origin set with duplicates",
			allowOrigin: corsica.OriginSet("http://localhost", "http://localhost"),
		}, {
			desc:        "empty origin set",
			allowOrigin: corsica.OriginSet(),
			wantErrs: []error{
				new(cfgerrors.EmptyOriginSetError),
			},
		}, {
			desc:        "wildcard inside single-origin policy",
			allowOrigin: corsica.SingleOrigin("*"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "*", Reason: "prohibited"},
			},
		}, {
			desc:        "wildcard inside origin set",
			allowOrigin: corsica.OriginSet("http://localhost", "*"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "*", Reason: "prohibited"},
			},
		}, {
			desc:        "null origin",
			allowOrigin: corsica.SingleOrigin("null"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "null", Reason: "prohibited"},
			},
		}, {
			desc:        "file-scheme origin",
			allowOrigin: corsica.SingleOrigin("file:///somepath"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "file:///somepath", Reason: "prohibited"},
			},
		}, {
			desc:        "origin with default http port",
			allowOrigin: corsica.SingleOrigin("http://example.com:80"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "http://example.com:80", Reason: "prohibited"},
			},
		}, {
			desc:        "origin with default https port",
			allowOrigin: corsica.SingleOrigin("https://example.com:443"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "https://example.com:443", Reason: "prohibited"},
			},
		}, {
			desc:        "origin with port zero",
			allowOrigin: corsica.SingleOrigin("https://example.com:0"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "https://example.com:0", Reason: "invalid"},
			},
		}, {
			desc:        "origin with out-of-range port",
			allowOrigin: corsica.SingleOrigin("https://example.com:65536"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "https://example.com:65536", Reason: "invalid"},
			},
		}, {
			desc:        "origin with uppercase scheme",
			allowOrigin: corsica.SingleOrigin("HTTP://example.com"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "HTTP://example.com", Reason: "invalid"},
			},
		}, {
			desc:        "origin with Unicode host",
			allowOrigin: corsica.SingleOrigin("https://www.résumé.com"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "https://www.résumé.com", Reason: "invalid"},
			},
		}, {
			desc:        "origin with trailing path",
			allowOrigin: corsica.SingleOrigin("https://example.com/index.html"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "https://example.com/index.html", Reason: "invalid"},
			},
		}, {
			desc:        "origin with hexadecimal IPv4 host",
			allowOrigin: corsica.SingleOrigin("http://0xff000000"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "http://0xff000000", Reason: "invalid"},
			},
		}, {
			desc:        "origin with uncompressed IPv6 host",
			allowOrigin: corsica.SingleOrigin("http://[0:0:0:0:0:0:0:1]:9090"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "http://[0:0:0:0:0:0:0:1]:9090", Reason: "prohibited"},
			},
		}, {
			desc:        "origin set with multiple invalid origins",
			allowOrigin: corsica.OriginSet("null", "https://example.com/index.html"),
			wantErrs: []error{
				&cfgerrors.UnacceptableOriginError{Value: "null", Reason: "prohibited"},
				&cfgerrors.UnacceptableOriginError{Value: "https://example.com/index.html", Reason: "invalid"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			p, err := corsica.NewPolicy(&corsica.Config{AllowOrigin: tc.allowOrigin})
			if tc.wantErrs == nil {
				if err != nil {
					t.Fatalf("got error %v; want nil", err)
				}
				if p == nil {
					t.Fatal("got nil policy; want a policy")
				}
				return
			}
			if err == nil {
				t.Fatal("got nil error; want some error")
			}
			var got []error
			for e := range cfgerrors.All(err) {
				got = append(got, e)
			}
			if len(got) != len(tc.wantErrs) {
				t.Fatalf("got %d configuration error(s) (%v); want %d", len(got), err, len(tc.wantErrs))
			}
			for _, want := range tc.wantErrs {
				if !containsError(got, want) {
					t.Errorf("missing configuration error %v in %v", want, err)
				}
			}
		})
	}
}

func containsError(errs []error, want error) bool {
	for _, err := range errs {
		switch want := want.(type) {
		case *cfgerrors.UnacceptableOriginError:
			var got *cfgerrors.UnacceptableOriginError
			if errors.As(err, &got) && *got == *want {
				return true
			}
		case *cfgerrors.EmptyOriginSetError:
			var got *cfgerrors.EmptyOriginSetError
			if errors.As(err, &got) {
				return true
			}
		}
	}
	return false
}
