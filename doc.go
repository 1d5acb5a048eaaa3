/*
Package corsica provides an origin-policy evaluator and [net/http]
middleware for [Cross-Origin Resource Sharing (CORS)].

A resource's origin policy is expressed as an [AllowOrigin] value,
which takes one of four shapes:

  - a nil AllowOrigin: CORS is disabled for the resource;
  - [Wildcard]: access is allowed from all origins;
  - [SingleOrigin]: access is allowed from exactly one origin;
  - [OriginSet]: access is allowed from any origin in a fixed set.

The policy is validated and compiled once, at resource-definition time,
into an immutable [Policy]; each incoming request's Origin header is then
checked against it by [Policy.Evaluate], a pure function that either
yields the Access-Control-Allow-Origin header to add to the response or
yields nothing at all. In particular, no access-control headers are ever
emitted for requests that carry no Origin header, and a request from an
origin outside the configured set is silently served without them; the
evaluator has no error path.

Origins listed in a policy are matched against the request's Origin
header by exact string comparison: no case folding takes place, and a
listed origin never encompasses other origins (for subdomain or port
patterns, you need a more general CORS library). Listed origins must be
specified in [ASCII serialized form]; Unicode is prohibited, and so are
the [null origin] and default ports (80 for http, 443 for https).

[*Middleware.Wrap] applies a policy to a [http.Handler]; middleware can
be live-reconfigured via [*Middleware.Reconfigure], which package
[github.com/corsica/corsica/policyfile] builds upon for file-based policy
configuration with hot reload.

Note that this package deliberately implements no CORS-preflight
handling, no credentialed-request support, and no
Access-Control-Allow-Methods/-Headers negotiation.

[ASCII serialized form]: https://html.spec.whatwg.org/multipage/browsers.html#ascii-serialisation-of-an-origin
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
[null origin]: https://fetch.spec.whatwg.org/#append-a-request-origin-header
*/
package corsica
