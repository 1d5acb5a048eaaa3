// Package origins provides construction-time validation of Web origins.
//
// Request origins, in contrast, are never parsed: policy evaluation
// treats them as opaque strings and compares them to validated origins
// byte for byte.
package origins

import (
	"net/netip"
	"strings"
	"sync"

	"github.com/corsica/corsica/cfgerrors"
	"golang.org/x/net/idna"
)

const (
	schemeHostSep = "://" // scheme-host separator
	hostPortSep   = ':'   // host-port separator
	labelSep      = '.'   // DNS-label separator
)

const (
	// maxHostLen is the maximum length of a host, which is dominated by
	// the maximum length of an (absolute) domain name (253);
	// see https://devblogs.microsoft.com/oldnewthing/20120412-00/?p=7873.
	maxHostLen = 253
	// maxSchemeLen is the maximum tolerated length for schemes.
	// Its value is somewhat arbitrary but chosen so as to cover the great
	// majority of commonly used schemes.
	maxSchemeLen = 64
	// maxPortLen is the maximum length of a port's decimal representation.
	maxPortLen = len("65535")
	// maxOriginLen is the maximum length of a serialized origin.
	maxOriginLen = maxSchemeLen + len(schemeHostSep) + maxHostLen + 1 + maxPortLen
)

// Validate checks that raw is an acceptable [ASCII serialized origin]:
// a lowercase scheme other than file, followed by "://", followed by a
// host (a domain in ASCII form, a dotted-quad IPv4 address, or a
// bracketed IPv6 address in compressed form), optionally followed by a
// colon and a port in the 1-65535 range. Default ports (80 for http,
// 443 for https) must be elided, and the null origin is prohibited.
//
// If raw is unacceptable, Validate returns some
// [*cfgerrors.UnacceptableOriginError]; otherwise, it returns nil.
//
// [ASCII serialized origin]: https://html.spec.whatwg.org/multipage/browsers.html#ascii-serialisation-of-an-origin
func Validate(raw string) error {
	// As a defensive measure against maliciously long origins,
	// let's first check the length of raw.
	if len(raw) > maxOriginLen {
		return invalidOriginError(raw)
	}
	if raw == "null" {
		return prohibitedOriginError(raw)
	}
	scheme, rest, ok := parseScheme(raw)
	if !ok {
		return invalidOriginError(raw)
	}
	if scheme == "file" {
		return prohibitedOriginError(raw)
	}
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		return invalidOriginError(raw)
	}
	rest, err := validateHost(rest, raw)
	if err != nil {
		return err
	}
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			return invalidOriginError(raw)
		}
		var port int
		port, rest, ok = parsePort(rest)
		if !ok || rest != "" {
			return invalidOriginError(raw)
		}
		if isDefaultPortForScheme(scheme, port) {
			return prohibitedOriginError(raw)
		}
	}
	return nil
}

func invalidOriginError(origin string) error {
	return &cfgerrors.UnacceptableOriginError{
		Value:  origin,
		Reason: "invalid",
	}
}

func prohibitedOriginError(origin string) error {
	return &cfgerrors.UnacceptableOriginError{
		Value:  origin,
		Reason: "prohibited",
	}
}

// parseScheme parses a URI scheme. If successful, it returns the scheme
// and the unconsumed part of str; otherwise, its ok result is false.
func parseScheme(str string) (scheme, rest string, ok bool) {
	// See https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1.
	if str == "" || !isLowerAlpha(str[0]) {
		return "", "", false
	}
	i := 1
	for end := min(maxSchemeLen, len(str)); i < end && isSubsequentSchemeByte(str[i]); i++ {
		// deliberately empty body
	}
	return str[:i], str[i:], true
}

// validateHost scans and validates a host at the start of str.
// If it succeeds, it returns the unconsumed part of str and nil;
// otherwise, its err result is some non-nil error.
func validateHost(str, rawOrigin string) (rest string, err error) {
	if str != "" && str[0] == '[' { // str must start with an IPv6 address
		host, rest, ok := strings.Cut(str[1:], "]")
		if !ok { // unmatched left bracket
			return "", invalidOriginError(rawOrigin)
		}
		ip, err := netip.ParseAddr(host)
		if err != nil || ip.Zone() != "" || !ip.Is6() {
			return "", invalidOriginError(rawOrigin)
		}
		// Origins spell IPv6 addresses in their compressed form;
		// see https://datatracker.ietf.org/doc/html/rfc5952.
		if ip.Is4In6() || host != ip.String() {
			return "", prohibitedOriginError(rawOrigin)
		}
		return rest, nil
	}
	// str must start with either an IPv4 address or a domain.
	var host string
	var i int
	for ; i < len(str) && isDomainByte(str[i]); i++ {
		// deliberately empty body
	}
	host, rest = str[:i], str[i:]
	// A host can neither be empty nor start with a DNS-label separator.
	if host == "" || host[0] == labelSep || len(host) > maxHostLen {
		return "", invalidOriginError(rawOrigin)
	}
	// If the last non-empty label starts with a digit, assume an IPv4
	// address, since no TLD starts with a digit
	// (see https://www.iana.org/domains/root/db).
	assumeIP, ok := firstByteOfRightmostLabelIsDigit(host)
	if !ok {
		return "", invalidOriginError(rawOrigin)
	}
	if assumeIP {
		ip, err := netip.ParseAddr(host)
		if err != nil || !ip.Is4() {
			return "", invalidOriginError(rawOrigin)
		}
		// Origins spell IPv4 addresses in dotted-quad notation;
		// see https://en.wikipedia.org/wiki/Dot-decimal_notation.
		if host != ip.String() {
			return "", prohibitedOriginError(rawOrigin)
		}
		return rest, nil
	}
	profileOnce.Do(initProfile)
	if _, err := profile.ToASCII(host); err != nil {
		return "", prohibitedOriginError(rawOrigin)
	}
	return rest, nil
}

// firstByteOfRightmostLabelIsDigit reports whether the first byte of the
// rightmost DNS label in host is a digit.
// If it succeeds, it returns the result of that check and true;
// otherwise, its ok result is false.
func firstByteOfRightmostLabelIsDigit(host string) (_ bool, ok bool) {
	rest, label, _ := lastCutByte(host, labelSep)
	if label != "" {
		return isDigit(label[0]), true
	}
	// host contains a trailing period ("absolute" domain).
	_, label, _ = lastCutByte(rest, labelSep)
	if label != "" {
		return isDigit(label[0]), true
	}
	return false, false
}

// lastCutByte slices s around the last instance of sep, returning the
// text before and after sep. The found result reports whether sep
// appears in s. If sep does not appear in s, lastCutByte returns
// "", s, false.
func lastCutByte(s string, sep byte) (before, after string, found bool) {
	if i := strings.LastIndexByte(s, sep); i >= 0 {
		after = s[i+1:]
		return s[:i], after, true
	}
	return "", s, false
}

// parsePort parses a port number. It returns the port number, the
// unconsumed part of the input string, and a bool that indicates success
// or failure.
func parsePort(str string) (int, string, bool) {
	const base = 10
	if len(str) == 0 || !isNonZeroDigit(str[0]) {
		return 0, str, false
	}
	port := intFromDigit(str[0])
	i := 1
	end := min(len(str), maxPortLen)
	for ; i < end; i++ {
		if !isDigit(str[i]) {
			break
		}
		port = base*port + intFromDigit(str[i])
	}
	const maxUint16 = 1<<16 - 1
	if port > maxUint16 {
		return 0, str, false
	}
	return port, str[i:], true
}

// isDefaultPortForScheme returns true for the following combinations
//   - (https, 443)
//   - (http, 80)
//
// and false otherwise.
func isDefaultPortForScheme(scheme string, port int) bool {
	const (
		schemeHTTP  = "http"
		portHTTP    = 80
		schemeHTTPS = "https"
		portHTTPS   = 443
	)
	return port == portHTTP && scheme == schemeHTTP ||
		port == portHTTPS && scheme == schemeHTTPS
}

// isLowerAlpha reports whether c is in the 0x61-0x7A ASCII range.
func isLowerAlpha(c byte) bool {
	return 'a' <= c && c <= 'z'
}

// isSubsequentSchemeByte reports whether c is a valid byte at index >= 1
// in a scheme.
func isSubsequentSchemeByte(c byte) bool {
	// See https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1.
	return isLowerAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.'
}

// isDomainByte reports whether c is an ASCII lowercase letter, an ASCII
// digit, a hyphen (0x2D), a period (0x2E), or an underscore (0x5F).
func isDomainByte(c byte) bool {
	// underscore: see https://stackoverflow.com/q/2180465
	return isLowerAlpha(c) || isDigit(c) ||
		c == '-' || c == labelSep || c == '_'
}

// isDigit reports whether c is in the 0x30-0x39 ASCII range.
func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// isNonZeroDigit reports whether c is in the 0x31-0x39 ASCII range.
func isNonZeroDigit(c byte) bool {
	return '1' <= c && c <= '9'
}

// intFromDigit returns the numerical value of ASCII digit b.
// For instance, if b is '9', the result is 9.
func intFromDigit(b byte) int {
	return int(b) - '0'
}

var (
	profileOnce sync.Once     // guards init of profile via initProfile
	profile     *idna.Profile // lazily initialized
)

func initProfile() {
	profile = idna.New(
		idna.BidiRule(),
		idna.ValidateLabels(true),
		idna.StrictDomainName(true),
		idna.VerifyDNSLength(true),
	)
}
