package http

import (
	"net/url"
	"strings"
)

// ParseCookie parses a Cookie header value into name/value pairs. Names and
// values are form-decoded. Pairs without "=" are skipped.
//
// A Cookie header containing "," is what several Cookie headers look like
// once joined, which RFC 6265 section 5.4 forbids; ParseCookie returns false
// for it.
func ParseCookie(header string) (Params, bool) {
	if strings.Contains(header, ",") {
		return Params{}, false
	}
	var pairs []Param
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		pairs = append(pairs, Param{Key: formDecode(name), Value: formDecode(value)})
	}
	return NewParams(pairs...), true
}

// formDecode decodes "+" and "%XX" escapes, keeping s when it is malformed.
func formDecode(s string) string {
	d, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return d
}
