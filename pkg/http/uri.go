package http

import (
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/shapestone/shape-httpmsg/internal/escape"
	"github.com/shapestone/shape-httpmsg/internal/parser"
)

// defaultPorts maps schemes to their well-known port.
var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
}

// URI is an immutable URI reference (RFC 3986).
//
// Scheme and host are stored lowercase, a port equal to the scheme's default
// is dropped, and user info, path, query and fragment are percent-encoded
// where needed. Encoding leaves existing "%XX" triplets alone, so values that
// are already encoded pass through unchanged.
//
// Every With method returns a new *URI. Requests compare URIs by pointer
// identity in WithURI, so keep reusing the same *URI when nothing changed.
type URI struct {
	scheme   string
	userInfo string
	host     string
	port     int // 0 when absent
	path     string
	query    string
	fragment string
}

// NewURI parses s as a URI reference.
func NewURI(s string) (*URI, error) {
	c, err := parser.Parse(s)
	if err != nil {
		return nil, invalidURI("NewURI", err, "unable to parse URI %q", s)
	}
	u := &URI{
		scheme:   strings.ToLower(c.Scheme),
		userInfo: escape.Encode(c.UserInfo, escape.UserInfo),
		host:     strings.ToLower(c.Host),
		path:     escape.Encode(c.Path, escape.Path),
		query:    escape.Encode(c.Query, escape.Query),
		fragment: escape.Encode(c.Fragment, escape.Query),
	}
	u.port = u.filterPort(c.Port)
	if u.host == "" && strings.HasPrefix(u.path, "//") {
		// Without a host "//" would read back as an authority.
		u.path = "/" + strings.TrimLeft(u.path, "/")
	}
	return u, nil
}

// MustURI is like NewURI but panics on error. Intended for tests and
// package-level variables.
func MustURI(s string) *URI {
	u, err := NewURI(s)
	if err != nil {
		panic(err)
	}
	return u
}

// filterPort drops port when it is the default for u's scheme.
func (u *URI) filterPort(port int) int {
	if port != 0 && defaultPorts[u.scheme] == port {
		return 0
	}
	return port
}

func (u *URI) clone() *URI {
	c := *u
	return &c
}

// Scheme returns the lowercase scheme, or "".
func (u *URI) Scheme() string { return u.scheme }

// UserInfo returns "user" or "user:password", or "".
func (u *URI) UserInfo() string { return u.userInfo }

// Host returns the lowercase host, or "".
func (u *URI) Host() string { return u.host }

// Port returns the port unless it is absent or the scheme's default.
func (u *URI) Port() (int, bool) { return u.port, u.port != 0 }

// Path returns the percent-encoded path.
func (u *URI) Path() string { return u.path }

// Query returns the percent-encoded query without the leading "?".
func (u *URI) Query() string { return u.query }

// Fragment returns the percent-encoded fragment without the leading "#".
func (u *URI) Fragment() string { return u.fragment }

// Authority returns "[userinfo@]host[:port]", or "" when there is no host.
func (u *URI) Authority() string {
	if u.host == "" {
		return ""
	}
	authority := u.host
	if u.userInfo != "" {
		authority = u.userInfo + "@" + authority
	}
	if u.port != 0 {
		authority += ":" + strconv.Itoa(u.port)
	}
	return authority
}

// ASCIIHost returns the host converted to its IDNA ASCII form.
func (u *URI) ASCIIHost() (string, error) {
	if u.host == "" || strings.HasPrefix(u.host, "[") {
		return u.host, nil
	}
	h, err := idna.Lookup.ToASCII(u.host)
	if err != nil {
		return "", invalidURI("ASCIIHost", err, "host %q has no ASCII form", u.host)
	}
	return h, nil
}

// WithScheme returns a copy with the given scheme. The scheme must start with
// a letter followed by letters, digits, "+", "-" or "."; "" removes it.
func (u *URI) WithScheme(scheme string) (*URI, error) {
	if !validScheme(scheme) {
		return nil, invalidURI("WithScheme", nil, "invalid scheme %q", scheme)
	}
	c := u.clone()
	c.scheme = strings.ToLower(scheme)
	c.port = c.filterPort(c.port)
	return c, nil
}

func validScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		isAlpha := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
		if i == 0 && !isAlpha {
			return false
		}
		if !isAlpha && !(b >= '0' && b <= '9') && b != '+' && b != '-' && b != '.' {
			return false
		}
	}
	return true
}

// WithUserInfo returns a copy with the given user and optional password.
// An empty user removes the user info.
func (u *URI) WithUserInfo(user, password string) *URI {
	info := escape.Encode(user, escape.UserInfo)
	if info != "" && password != "" {
		info += ":" + escape.Encode(password, escape.UserInfo)
	}
	c := u.clone()
	c.userInfo = info
	return c
}

// WithHost returns a copy with the given host, lowercased. "" removes it.
func (u *URI) WithHost(host string) (*URI, error) {
	if err := parser.ValidateHost(host); err != nil {
		return nil, invalidURI("WithHost", err, "invalid host %q", host)
	}
	c := u.clone()
	c.host = strings.ToLower(host)
	return c, nil
}

// WithPort returns a copy with the given port, which must be in 1-65535.
func (u *URI) WithPort(port int) (*URI, error) {
	if port < 1 || port > parser.MaxPort {
		return nil, invalidURI("WithPort", nil, "invalid port %d; must be between 1 and %d", port, parser.MaxPort)
	}
	c := u.clone()
	c.port = c.filterPort(port)
	return c, nil
}

// WithoutPort returns a copy with no port.
func (u *URI) WithoutPort() *URI {
	c := u.clone()
	c.port = 0
	return c
}

// WithPath returns a copy with the given path, percent-encoded as needed.
func (u *URI) WithPath(path string) *URI {
	c := u.clone()
	c.path = escape.Encode(path, escape.Path)
	return c
}

// WithQuery returns a copy with the given query. A leading "?" is dropped.
func (u *URI) WithQuery(query string) *URI {
	c := u.clone()
	c.query = escape.Encode(strings.TrimPrefix(query, "?"), escape.Query)
	return c
}

// WithFragment returns a copy with the given fragment. A leading "#" is dropped.
func (u *URI) WithFragment(fragment string) *URI {
	c := u.clone()
	c.fragment = escape.Encode(strings.TrimPrefix(fragment, "#"), escape.Query)
	return c
}

// Equal reports whether u and other have the same components.
func (u *URI) Equal(other *URI) bool {
	if u == nil || other == nil {
		return u == other
	}
	return *u == *other
}

// String reassembles the URI reference.
func (u *URI) String() string {
	var sb strings.Builder
	if u.scheme != "" {
		sb.WriteString(u.scheme)
		sb.WriteByte(':')
	}

	authority := u.Authority()
	if authority != "" {
		sb.WriteString("//")
		sb.WriteString(authority)
	}

	path := u.path
	switch {
	case path == "":
	case authority != "" && path[0] != '/':
		path = "/" + path
	case authority == "" && strings.HasPrefix(path, "//"):
		path = "/" + strings.TrimLeft(path, "/")
	case authority == "" && u.scheme == "" && strings.ContainsRune(firstSegment(path), ':'):
		// "a:b" would read back as a scheme.
		path = "./" + path
	}
	sb.WriteString(path)

	if u.query != "" {
		sb.WriteByte('?')
		sb.WriteString(u.query)
	}
	if u.fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(u.fragment)
	}
	return sb.String()
}

func firstSegment(path string) string {
	seg, _, _ := strings.Cut(path, "/")
	return seg
}
