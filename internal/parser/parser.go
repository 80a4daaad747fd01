// Package parser turns a URI reference into its raw components.
//
// Tokens come from internal/tokenizer; this package applies the grammar of
// RFC 3986 section 3 on top of them:
//
//	URI-reference = [ scheme ":" ] [ "//" authority ] path [ "?" query ] [ "#" fragment ]
//	authority     = [ userinfo "@" ] host [ ":" port ]
//
// Components are returned undecoded and unnormalized. Case folding, default
// port removal and percent-encoding are the caller's business.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/shape-httpmsg/internal/tokenizer"
)

// MaxPort is the largest valid TCP port.
const MaxPort = 65535

// Components holds the raw parts of a URI reference.
type Components struct {
	Scheme       string
	HasAuthority bool // "//" was present, even if the authority is empty
	UserInfo     string
	Host         string
	Port         int // 0 when absent
	Path         string
	Query        string
	HasQuery     bool
	Fragment     string
	HasFragment  bool
}

// ParseError describes a URI reference that does not match the grammar.
type ParseError struct {
	Message  string // human-readable error message
	Position int    // rune offset in input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("uri: parse error at position %d: %s", e.Position, e.Message)
	}
	return fmt.Sprintf("uri: %s", e.Message)
}

func newParseError(msg string, pos int) *ParseError {
	return &ParseError{Message: msg, Position: pos}
}

// Parser parses one URI reference.
type Parser struct {
	input string
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Parse parses input as a URI reference.
func Parse(input string) (*Components, error) {
	return NewParser(input).Parse()
}

// Parse tokenizes the input and assembles components from the tokens.
func (p *Parser) Parse() (*Components, error) {
	c := &Components{}
	if p.input == "" {
		return c, nil
	}

	tok := tokenizer.NewTokenizer()
	tok.Initialize(p.input)
	tokens, eos := tok.Tokenize()

	pos := 0
	var path strings.Builder
	for i, t := range tokens {
		value := t.ValueString()
		switch t.Kind() {
		case tokenizer.TokenScheme:
			if i == 0 {
				c.Scheme = strings.TrimSuffix(value, ":")
			} else {
				// "mailto:a:b" - only the first scheme counts.
				path.WriteString(value)
			}
		case tokenizer.TokenAuthority:
			if path.Len() > 0 {
				// "urn:a://b": the slashes belong to the path.
				path.WriteString(value)
				break
			}
			c.HasAuthority = true
			if err := parseAuthority(c, value[2:], pos+2); err != nil {
				return nil, err
			}
		case tokenizer.TokenPath:
			path.WriteString(value)
		case tokenizer.TokenQuery:
			c.HasQuery = true
			c.Query = value[1:]
		case tokenizer.TokenFragment:
			c.HasFragment = true
			c.Fragment = value[1:]
		default:
			return nil, newParseError(fmt.Sprintf("unexpected token %s", t.Kind()), pos)
		}
		pos += len([]rune(value))
	}

	if !eos {
		return nil, newParseError("unexpected character", pos)
	}

	c.Path = path.String()
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(c *Components) error {
	if c.HasAuthority && c.Host == "" && (c.UserInfo != "" || c.Port != 0) {
		return newParseError("authority without host", 0)
	}
	if c.HasAuthority && c.Path != "" && c.Path[0] != '/' {
		return newParseError("path must be absolute when authority is present", 0)
	}
	if c.Scheme == "" && !c.HasAuthority {
		// A relative-path reference may not look like a scheme.
		seg := c.Path
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			seg = seg[:i]
		}
		if strings.Contains(seg, ":") {
			return newParseError("colon in first segment of relative path", 0)
		}
	}
	return nil
}

// parseAuthority splits authority into userinfo, host and port.
func parseAuthority(c *Components, authority string, pos int) error {
	hostport := authority
	if at := strings.LastIndexByte(authority, '@'); at >= 0 {
		c.UserInfo = authority[:at]
		hostport = authority[at+1:]
		pos += at + 1
	}

	host, port, hasPort, err := splitHostPort(hostport, pos)
	if err != nil {
		return err
	}
	if err := ValidateHost(host); err != nil {
		return newParseError(err.Error(), pos)
	}
	c.Host = host

	if hasPort {
		if port == "" {
			// "http://host:/" is allowed and means no port.
			return nil
		}
		n, err := ParsePort(port)
		if err != nil {
			return newParseError(err.Error(), pos+len(host)+1)
		}
		c.Port = n
	}
	return nil
}

func splitHostPort(hostport string, pos int) (host, port string, hasPort bool, err error) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return "", "", false, newParseError("unterminated IP literal", pos)
		}
		host = hostport[:end+1]
		rest := hostport[end+1:]
		if rest == "" {
			return host, "", false, nil
		}
		if rest[0] != ':' {
			return "", "", false, newParseError("unexpected text after IP literal", pos+end+1)
		}
		return host, rest[1:], true, nil
	}

	if i := strings.LastIndexByte(hostport, ':'); i >= 0 {
		return hostport[:i], hostport[i+1:], true, nil
	}
	return hostport, "", false, nil
}

// ParsePort parses a decimal port in 1..MaxPort.
func ParsePort(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid port %q", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxPort {
		return 0, fmt.Errorf("port %q out of range 1-%d", s, MaxPort)
	}
	return n, nil
}

// ValidateHost rejects hosts containing characters that cannot appear in a
// reg-name or IP literal. A ':' outside brackets would read back as a port.
func ValidateHost(host string) error {
	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") || len(host) < 3 {
			return fmt.Errorf("invalid IP literal %q", host)
		}
		for _, r := range host[1 : len(host)-1] {
			if !isHexDigit(r) && r != ':' && r != '.' && r != 'v' && r != 'V' {
				return fmt.Errorf("invalid IP literal %q", host)
			}
		}
		return nil
	}
	for _, r := range host {
		if r <= ' ' || r == 0x7f || strings.ContainsRune(":/?#@[]<>\"\\^`{|}", r) {
			return fmt.Errorf("invalid character %q in host", r)
		}
	}
	return nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
