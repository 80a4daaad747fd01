// Package tokenizer provides URI-reference tokenization using Shape's tokenizer framework.
package tokenizer

// Token type constants for URI references (RFC 3986 section 4.1).
// Every token carries its delimiters so that concatenating token values
// reproduces the input exactly.
const (
	TokenScheme    = "Scheme"    // "http:" (includes the trailing colon)
	TokenAuthority = "Authority" // "//user@host:8080" (includes the leading slashes)
	TokenPath      = "Path"      // "/a/b", "a/b", "*"
	TokenQuery     = "Query"     // "?a=1" (includes the leading '?')
	TokenFragment  = "Fragment"  // "#top" (includes the leading '#')
)
