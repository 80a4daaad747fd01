package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// NewTokenizer creates a tokenizer for URI references.
// Matchers are tried in order at every position:
// 1. Scheme (ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ) ":")
// 2. Authority ("//" up to the next "/", "?", "#" or end)
// 3. Query ("?" up to the next "#" or end)
// 4. Fragment ("#" to the end)
// 5. Path (anything up to "?", "#" or end)
//
// The matchers are stateless, so a Scheme token can also show up right after
// the real scheme (for "mailto:a:b" the second one is "a:"). The parser folds
// such tokens back into the path.
//
// Whitespace is significant: the tokenizer does not skip anything.
func NewTokenizer() tokenizer.Tokenizer {
	return tokenizer.NewTokenizerWithoutWhitespace(
		SchemeMatcher(),
		AuthorityMatcher(),
		QueryMatcher(),
		FragmentMatcher(),
		PathMatcher(),
	)
}

// NewTokenizerWithStream creates a URI tokenizer using a pre-configured stream.
func NewTokenizerWithStream(stream tokenizer.Stream) tokenizer.Tokenizer {
	tok := NewTokenizer()
	tok.InitializeFromStream(stream)
	return tok
}

// SchemeMatcher matches a scheme followed by its colon.
func SchemeMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok || !isAlpha(r) {
			return nil
		}
		stream.NextChar()
		value := []rune{r}

		for {
			r, ok = stream.PeekChar()
			if !ok {
				return nil
			}
			if r == ':' {
				stream.NextChar()
				return tokenizer.NewToken(TokenScheme, append(value, r))
			}
			if !isSchemeChar(r) {
				return nil
			}
			stream.NextChar()
			value = append(value, r)
		}
	}
}

// AuthorityMatcher matches "//" and the authority that follows it.
func AuthorityMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		var value []rune
		for i := 0; i < 2; i++ {
			r, ok := stream.PeekChar()
			if !ok || r != '/' {
				return nil
			}
			stream.NextChar()
			value = append(value, r)
		}
		value = readUntil(stream, value, "/?#")
		return tokenizer.NewToken(TokenAuthority, value)
	}
}

// QueryMatcher matches "?" and the query that follows it.
func QueryMatcher() tokenizer.Matcher {
	return delimitedMatcher(TokenQuery, '?', "#")
}

// FragmentMatcher matches "#" and everything after it.
func FragmentMatcher() tokenizer.Matcher {
	return delimitedMatcher(TokenFragment, '#', "")
}

// PathMatcher matches a non-empty path up to the query or fragment.
func PathMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		value := readUntil(stream, nil, "?#")
		if len(value) == 0 {
			return nil
		}
		return tokenizer.NewToken(TokenPath, value)
	}
}

func delimitedMatcher(kind string, delim rune, stops string) tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok || r != delim {
			return nil
		}
		stream.NextChar()
		value := readUntil(stream, []rune{r}, stops)
		return tokenizer.NewToken(kind, value)
	}
}

// readUntil consumes characters until one of stops or end of stream.
func readUntil(stream tokenizer.Stream, value []rune, stops string) []rune {
	for {
		r, ok := stream.PeekChar()
		if !ok || containsRune(stops, r) {
			return value
		}
		stream.NextChar()
		value = append(value, r)
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isSchemeChar(r rune) bool {
	return isAlpha(r) || (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.'
}
