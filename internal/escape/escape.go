// Package escape implements component-aware percent-encoding for URI
// references per RFC 3986.
//
// Encoding is idempotent: a '%' that already starts a valid "%XX" triplet is
// left alone, so encoding an encoded string returns it unchanged.
package escape

// Component selects the set of characters allowed verbatim.
type Component int

const (
	// UserInfo allows unreserved, sub-delims and ':'.
	UserInfo Component = iota
	// Path allows pchar and '/'.
	Path
	// Query allows pchar, '/' and '?'. Fragments share this set.
	Query
)

const upperhex = "0123456789ABCDEF"

// Lookup tables indexed by byte value. true means "keep as is".
var (
	userInfoTable [256]bool
	pathTable     [256]bool
	queryTable    [256]bool
)

func init() {
	unreserved := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._~"
	subDelims := "!$&'()*+,;="

	for _, set := range []*[256]bool{&userInfoTable, &pathTable, &queryTable} {
		for i := 0; i < len(unreserved); i++ {
			set[unreserved[i]] = true
		}
		for i := 0; i < len(subDelims); i++ {
			set[subDelims[i]] = true
		}
	}

	userInfoTable[':'] = true

	for _, c := range []byte(":@/") {
		pathTable[c] = true
		queryTable[c] = true
	}
	queryTable['?'] = true
}

func table(c Component) *[256]bool {
	switch c {
	case UserInfo:
		return &userInfoTable
	case Path:
		return &pathTable
	default:
		return &queryTable
	}
}

// Encode percent-encodes every byte of s that is not allowed verbatim in
// component c. Existing "%XX" triplets are preserved.
func Encode(s string, c Component) string {
	t := table(c)

	// Fast path: nothing to encode.
	n := 0
	for i := 0; i < len(s); i++ {
		if needsEscape(s, i, t) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if needsEscape(s, i, t) {
			buf = append(buf, '%', upperhex[b>>4], upperhex[b&0x0f])
			continue
		}
		buf = append(buf, b)
	}
	return string(buf)
}

func needsEscape(s string, i int, t *[256]bool) bool {
	b := s[i]
	if b == '%' {
		return !IsTriplet(s, i)
	}
	return !t[b]
}

// IsTriplet reports whether s[i:] starts with a "%XX" hex triplet.
func IsTriplet(s string, i int) bool {
	return i+2 < len(s) && s[i] == '%' && isHex(s[i+1]) && isHex(s[i+2])
}

func isHex(b byte) bool {
	switch {
	case '0' <= b && b <= '9':
		return true
	case 'a' <= b && b <= 'f':
		return true
	case 'A' <= b && b <= 'F':
		return true
	}
	return false
}
