package probe

import "strings"

const upperhex = "0123456789ABCDEF"

// EscapeUsername percent-encodes a raw username for use inside a profile
// URL. Every byte outside the RFC 3986 unreserved set (letters, digits,
// "-", ".", "_", "~") is escaped, including "/" and space, so arbitrary
// input (unicode, path separators, query metacharacters) can never alter
// the URL structure.
//
// Neither url.PathEscape nor url.QueryEscape gives this behavior:
// PathEscape leaves sub-delims and "/" context-dependent, QueryEscape
// encodes space as "+". Templates place the username in paths, query
// values, and subdomains alike, so the strictest encoding is the only one
// that is correct everywhere.
func EscapeUsername(username string) string {
	var b strings.Builder
	b.Grow(len(username))
	for i := 0; i < len(username); i++ {
		c := username[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

// BuildProfileURL substitutes the escaped username into the template's
// single "{}" placeholder.
func BuildProfileURL(template, username string) string {
	return strings.Replace(template, "{}", EscapeUsername(username), 1)
}
