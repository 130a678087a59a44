package analyzers

import (
	"io"
	"regexp"
	"strings"
)

// continuationRe matches a string continuation escape followed by a blank
// line. The escape swallows the whole whitespace run, blank line included.
var continuationRe = regexp.MustCompile(`\\\n *\n`)

// StringContinuation reports Rust string literals in which a
// backslash-newline continuation is followed by an empty line.
type StringContinuation struct {
	Out io.Writer
	p   printer
}

// ScanEntry prints one "found" line per matching literal. Sources it cannot
// tokenize are skipped silently; it never fails.
func (s *StringContinuation) ScanEntry(path, contents string) error {
	for _, lit := range stringLiterals(contents) {
		if m := continuationRe.FindString(lit); m != "" {
			s.p.printf(s.Out, "found: %s: %q", path, m)
		}
	}
	return nil
}

// stringLiterals returns the string and byte string literals of a Rust
// source file, quotes included. Comments and character literals are skipped.
// Raw strings are returned too but cannot contain escapes.
func stringLiterals(src string) []string {
	var lits []string
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				return lits
			}
			i += end + 1

		case strings.HasPrefix(src[i:], "/*"):
			i = skipBlockComment(src, i)

		case c == '"' || (c == 'b' || c == 'c') && i+1 < len(src) && src[i+1] == '"' && !identByte(src, i-1):
			start := i
			if c != '"' {
				i++
			}
			i = skipQuoted(src, i)
			lits = append(lits, src[start:i])

		case (c == 'r' || strings.HasPrefix(src[i:], "br") || strings.HasPrefix(src[i:], "cr")) && !identByte(src, i-1):
			if end, ok := skipRaw(src, i); ok {
				lits = append(lits, src[i:end])
				i = end
				continue
			}
			i++

		case c == '\'':
			i = skipCharOrLifetime(src, i)

		default:
			i++
		}
	}
	return lits
}

func identByte(src string, i int) bool {
	if i < 0 || i >= len(src) {
		return false
	}
	c := src[i]
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// skipBlockComment returns the index after the nested block comment at i.
func skipBlockComment(src string, i int) int {
	depth := 0
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(src[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return i
}

// skipQuoted returns the index after the closing quote of the escaped
// string starting at src[i] == '"'.
func skipQuoted(src string, i int) int {
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return i
}

// skipRaw recognizes r"..", r#".."# and their b/c-prefixed forms at i.
func skipRaw(src string, i int) (int, bool) {
	j := i
	if src[j] != 'r' {
		j++
	}
	if j >= len(src) || src[j] != 'r' {
		return 0, false
	}
	j++
	hashes := 0
	for j < len(src) && src[j] == '#' {
		hashes++
		j++
	}
	if j >= len(src) || src[j] != '"' {
		return 0, false
	}
	closing := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(src[j+1:], closing)
	if end < 0 {
		return len(src), true
	}
	return j + 1 + end + len(closing), true
}

// skipCharOrLifetime steps over a character literal such as 'a' or '\n'.
// A lifetime or label ('a, 'static) only advances past the quote.
func skipCharOrLifetime(src string, i int) int {
	if i+2 < len(src) && src[i+1] == '\\' {
		end := strings.IndexByte(src[i+3:], '\'')
		if end < 0 {
			return len(src)
		}
		return i + 3 + end + 1
	}
	// One character, possibly multi-byte, followed by a closing quote.
	for n := 1; n <= 4 && i+1+n < len(src); n++ {
		if src[i+1+n] == '\'' {
			if n == 1 || src[i+1]&0xC0 == 0xC0 {
				return i + 2 + n
			}
			break
		}
	}
	return i + 1
}
