package i18n

import (
	"errors"
	"strings"
)

var errUnterminated = errors.New("unterminated directive prologue")

// insertionPoint returns the offset just past the hashbang line and the
// directive prologue, and whether the prologue is already injected there.
func insertionPoint(code string) (int, bool, error) {
	at := 0
	if strings.HasPrefix(code, "#!") {
		nl := strings.IndexByte(code, '\n')
		if nl < 0 {
			return len(code), false, nil
		}
		at = nl + 1
	}

	for {
		next, err := skipTrivia(code, at)
		if err != nil {
			return 0, false, err
		}
		if next >= len(code) || (code[next] != '"' && code[next] != '\'') {
			break
		}
		end, err := scanString(code, next)
		if err != nil {
			return 0, false, err
		}
		after, err := skipTrivia(code, end)
		if err != nil {
			return 0, false, err
		}
		switch {
		case after < len(code) && code[after] == ';':
			at = after + 1
		case after >= len(code):
			at = end
		case strings.ContainsAny(code[end:after], "\n\r") && !continues(code[after:]):
			at = end
		default:
			// A string expression, not a directive.
			return at, injectedAt(code, at), nil
		}
	}
	return at, injectedAt(code, at), nil
}

func injectedAt(code string, at int) bool {
	return strings.HasPrefix(strings.TrimLeft(code[at:], " \t\r\n"), marker)
}

// skipTrivia skips whitespace and comments starting at pos.
func skipTrivia(code string, pos int) (int, error) {
	for pos < len(code) {
		switch {
		case strings.ContainsRune(" \t\r\n\f\v", rune(code[pos])):
			pos++
		case strings.HasPrefix(code[pos:], "\u00a0"):
			pos += len("\u00a0")
		case strings.HasPrefix(code[pos:], "\ufeff"):
			pos += len("\ufeff")
		case strings.HasPrefix(code[pos:], "//"):
			nl := strings.IndexAny(code[pos:], "\n\r")
			if nl < 0 {
				return len(code), nil
			}
			pos += nl
		case strings.HasPrefix(code[pos:], "/*"):
			end := strings.Index(code[pos+2:], "*/")
			if end < 0 {
				return 0, errors.New("unterminated comment")
			}
			pos += 2 + end + 2
		default:
			return pos, nil
		}
	}
	return pos, nil
}

// scanString returns the offset just past the string literal at start.
func scanString(code string, start int) (int, error) {
	quote := code[start]
	for i := start + 1; i < len(code); i++ {
		switch code[i] {
		case '\\':
			i++
			if i+1 < len(code) && code[i] == '\r' && code[i+1] == '\n' {
				i++
			}
		case '\n', '\r':
			return 0, errUnterminated
		case quote:
			return i + 1, nil
		}
	}
	return 0, errUnterminated
}

// continues reports whether rest continues the expression on the previous
// line, which prevents automatic semicolon insertion.
func continues(rest string) bool {
	if rest == "" {
		return false
	}
	if strings.ContainsRune(".[(+-*/%,?=<>&|^`", rune(rest[0])) {
		return true
	}
	for _, kw := range []string{"instanceof", "in"} {
		if strings.HasPrefix(rest, kw) && (len(rest) == len(kw) || !isIdentPart(rest[len(kw)])) {
			return true
		}
	}
	return false
}

func isIdentPart(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
