// Package depfile parses the make-style dependency file a compiler's
// dependency-probe mode emits: the literal target token "x", a colon, and
// the transitively included header paths, with make's space/backslash
// escaping rules.
package depfile

import (
	"os"
	"sort"

	"github.com/ixchow/maek/errs"
)

// tokenize splits data on unescaped space/tab/newline, honoring make's
// escaping: "$$" decodes to "$", a backslash before a newline is a line
// continuation (both bytes dropped), and a backslash before any other byte
// escapes that byte literally (including a space inside a path).
func tokenize(data []byte) []string {
	var tokens []string
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '\\' && i+1 < len(data) && data[i+1] == '\n':
			i++ // drop both the backslash and the newline
		case c == '\\' && i+1 < len(data):
			cur = append(cur, data[i+1])
			i++
		case c == '$' && i+1 < len(data) && data[i+1] == '$':
			cur = append(cur, '$')
			i++
		case c == ' ' || c == '\t' || c == '\n':
			flush()
		default:
			cur = append(cur, c)
		}
	}
	flush()
	return tokens
}

// Parse reads and tokenizes the dep-file at path, asserts it begins with
// the literal target token "x" followed by ":", and returns the remaining
// tokens (the discovered header paths) sorted lexically with duplicates
// removed and every path already present in explicit filtered out.
//
// A missing dep-file (first build, or one deleted since) is not an error:
// Parse returns an empty slice, matching the spec's edge policy that a
// first build simply has no discovered dependencies yet.
func Parse(path string, explicit []string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	tokens := tokenize(data)
	if len(tokens) < 2 || tokens[0] != "x" || tokens[1] != ":" {
		return nil, errs.New("malformed dependency file %q: expected leading \"x :\"", path)
	}

	already := make(map[string]bool, len(explicit))
	for _, e := range explicit {
		already[e] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokens[2:] {
		if already[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	sort.Strings(out)
	return out, nil
}
