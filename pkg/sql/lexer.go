// Package sql builds the dynamic SQL used by the record engine and checks
// identifiers, filters, catalog statements and bound values.
package sql

type lexState int

const (
	lexCode lexState = iota
	lexSingleQuote
	lexDoubleQuote
	lexBracket
	lexLineComment
	lexBlockComment
)

// scanSQL calls visit for every rune of query, flagging whether it is SQL
// code: outside string literals, quoted or [bracketed] names and comments.
// Quotes and brackets are escaped by doubling, as in T-SQL; a backslash has
// no special meaning.
func scanSQL(query string, visit func(r rune, code bool)) {
	runes := []rune(query)
	state := lexCode

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch state {
		case lexCode:
			switch {
			case r == '\'':
				state = lexSingleQuote
			case r == '"':
				state = lexDoubleQuote
			case r == '[':
				state = lexBracket
			case r == '-' && next == '-':
				state = lexLineComment
			case r == '/' && next == '*':
				state = lexBlockComment
				visit(r, false)
				visit(next, false)
				i++
				continue
			default:
				visit(r, true)
				continue
			}
		case lexSingleQuote:
			// '' exits and immediately re-enters.
			if r == '\'' {
				state = lexCode
			}
		case lexDoubleQuote:
			if r == '"' {
				state = lexCode
			}
		case lexBracket:
			if r == ']' && next == ']' {
				visit(r, false)
				visit(next, false)
				i++
				continue
			}
			if r == ']' {
				state = lexCode
			}
		case lexLineComment:
			if r == '\n' {
				state = lexCode
			}
		case lexBlockComment:
			if r == '*' && next == '/' {
				visit(r, false)
				visit(next, false)
				i++
				state = lexCode
				continue
			}
		}
		visit(r, false)
	}
}

// codeRunes returns the positions of r in query that are SQL code.
func codeRunes(query string, target rune) []int {
	var found []int
	pos := 0
	scanSQL(query, func(r rune, code bool) {
		if code && r == target {
			found = append(found, pos)
		}
		pos++
	})
	return found
}
