package sql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrMultipleStatements is returned for text holding more than one statement.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

// StatementType is the kind of a SQL statement, taken from its first keyword.
type StatementType string

const (
	StatementSelect  StatementType = "SELECT"
	StatementInsert  StatementType = "INSERT"
	StatementUpdate  StatementType = "UPDATE"
	StatementDelete  StatementType = "DELETE"
	StatementMerge   StatementType = "MERGE"
	StatementExec    StatementType = "EXEC"
	StatementDDL     StatementType = "DDL"     // CREATE, ALTER, DROP, TRUNCATE
	StatementUnknown StatementType = "UNKNOWN" // unrecognized, transaction control, modifying CTEs
)

// modifyingCTEPattern matches CTEs that contain data-modifying operations.
// Example: WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE|MERGE)\b`)

// DetectStatementType classifies query by its first keyword. A WITH query
// counts as SELECT unless one of its CTEs modifies data.
func DetectStatementType(query string) StatementType {
	normalized := strings.ToUpper(strings.TrimSpace(query))

	switch {
	case strings.HasPrefix(normalized, "SELECT"):
		return StatementSelect
	case strings.HasPrefix(normalized, "WITH"):
		if modifyingCTEPattern.MatchString(query) {
			return StatementUnknown
		}
		return StatementSelect
	case strings.HasPrefix(normalized, "INSERT"):
		return StatementInsert
	case strings.HasPrefix(normalized, "UPDATE"):
		return StatementUpdate
	case strings.HasPrefix(normalized, "DELETE"):
		return StatementDelete
	case strings.HasPrefix(normalized, "MERGE"):
		return StatementMerge
	case strings.HasPrefix(normalized, "EXEC"), strings.HasPrefix(normalized, "CALL"):
		return StatementExec
	case strings.HasPrefix(normalized, "CREATE"),
		strings.HasPrefix(normalized, "ALTER"),
		strings.HasPrefix(normalized, "DROP"),
		strings.HasPrefix(normalized, "TRUNCATE"):
		return StatementDDL
	default:
		return StatementUnknown
	}
}

// StatementTypeError reports a statement of a kind that is not allowed.
type StatementTypeError struct {
	Type StatementType
}

func (e *StatementTypeError) Error() string {
	return fmt.Sprintf("only SELECT statements are allowed, got %s", e.Type)
}

// RequireSelect returns a *StatementTypeError unless query is a read-only
// SELECT.
func RequireSelect(query string) error {
	if t := DetectStatementType(query); t != StatementSelect {
		return &StatementTypeError{Type: t}
	}
	return nil
}

// NormalizeStatement trims query and drops a trailing semicolon together
// with any comment after it. A semicolon anywhere else in the code, or a
// second trailing one, fails with ErrMultipleStatements. Semicolons inside
// literals, quoted or bracketed names and comments do not count.
func NormalizeStatement(query string) (string, error) {
	runes := []rune(strings.TrimSpace(query))
	semis := codeRunes(string(runes), ';')
	if len(semis) == 0 {
		return string(runes), nil
	}

	last := semis[len(semis)-1]
	codeAfter := false
	pos := 0
	scanSQL(string(runes), func(r rune, code bool) {
		if pos > last && code && !unicode.IsSpace(r) {
			codeAfter = true
		}
		pos++
	})
	if codeAfter || len(semis) > 1 {
		return "", ErrMultipleStatements
	}

	return strings.TrimRightFunc(string(runes[:last]), unicode.IsSpace), nil
}
