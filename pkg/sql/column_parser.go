package sql

import (
	"regexp"
	"slices"
	"strings"
)

// ParsedColumn represents a result column of a SELECT statement.
type ParsedColumn struct {
	Name string // The column name or alias, case preserved
	Expr string // The full expression (e.g., "COALESCE(DD_SortOrder, 0)")
}

var (
	aliasPattern    = regexp.MustCompile(`(?i)\s+as\s+(\[[^\]]+\]|"[^"]+"|\w+)$`)
	funcPattern     = regexp.MustCompile(`^(\w+)\s*\(`)
	nonWordPattern  = regexp.MustCompile(`[^\w ]`)
	aliasStopWords  = []string{"from", "where", "group", "order", "and", "or", "as"}
	selectEndTokens = []string{" from ", " where ", " group ", " order ", " union ", ";"}
)

// ParseSelectColumns extracts the result columns of a SELECT statement.
// Whitespace (including newlines) is collapsed first. It handles:
//   - Simple and table-qualified columns: SELECT CustomerNum, tblPolicies.AgentCode
//   - Aliases, bare, bracketed or double-quoted: AgentName AS Producer,
//     CustomerName AS [Customer Name], "CustomerName" AS "Customer Name"
//   - Functions: COALESCE(DD_SortOrder, 0) AS SortOrder
//
// SELECT * and non-SELECT text yield nil. Subqueries in the select list are
// not parsed.
func ParseSelectColumns(query string) []ParsedColumn {
	query = strings.Join(strings.Fields(query), " ")
	lower := strings.ToLower(query)

	selectIdx := strings.Index(lower, "select ")
	if selectIdx == -1 {
		return nil
	}
	start := selectIdx + len("select ")

	end := len(query)
	for _, token := range selectEndTokens {
		if idx := strings.Index(lower[start:], token); idx != -1 && start+idx < end {
			end = start + idx
		}
	}

	selectClause := strings.TrimSpace(query[start:end])
	if strings.HasPrefix(selectClause, "*") {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(selectClause), "distinct ") {
		selectClause = strings.TrimSpace(selectClause[len("distinct "):])
	}

	var result []ParsedColumn
	for _, col := range splitSelectColumns(selectClause) {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		result = append(result, parseColumnExpression(col))
	}
	return result
}

// ResultColumnNames returns just the names from ParseSelectColumns.
func ResultColumnNames(query string) []string {
	parsed := ParseSelectColumns(query)
	names := make([]string, 0, len(parsed))
	for _, col := range parsed {
		names = append(names, col.Name)
	}
	return names
}

// splitSelectColumns splits a SELECT column list by commas, respecting
// parentheses, brackets and quotes.
func splitSelectColumns(selectClause string) []string {
	var columns []string
	var current strings.Builder
	parenDepth := 0
	var closing rune

	for _, ch := range selectClause {
		switch {
		case closing != 0:
			if ch == closing {
				closing = 0
			}
		case ch == '[':
			closing = ']'
		case ch == '"' || ch == '\'':
			closing = ch
		case ch == '(':
			parenDepth++
		case ch == ')':
			parenDepth--
		case ch == ',' && parenDepth == 0:
			columns = append(columns, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}

	if current.Len() > 0 {
		columns = append(columns, current.String())
	}
	return columns
}

// parseColumnExpression extracts the result name of one select-list entry.
// Examples:
//   - "CustomerNum" → CustomerNum
//   - "tblPolicies.AgentCode" → AgentCode
//   - "AgentName AS Producer" → Producer
//   - "CustomerName AS [Customer Name]" → Customer Name
//   - "COUNT(*) total" → total
//   - "COUNT(*)" → count
func parseColumnExpression(expr string) ParsedColumn {
	expr = strings.TrimSpace(expr)

	if matches := aliasPattern.FindStringSubmatch(expr); matches != nil {
		return ParsedColumn{Name: unquoteIdent(matches[1]), Expr: expr}
	}

	if alias, ok := implicitAlias(expr); ok {
		return ParsedColumn{Name: alias, Expr: expr}
	}

	return ParsedColumn{Name: extractColumnName(expr), Expr: expr}
}

// implicitAlias finds "expr alias" forms where the alias is a plain word.
func implicitAlias(expr string) (string, bool) {
	if strings.Count(expr, "(") != strings.Count(expr, ")") || strings.ContainsAny(expr, `["`) {
		return "", false
	}
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return "", false
	}
	last := parts[len(parts)-1]
	if strings.ContainsAny(last, "()") || slices.Contains(aliasStopWords, strings.ToLower(last)) {
		return "", false
	}
	return last, true
}

// extractColumnName extracts a column name from an unaliased expression.
func extractColumnName(expr string) string {
	expr = strings.TrimSpace(expr)

	if matches := funcPattern.FindStringSubmatch(expr); matches != nil {
		return strings.ToLower(matches[1])
	}

	if strings.HasPrefix(strings.ToLower(expr), "case ") {
		return "case_result"
	}

	// Remove table qualifiers: "t.col", "t.[col]", "t"."col".
	switch {
	case strings.HasSuffix(expr, "]"):
		if i := strings.LastIndex(expr, ".["); i != -1 {
			expr = expr[i+1:]
		}
	case strings.HasSuffix(expr, `"`):
		if i := strings.LastIndex(expr, `."`); i != -1 {
			expr = expr[i+1:]
		}
	default:
		if i := strings.LastIndex(expr, "."); i != -1 {
			expr = expr[i+1:]
		}
	}

	if name := unquoteIdent(expr); name != expr {
		return name
	}
	return nonWordPattern.ReplaceAllString(expr, "")
}

// unquoteIdent strips one level of [brackets] or "double quotes".
func unquoteIdent(name string) string {
	if len(name) >= 2 {
		if (name[0] == '[' && name[len(name)-1] == ']') || (name[0] == '"' && name[len(name)-1] == '"') {
			return name[1 : len(name)-1]
		}
	}
	return name
}
