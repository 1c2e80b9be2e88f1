package sql

import (
	"strconv"
	"strings"
)

// BindStyle is how a driver expects positional parameters to be written.
type BindStyle int

const (
	// BindQuestion keeps "?" placeholders (SQLite).
	BindQuestion BindStyle = iota
	// BindAtP writes @p1..@pN (SQL Server).
	BindAtP
	// BindDollar writes $1..$N (PostgreSQL).
	BindDollar
)

// Flavor captures the SQL dialect differences the builders care about.
type Flavor struct {
	Name string
	Bind BindStyle
	// QuoteIdents wraps identifiers in double quotes. Needed where unquoted
	// names are case-folded (PostgreSQL).
	QuoteIdents bool
	// NativeMerge marks engines that execute MERGE; the others emulate the
	// upsert with a key lookup followed by UPDATE or INSERT.
	NativeMerge bool
	// OutputInserted returns identities with OUTPUT INSERTED.<col> instead
	// of RETURNING <col>.
	OutputInserted bool
}

var (
	// Generic renders the canonical form: bare identifiers and "?" markers.
	Generic = Flavor{Name: "generic", Bind: BindQuestion}

	MSSQL = Flavor{Name: "mssql", Bind: BindAtP, NativeMerge: true, OutputInserted: true}

	Postgres = Flavor{Name: "postgres", Bind: BindDollar, QuoteIdents: true}

	SQLite = Flavor{Name: "sqlite", Bind: BindQuestion}
)

// Ident renders a validated identifier for this flavor.
func (f Flavor) Ident(name string) string {
	if f.QuoteIdents {
		return `"` + name + `"`
	}
	return name
}

// Rebind rewrites "?" placeholders into the flavor's bind style. Question
// marks that are not SQL code (literals, quoted or bracketed names,
// comments) are left alone.
func (f Flavor) Rebind(query string) string {
	if f.Bind == BindQuestion || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	scanSQL(query, func(r rune, code bool) {
		if code && r == '?' {
			n++
			b.WriteString(f.placeholder(n))
			return
		}
		b.WriteRune(r)
	})
	return b.String()
}

func (f Flavor) placeholder(n int) string {
	switch f.Bind {
	case BindAtP:
		return "@p" + strconv.Itoa(n)
	case BindDollar:
		return "$" + strconv.Itoa(n)
	default:
		return "?"
	}
}
