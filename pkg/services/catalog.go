package services

import (
	"embed"
	"fmt"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/sac-engine/pkg/database"
	"github.com/ekaya-inc/sac-engine/pkg/sql"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// CatalogQuery is one named read-only query. SQL runs on SQL Server and
// SQLite; Postgres, when set, replaces it on PostgreSQL.
type CatalogQuery struct {
	SQL      string `yaml:"sql"`
	Postgres string `yaml:"postgres"`
	Params   []any  `yaml:"params"`
}

// For returns the statement to run on dialect.
func (q CatalogQuery) For(dialect string) string {
	if dialect == database.DialectPostgres && q.Postgres != "" {
		return q.Postgres
	}
	return q.SQL
}

// Catalog maps query names to their statements.
type Catalog map[string]CatalogQuery

// Names returns the catalog keys in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseCatalog decodes a YAML catalog and checks every entry: each
// statement must be a single statement, and a dialect override must return
// the same columns as the default.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw map[string]CatalogQuery
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := make(Catalog, len(raw))
	for name, q := range raw {
		if q.SQL == "" {
			return nil, fmt.Errorf("catalog entry %q has no sql", name)
		}

		stmt, err := sql.NormalizeStatement(q.SQL)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", name, err)
		}
		if err := sql.RequireSelect(stmt); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", name, err)
		}
		q.SQL = stmt

		if q.Postgres != "" {
			stmt, err := sql.NormalizeStatement(q.Postgres)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %q (postgres): %w", name, err)
			}
			if err := sql.RequireSelect(stmt); err != nil {
				return nil, fmt.Errorf("catalog entry %q (postgres): %w", name, err)
			}
			q.Postgres = stmt

			want, got := sql.ResultColumnNames(q.SQL), sql.ResultColumnNames(q.Postgres)
			if !slices.Equal(want, got) {
				return nil, fmt.Errorf("catalog entry %q: postgres columns %v do not match %v", name, got, want)
			}
		}

		catalog[name] = q
	}
	return catalog, nil
}

func loadEmbeddedCatalog(name string) (Catalog, error) {
	data, err := catalogFS.ReadFile("catalogs/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", name, err)
	}
	return ParseCatalog(data)
}

// SearchCatalog returns the embedded account search catalog.
func SearchCatalog() (Catalog, error) {
	return loadEmbeddedCatalog("search.yaml")
}

// DropdownCatalog returns the embedded dropdown catalog.
func DropdownCatalog() (Catalog, error) {
	return loadEmbeddedCatalog("dropdowns.yaml")
}
