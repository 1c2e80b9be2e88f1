package database

import (
	"strings"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

func sqliteDataSource(path string) (driver, dsn string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "sqlite", path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
