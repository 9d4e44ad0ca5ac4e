package sqldriver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mynaparrot/meethub-server/pkg/config"
)

type dialect struct {
	name       string
	driverName string
	// positional placeholders are $1, $2...
	numbered bool
	types    columnTypes
}

type columnTypes struct {
	id, text, long, integer, boolean, timestamp, json string
}

var postgresDialect = &dialect{
	name:       "postgres",
	driverName: "postgres",
	numbered:   true,
	types: columnTypes{
		id:        "VARCHAR(36)",
		text:      "VARCHAR(255)",
		long:      "TEXT",
		integer:   "BIGINT",
		boolean:   "BOOLEAN",
		timestamp: "TIMESTAMPTZ",
		json:      "JSONB",
	},
}

var mysqlDialect = &dialect{
	name:       "mysql",
	driverName: "mysql",
	types: columnTypes{
		id:        "VARCHAR(36)",
		text:      "VARCHAR(255)",
		long:      "TEXT",
		integer:   "BIGINT",
		boolean:   "TINYINT(1)",
		timestamp: "DATETIME(3)",
		json:      "JSON",
	},
}

// rebind rewrites ? placeholders for dialects that number them.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// upsert builds an insert that overwrites the mutable columns when the key
// already exists.
func (d *dialect) upsert(t *table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name(), strings.Join(t.columns, ", "), placeholders)

	sets := make([]string, 0, len(t.mutable))
	for _, c := range t.mutable {
		if d.numbered {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
	}

	if d.numbered {
		q += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", t.key, strings.Join(sets, ", "))
	} else {
		q += " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return q
}

// ddl returns the statements creating a table and its indexes.
func (d *dialect) ddl(t *table) []string {
	defs := make([]string, 0, len(t.columns)+len(t.indexes)+1)
	for _, c := range t.columns {
		defs = append(defs, fmt.Sprintf("%s %s", c, t.types(d.types)[c]))
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", t.key))

	var stmts []string
	if !d.numbered {
		// MySQL has no CREATE INDEX IF NOT EXISTS
		for idx, col := range t.indexes {
			defs = append(defs, fmt.Sprintf("INDEX %s (%s)", t.indexName(idx), col))
		}
	}
	stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name(), strings.Join(defs, ", ")))

	if d.numbered {
		for idx, col := range t.indexes {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", t.indexName(idx), t.name(), col))
		}
	}
	return stmts
}

type table struct {
	base    string
	key     string
	columns []string
	mutable []string
	// index suffix -> column
	indexes map[string]string
	types   func(columnTypes) map[string]string
}

func (t *table) name() string {
	return config.FormatDBTable(t.base)
}

func (t *table) indexName(suffix string) string {
	return fmt.Sprintf("idx_%s_%s", t.name(), suffix)
}

func (t *table) selectAll() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name())
}
