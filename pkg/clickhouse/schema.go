package clickhouse

import "fmt"

// EphemerisSchema returns the DDL for the precomputed longitude table.
// ReplacingMergeTree keeps re-seeded rows idempotent.
func EphemerisSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    body LowCardinality(String),
    ts DateTime64(3, 'UTC'),
    longitude Float64,
    source LowCardinality(String) DEFAULT 'analytic'
) ENGINE = ReplacingMergeTree
PARTITION BY toYear(ts)
ORDER BY (body, ts)`, database, table),
	}
}
