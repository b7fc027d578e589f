package store

import "entgo.io/ent/dialect"

// dialectFor picks the ent dialect for dsn: Postgres URLs, SQLite for
// everything else.
func dialectFor(dsn string) string {
	if isPostgres(dsn) {
		return dialect.Postgres
	}
	return dialect.SQLite
}

// driverName is the database/sql driver registered for an ent dialect.
func driverName(d string) string {
	if d == dialect.Postgres {
		return "pgx"
	}
	return "sqlite"
}
