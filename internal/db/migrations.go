package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id          TEXT    PRIMARY KEY,
		name        TEXT    NOT NULL UNIQUE,
		city        TEXT    NOT NULL DEFAULT '',
		state       TEXT    NOT NULL DEFAULT '',
		country     TEXT    NOT NULL DEFAULT '',
		rating      REAL    NOT NULL DEFAULT 0,
		price       REAL    NOT NULL DEFAULT 0,
		bed         TEXT    NOT NULL DEFAULT '',
		shower      TEXT    NOT NULL DEFAULT '',
		occupants   TEXT    NOT NULL DEFAULT '',
		image       TEXT    NOT NULL DEFAULT '',
		discount    TEXT    NOT NULL DEFAULT '',
		description TEXT    NOT NULL DEFAULT '',
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS property_categories (
		property_id TEXT    NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		name        TEXT    NOT NULL,
		PRIMARY KEY (property_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id TEXT    NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		avatar      TEXT    NOT NULL DEFAULT '',
		name        TEXT    NOT NULL DEFAULT '',
		rating      INTEGER NOT NULL DEFAULT 0,
		comment     TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_property ON reviews(property_id, position)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
