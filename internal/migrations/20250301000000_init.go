package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInit, downInit)
}

func upInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE credentials (
		domain VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (domain, name)
	);
	CREATE TABLE archive_entries (
		id SERIAL PRIMARY KEY,
		entry_key VARCHAR NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE archive_entries;
	DROP TABLE credentials;
	`)
	if err != nil {
		return err
	}
	return nil
}
