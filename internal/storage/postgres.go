package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	avatar_ref   TEXT
);

CREATE TABLE IF NOT EXISTS accounts (
	player_id TEXT PRIMARY KEY REFERENCES profiles(id),
	coins     BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS coin_transactions (
	id         BIGSERIAL PRIMARY KEY,
	player_id  TEXT NOT NULL,
	amount     BIGINT NOT NULL,
	reason     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func InitPostgres(dsn string) error {
	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	if err := DB.Ping(); err != nil {
		return err
	}
	_, err = DB.Exec(schema)
	return err
}
