package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE identifiers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				public_id TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				value TEXT NOT NULL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE UNIQUE INDEX ux_identifiers_public_id ON identifiers (public_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		// The find-or-create upsert conflicts on this index.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_identifiers_type_value ON identifiers (type, value)`)
		if err != nil {
			return errors.WithStack(err)
		}

		// Value-only lookups for legacy callers that omit the type.
		_, err = db.Exec(`CREATE INDEX ix_identifiers_value ON identifiers (value)`)
		if err != nil {
			return errors.WithStack(err)
		}

		owners := []struct {
			pivot      string
			foreignKey string
			table      string
		}{
			{"book_identifiers", "book_id", "books"},
			{"author_identifiers", "author_id", "authors"},
			{"narrator_identifiers", "narrator_id", "narrators"},
			{"series_identifiers", "series_id", "series"},
		}
		for _, o := range owners {
			_, err = db.Exec(`
				CREATE TABLE ` + o.pivot + ` (
					` + o.foreignKey + ` INTEGER REFERENCES ` + o.table + ` (id) ON DELETE CASCADE NOT NULL,
					identifier_id INTEGER REFERENCES identifiers (id) NOT NULL,
					PRIMARY KEY (` + o.foreignKey + `, identifier_id)
				)
			`)
			if err != nil {
				return errors.WithStack(err)
			}
			_, err = db.Exec(`CREATE INDEX ix_` + o.pivot + `_identifier_id ON ` + o.pivot + ` (identifier_id)`)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"series_identifiers", "narrator_identifiers", "author_identifiers", "book_identifiers", "identifiers"} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
