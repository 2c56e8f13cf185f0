package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE book_authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				author_id INTEGER REFERENCES authors (id) ON DELETE CASCADE NOT NULL,
				sort_order INTEGER NOT NULL DEFAULT 0,
				role TEXT
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		// COALESCE lets the same person appear once per distinct role.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_authors ON book_authors (book_id, author_id, COALESCE(role, ''))`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_book_authors_author_id ON book_authors (author_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE book_narrators (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				narrator_id INTEGER REFERENCES narrators (id) ON DELETE CASCADE NOT NULL,
				sort_order INTEGER NOT NULL DEFAULT 0,
				role TEXT
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_narrators ON book_narrators (book_id, narrator_id, COALESCE(role, ''))`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_book_narrators_narrator_id ON book_narrators (narrator_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE book_series (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				series_id INTEGER REFERENCES series (id) ON DELETE CASCADE NOT NULL,
				position TEXT
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_series ON book_series (book_id, series_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_book_series_series_id ON book_series (series_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE book_genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				genre_id INTEGER REFERENCES genres (id) ON DELETE CASCADE NOT NULL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_genres ON book_genres (book_id, genre_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_book_genres_genre_id ON book_genres (genre_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"book_genres", "book_series", "book_narrators", "book_authors"} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
