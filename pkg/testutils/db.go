package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// NewDB opens a migrated in-memory database. Every connection to ":memory:"
// gets its own database, so the pool is pinned to a single connection.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	models.RegisterModels(db)

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

var seq atomic.Int64

// PublicIDs returns a deterministic PublicIDFunc yielding "<prefix>-1",
// "<prefix>-2", and so on.
func PublicIDs(prefix string) models.PublicIDFunc {
	var n atomic.Int64
	return func() (string, error) {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1)), nil
	}
}

func nextPublicID(kind models.Kind) string {
	return fmt.Sprintf("%s-fixture-%d", kind, seq.Add(1))
}

// InsertBook inserts a book row directly, bypassing services and events.
func InsertBook(t testing.TB, db bun.IDB, book *models.Book) *models.Book {
	t.Helper()
	if book.PublicID == "" {
		book.PublicID = nextPublicID(models.KindBook)
	}
	if book.Type == "" {
		book.Type = models.BookTypeBook
	}
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

func InsertAuthor(t testing.TB, db bun.IDB, author *models.Author) *models.Author {
	t.Helper()
	if author.PublicID == "" {
		author.PublicID = nextPublicID(models.KindAuthor)
	}
	_, err := db.NewInsert().Model(author).Exec(context.Background())
	require.NoError(t, err)
	return author
}

func InsertNarrator(t testing.TB, db bun.IDB, narrator *models.Narrator) *models.Narrator {
	t.Helper()
	if narrator.PublicID == "" {
		narrator.PublicID = nextPublicID(models.KindNarrator)
	}
	_, err := db.NewInsert().Model(narrator).Exec(context.Background())
	require.NoError(t, err)
	return narrator
}

func InsertSeries(t testing.TB, db bun.IDB, series *models.Series) *models.Series {
	t.Helper()
	if series.PublicID == "" {
		series.PublicID = nextPublicID(models.KindSeries)
	}
	_, err := db.NewInsert().Model(series).Exec(context.Background())
	require.NoError(t, err)
	return series
}

func InsertGenre(t testing.TB, db bun.IDB, genre *models.Genre) *models.Genre {
	t.Helper()
	if genre.PublicID == "" {
		genre.PublicID = nextPublicID(models.KindGenre)
	}
	if genre.Type == "" {
		genre.Type = models.GenreTypeGenre
	}
	_, err := db.NewInsert().Model(genre).Exec(context.Background())
	require.NoError(t, err)
	return genre
}

func InsertPublisher(t testing.TB, db bun.IDB, publisher *models.Publisher) *models.Publisher {
	t.Helper()
	if publisher.PublicID == "" {
		publisher.PublicID = nextPublicID(models.KindPublisher)
	}
	_, err := db.NewInsert().Model(publisher).Exec(context.Background())
	require.NoError(t, err)
	return publisher
}
